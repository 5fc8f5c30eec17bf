package stdio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds the requests handled at once.
const DefaultConcurrency = 16

// Server answers line requests against a ToolService.
type Server struct {
	svc       ports.ToolService
	lifecycle *transport.Lifecycle
	logger    ports.Logger
	limit     int
}

// NewServer creates a stdio server for svc. lifecycle and logger may be nil.
func NewServer(svc ports.ToolService, lifecycle *transport.Lifecycle, logger ports.Logger) *Server {
	return &Server{svc: svc, lifecycle: lifecycle, logger: logger, limit: DefaultConcurrency}
}

// Serve reads requests from r and writes responses to w until r is
// exhausted, ctx is done or the lifecycle reports idle shutdown. Requests are
// handled concurrently, so responses may arrive out of order.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	out := newLineWriter(w)
	lines := make(chan []byte)
	stop := make(chan struct{})
	defer close(stop)

	readErr := make(chan error, 1)
	go func() { readErr <- s.read(r, lines, stop) }()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case <-s.lifecycle.Done():
			_ = g.Wait()
			if s.logger != nil {
				s.logger.Info("Idle timeout reached, shutting down (" + s.lifecycle.Status().String() + ")")
			}
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := g.Wait(); err != nil {
					return err
				}
				return <-readErr
			}
			g.Go(func() error {
				return s.handle(gctx, line, out)
			})
		}
	}
}

func (s *Server) read(r io.Reader, lines chan<- []byte, stop <-chan struct{}) error {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		select {
		case lines <- bytes.Clone(line):
		case <-stop:
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return zerr.Wrap(err, "failed to read request")
	}
	return nil
}

// handle answers one request. Only a failed write aborts the server.
func (s *Server) handle(ctx context.Context, line []byte, out *lineWriter) error {
	s.lifecycle.Touch()

	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return s.reply(out, Response{Error: "invalid request: " + err.Error(), Status: http.StatusBadRequest})
	}

	result, err := s.dispatch(ctx, req)
	if err != nil {
		return s.reply(out, Response{ID: req.ID, Error: err.Error(), Status: transport.HTTPStatus(err)})
	}
	data, err := json.Marshal(result)
	if err != nil {
		err = zerr.Wrap(domain.ErrParamsEncoding, err.Error())
		return s.reply(out, Response{ID: req.ID, Error: err.Error(), Status: transport.HTTPStatus(err)})
	}
	return s.reply(out, Response{ID: req.ID, Result: data})
}

func (s *Server) reply(out *lineWriter, resp Response) error {
	if err := out.write(resp); err != nil {
		return zerr.Wrap(err, "failed to write response")
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req Request) (any, error) {
	switch req.Method {
	case MethodCall:
		params := domain.Params{}
		if err := unmarshalObject(req.Params, &params); err != nil {
			return nil, err
		}
		if params == nil {
			params = domain.Params{}
		}
		return s.svc.Execute(ctx, req.Name, params)
	case MethodTools:
		return s.svc.Catalog().Operations(), nil
	case MethodStats:
		return s.svc.Stats(), nil
	case MethodClear:
		s.svc.Clear()
		return s.svc.Stats(), nil
	case MethodConfigure:
		var update domain.CacheUpdate
		if err := unmarshalObject(req.Params, &update); err != nil {
			return nil, err
		}
		if err := transport.Apply(s.svc, update); err != nil {
			return nil, err
		}
		return s.svc.Stats(), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownOperation, "unknown method"), "method", req.Method)
	}
}

func unmarshalObject(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return zerr.Wrap(domain.ErrInvalidParam, "params must be a JSON object")
	}
	return nil
}
