// Package httpapi serves the tool service as a JSON HTTP API and provides the matching client.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes a ToolService over HTTP.
type Server struct {
	svc       ports.ToolService
	lifecycle *transport.Lifecycle
	logger    ports.Logger
	echo      *echo.Echo
}

// NewServer creates an HTTP server for svc. lifecycle and logger may be nil.
func NewServer(svc ports.ToolService, lifecycle *transport.Lifecycle, logger ports.Logger) *Server {
	s := &Server{svc: svc, lifecycle: lifecycle, logger: logger}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))

	e.GET("/healthz", s.health)
	v1 := e.Group("/v1", s.touch)
	v1.GET("/tools", s.tools)
	v1.POST("/tools/:name", s.call)
	v1.GET("/cache/stats", s.stats)
	v1.POST("/cache/clear", s.clear)
	v1.PATCH("/cache", s.configure)

	s.echo = e
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe listens on addr and serves until ctx is done or the
// lifecycle reports idle shutdown.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to listen"), "addr", addr)
	}
	return s.Serve(ctx, lis)
}

// Serve serves on lis. It returns nil after an idle shutdown and ctx.Err()
// after cancellation.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{Handler: s.echo, ReadHeaderTimeout: readHeaderTimeout}
	if s.logger != nil {
		s.logger.Info("Serving HTTP on " + lis.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	var result error
	select {
	case <-ctx.Done():
		result = ctx.Err()
	case <-s.lifecycle.Done():
		if s.logger != nil {
			s.logger.Info("Idle timeout reached, shutting down (" + s.lifecycle.Status().String() + ")")
		}
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return zerr.Wrap(err, "HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return zerr.Wrap(err, "HTTP server shutdown failed")
	}
	return result
}

type errorResponse struct {
	Error string `json:"error"`
}

type callResponse struct {
	Result any `json:"result"`
}

type healthResponse struct {
	Status               string `json:"status"`
	UptimeSeconds        int64  `json:"uptimeSeconds"`
	IdleRemainingSeconds int64  `json:"idleRemainingSeconds"`
	Calls                int64  `json:"calls"`
}

type toolsResponse struct {
	Tools []domain.Operation `json:"tools"`
}

func (s *Server) touch(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.lifecycle.Touch()
		return next(c)
	}
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := transport.HTTPStatus(err)
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		msg = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}
	if status >= http.StatusInternalServerError && s.logger != nil {
		s.logger.Error(err)
	}
	if err := c.JSON(status, errorResponse{Error: msg}); err != nil && s.logger != nil {
		s.logger.Error(zerr.Wrap(err, "failed to write error response"))
	}
}

func (s *Server) health(c echo.Context) error {
	st := s.lifecycle.Status()
	return c.JSON(http.StatusOK, healthResponse{
		Status:               "ok",
		UptimeSeconds:        int64(st.Uptime / time.Second),
		IdleRemainingSeconds: int64(st.IdleRemaining / time.Second),
		Calls:                st.Calls,
	})
}

func (s *Server) tools(c echo.Context) error {
	return c.JSON(http.StatusOK, toolsResponse{Tools: s.svc.Catalog().Operations()})
}

func (s *Server) call(c echo.Context) error {
	op := c.Param("name")
	params, err := decodeParams(c.Request().Body)
	if err != nil {
		return err
	}
	if !params.Has(domain.AuthParam) {
		if token := bearer(c.Request().Header.Get(echo.HeaderAuthorization)); token != "" {
			params[domain.AuthParam] = token
		}
	}

	result, err := s.svc.Execute(c.Request().Context(), op, params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, callResponse{Result: result})
}

func (s *Server) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.svc.Stats())
}

func (s *Server) clear(c echo.Context) error {
	s.svc.Clear()
	return c.JSON(http.StatusOK, s.svc.Stats())
}

func (s *Server) configure(c echo.Context) error {
	var update domain.CacheUpdate
	if err := json.NewDecoder(c.Request().Body).Decode(&update); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(domain.ErrInvalidParam, "cache update must be a JSON object")
	}
	if err := transport.Apply(s.svc, update); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s.svc.Stats())
}

// decodeParams reads a JSON object body. An empty body is an empty object.
func decodeParams(r io.Reader) (domain.Params, error) {
	var params domain.Params
	if err := json.NewDecoder(r).Decode(&params); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(domain.ErrInvalidParam, "params must be a JSON object")
	}
	if params == nil {
		params = domain.Params{}
	}
	return params, nil
}

func bearer(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
