package rpc

import (
	"context"
	"errors"
	"net"

	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Server exposes a ToolService over gRPC.
type Server struct {
	svc        ports.ToolService
	lifecycle  *transport.Lifecycle
	logger     ports.Logger
	grpcServer *grpc.Server
}

var _ toolServer = (*Server)(nil)

// NewServer creates a gRPC server for svc. lifecycle may be nil.
func NewServer(svc ports.ToolService, lifecycle *transport.Lifecycle, logger ports.Logger) *Server {
	s := &Server{svc: svc, lifecycle: lifecycle, logger: logger}
	s.grpcServer = grpc.NewServer(grpc.UnaryInterceptor(s.touch))
	s.grpcServer.RegisterService(&serviceDesc, s)
	return s
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
	if s.logger != nil {
		s.logger.Info("Serving gRPC on " + lis.Addr().String())
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.grpcServer.GracefulStop()
		return ctx.Err()
	case <-s.lifecycle.Done():
		if s.logger != nil {
			s.logger.Info("Idle timeout reached, shutting down (" + s.lifecycle.Status().String() + ")")
		}
		s.grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return zerr.Wrap(err, "gRPC server failed")
	}
}

// Stop stops the server immediately.
func (s *Server) Stop() {
	s.grpcServer.Stop()
}

func (s *Server) touch(
	ctx context.Context,
	req any,
	_ *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	s.lifecycle.Touch()
	resp, err := handler(ctx, req)
	return resp, toStatus(err)
}

func (s *Server) call(ctx context.Context, in *structpb.Struct) (proto.Message, error) {
	op, params := parseCallRequest(in)
	if op == "" {
		return nil, zerr.Wrap(domain.ErrMissingParam, "call has no operation name")
	}
	result, err := s.svc.Execute(ctx, op, params)
	if err != nil {
		return nil, err
	}
	val, err := toValue(result)
	if err != nil {
		return nil, zerr.With(err, "operation", op)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{fieldResult: val}}, nil
}

func (s *Server) listTools(_ context.Context, _ *emptypb.Empty) (proto.Message, error) {
	return toStruct(map[string]any{fieldTools: s.svc.Catalog().Operations()})
}

func (s *Server) cacheStats(_ context.Context, _ *emptypb.Empty) (proto.Message, error) {
	return toStruct(s.svc.Stats())
}

func (s *Server) clearCache(_ context.Context, _ *emptypb.Empty) (proto.Message, error) {
	s.svc.Clear()
	return &emptypb.Empty{}, nil
}

func (s *Server) configureCache(_ context.Context, in *structpb.Struct) (proto.Message, error) {
	var update domain.CacheUpdate
	if err := decode(in, &update); err != nil {
		return nil, zerr.Wrap(domain.ErrInvalidParam, err.Error())
	}
	if err := transport.Apply(s.svc, update); err != nil {
		return nil, err
	}
	return toStruct(s.svc.Stats())
}
