// Package rpc serves the tool service over gRPC and provides the matching client.
// Messages are well-known protobuf types so no generated code is needed.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "thingsgate.v1.ToolService"

// Method names of the tool service.
const (
	MethodCall           = "Call"
	MethodListTools      = "ListTools"
	MethodCacheStats     = "CacheStats"
	MethodClearCache     = "ClearCache"
	MethodConfigureCache = "ConfigureCache"
)

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// toolServer is the handler set registered for ServiceName.
type toolServer interface {
	call(ctx context.Context, in *structpb.Struct) (proto.Message, error)
	listTools(ctx context.Context, in *emptypb.Empty) (proto.Message, error)
	cacheStats(ctx context.Context, in *emptypb.Empty) (proto.Message, error)
	clearCache(ctx context.Context, in *emptypb.Empty) (proto.Message, error)
	configureCache(ctx context.Context, in *structpb.Struct) (proto.Message, error)
}

func unary[In proto.Message](
	name string,
	newIn func() In,
	fn func(toolServer, context.Context, In) (proto.Message, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := newIn()
			if err := dec(in); err != nil {
				return nil, err
			}
			ts, _ := srv.(toolServer)
			if interceptor == nil {
				return fn(ts, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				r, _ := req.(In)
				return fn(ts, ctx, r)
			})
		},
	}
}

func newStruct() *structpb.Struct { return &structpb.Struct{} }
func newEmpty() *emptypb.Empty { return &emptypb.Empty{} }

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*toolServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodCall, newStruct, toolServer.call),
		unary(MethodListTools, newEmpty, toolServer.listTools),
		unary(MethodCacheStats, newEmpty, toolServer.cacheStats),
		unary(MethodClearCache, newEmpty, toolServer.clearCache),
		unary(MethodConfigureCache, newStruct, toolServer.configureCache),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "thingsgate/v1/tools.proto",
}
