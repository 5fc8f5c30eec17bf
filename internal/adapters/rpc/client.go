package rpc

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client implements ports.Remote over gRPC.
type Client struct {
	conn *grpc.ClientConn
}

var _ ports.Remote = (*Client)(nil)

// Dial creates a client for addr. The connection is established lazily on the first call.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "gRPC client creation failed"), "addr", addr)
	}
	return &Client{conn: conn}, nil
}

// Dispatch implements ports.Dispatcher by calling the remote tool service.
func (c *Client) Dispatch(ctx context.Context, op string, params domain.Params) (any, error) {
	in, err := callRequest(op, params)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, fullMethod(MethodCall), in, out); err != nil {
		return nil, fromStatus(op, err)
	}
	return out.GetFields()[fieldResult].AsInterface(), nil
}

// Tools implements ports.Remote.
func (c *Client) Tools(ctx context.Context) ([]domain.Operation, error) {
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, fullMethod(MethodListTools), &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(domain.OpListTools, err)
	}
	var resp struct {
		Tools []domain.Operation `json:"tools"`
	}
	if err := decode(out, &resp); err != nil {
		return nil, err
	}
	return resp.Tools, nil
}

// CacheStats implements ports.Remote.
func (c *Client) CacheStats(ctx context.Context) (domain.CacheStats, error) {
	return c.stats(ctx, MethodCacheStats, &emptypb.Empty{})
}

// ClearCache implements ports.Remote.
func (c *Client) ClearCache(ctx context.Context) error {
	if err := c.conn.Invoke(ctx, fullMethod(MethodClearCache), &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		return fromStatus(MethodClearCache, err)
	}
	return nil
}

// ConfigureCache implements ports.Remote.
func (c *Client) ConfigureCache(ctx context.Context, update domain.CacheUpdate) (domain.CacheStats, error) {
	in, err := toStruct(update)
	if err != nil {
		return domain.CacheStats{}, err
	}
	return c.stats(ctx, MethodConfigureCache, in)
}

func (c *Client) stats(ctx context.Context, method string, in any) (domain.CacheStats, error) {
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, fullMethod(method), in, out); err != nil {
		return domain.CacheStats{}, fromStatus(method, err)
	}
	var stats domain.CacheStats
	if err := decode(out, &stats); err != nil {
		return domain.CacheStats{}, err
	}
	return stats, nil
}

// Close implements ports.Remote.
func (c *Client) Close() error {
	return c.conn.Close()
}
