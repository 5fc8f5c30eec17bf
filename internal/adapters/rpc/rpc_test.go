package rpc_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/adapters/rpc"
	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.trai.ch/thingsgate/internal/engine/cache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type harness struct {
	client     *rpc.Client
	dispatcher *mocks.MockDispatcher
	engine     *cache.Engine
}

func startServer(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDispatcher(ctrl)

	engine, err := cache.New(domain.DefaultCacheConfig(domain.InvalidationCoarse), domain.DefaultCatalog(), d)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	srv := rpc.NewServer(engine, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	client, err := rpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(
		func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
		cancel()
		<-done
	})
	return &harness{client: client, dispatcher: d, engine: engine}
}

func TestCall_CachesOnServer(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	params := domain.Params{"location_id": "loc", "auth": "tok"}

	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpListDevices, params).
		Return(map[string]any{"items": []any{map[string]any{"deviceId": "d1", "online": true}}}, nil).Times(1)

	for range 2 {
		out, err := h.client.Dispatch(ctx, domain.OpListDevices, params)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"items": []any{map[string]any{"deviceId": "d1", "online": true}}}, out)
	}

	stats, err := h.client.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
	assert.InDelta(t, 50.0, stats.HitRatePercent, 0.001)
	assert.Equal(t, domain.InvalidationCoarse, stats.Invalidation)
}

func TestCall_ArrayResult(t *testing.T) {
	h := startServer(t)
	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpGenerateExecutionPlan, gomock.Any()).
		Return([]any{"a", 1.5}, nil)

	out, err := h.client.Dispatch(context.Background(), domain.OpGenerateExecutionPlan, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", 1.5}, out)
}

func TestCall_RemoteErrorKeepsMessage(t *testing.T) {
	h := startServer(t)
	msg := "SmartThings API request failed: device not found"
	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpGetDevice, gomock.Any()).
		Return(nil, domain.NewRemoteCallError(domain.OpGetDevice, http.StatusNotFound, msg))

	_, err := h.client.Dispatch(context.Background(), domain.OpGetDevice, domain.Params{"device_id": "x"})
	require.Error(t, err)
	assert.Equal(t, msg, err.Error())
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.NotErrorIs(t, err, domain.ErrUnknownOperation)
}

func TestCall_UnknownOperation(t *testing.T) {
	h := startServer(t)
	h.dispatcher.EXPECT().Dispatch(gomock.Any(), "reboot", gomock.Any()).
		Return(nil, zerr.Wrap(domain.ErrUnknownOperation, "no handler for reboot"))

	_, err := h.client.Dispatch(context.Background(), "reboot", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
	assert.Equal(t, "no handler for reboot: unknown operation", err.Error())
}

func TestCall_UnencodableParams(t *testing.T) {
	h := startServer(t)
	_, err := h.client.Dispatch(context.Background(), domain.OpListDevices, domain.Params{"bad": make(chan int)})
	assert.ErrorIs(t, err, domain.ErrParamsEncoding)
}

func TestTools(t *testing.T) {
	h := startServer(t)
	tools, err := h.client.Tools(context.Background())
	require.NoError(t, err)
	assert.Len(t, tools, domain.DefaultCatalog().Len())

	names := make(map[string]domain.Operation, len(tools))
	for _, op := range tools {
		names[op.Name] = op
	}
	assert.Equal(t, []string{domain.OpGetDeviceStatus, domain.OpGetDevice}, names[domain.OpExecuteCommand].Invalidates)
	assert.True(t, names[domain.OpListScenes].Cacheable)
}

func TestConfigureAndClear(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	ttl := 42
	stats, err := h.client.ConfigureCache(ctx, domain.CacheUpdate{TTLSeconds: &ttl})
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TTLSeconds)
	assert.True(t, stats.Enabled)

	off := false
	stats, err = h.client.ConfigureCache(ctx, domain.CacheUpdate{Enabled: &off})
	require.NoError(t, err)
	assert.False(t, stats.Enabled)
	assert.False(t, h.engine.Config().Enabled)

	bad := -1
	_, err = h.client.ConfigureCache(ctx, domain.CacheUpdate{TTLSeconds: &bad})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)

	require.NoError(t, h.client.ClearCache(ctx))
	assert.Zero(t, h.engine.Stats().TotalRequests)
}

func TestServe_IdleShutdown(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine, err := cache.New(domain.DefaultCacheConfig(domain.InvalidationCoarse), domain.DefaultCatalog(),
		mocks.NewMockDispatcher(ctrl))
	require.NoError(t, err)

	lc := transport.NewLifecycle(20 * time.Millisecond)
	srv := rpc.NewServer(engine, lc, nil)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), bufconn.Listen(1024)) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		srv.Stop()
		t.Fatal("server did not stop after idle timeout")
	}
}
