package stdio_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/adapters/stdio"
	"go.trai.ch/thingsgate/internal/adapters/transport"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.trai.ch/thingsgate/internal/engine/cache"
	"go.uber.org/mock/gomock"
)

type harness struct {
	client     *stdio.Client
	dispatcher *mocks.MockDispatcher
	engine     *cache.Engine
}

func newEngine(t *testing.T, d *mocks.MockDispatcher) *cache.Engine {
	t.Helper()
	engine, err := cache.New(domain.DefaultCacheConfig(domain.InvalidationCoarse), domain.DefaultCatalog(), d)
	require.NoError(t, err)
	return engine
}

func startServer(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	d := mocks.NewMockDispatcher(ctrl)
	engine := newEngine(t, d)

	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	done := make(chan error, 1)
	go func() {
		err := stdio.NewServer(engine, nil, nil).Serve(context.Background(), reqR, respW)
		_ = respW.Close()
		done <- err
	}()

	client := stdio.NewClient(respR, reqW)
	t.Cleanup(func() {
		require.NoError(t, client.Close())
		require.NoError(t, <-done)
	})
	return &harness{client: client, dispatcher: d, engine: engine}
}

func TestCall_CachesOnServer(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()
	params := domain.Params{"location_id": "loc"}

	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpListModes, params).
		Return(map[string]any{"items": []any{"home", "away"}}, nil).Times(1)

	for range 2 {
		out, err := h.client.Dispatch(ctx, domain.OpListModes, params)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"items": []any{"home", "away"}}, out)
	}
	assert.Equal(t, int64(1), h.engine.Stats().Hits)
}

func TestCall_Concurrent(t *testing.T) {
	h := startServer(t)
	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpGetDevice, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, p domain.Params) (any, error) {
			return map[string]any{"deviceId": p["device_id"]}, nil
		}).AnyTimes()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		wg.Go(func() {
			out, err := h.client.Dispatch(context.Background(), domain.OpGetDevice, domain.Params{"device_id": id})
			assert.NoError(t, err)
			assert.Equal(t, map[string]any{"deviceId": id}, out)
		})
	}
	wg.Wait()
}

func TestCall_ErrorKeepsMessage(t *testing.T) {
	h := startServer(t)
	msg := "SmartThings API request failed: Forbidden"
	h.dispatcher.EXPECT().Dispatch(gomock.Any(), domain.OpDeleteRoom, gomock.Any()).
		Return(nil, domain.NewRemoteCallError(domain.OpDeleteRoom, http.StatusForbidden, msg))

	_, err := h.client.Dispatch(context.Background(), domain.OpDeleteRoom, domain.Params{"room_id": "r"})
	require.Error(t, err)
	assert.Equal(t, msg, err.Error())
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
}

func TestAdministration(t *testing.T) {
	h := startServer(t)
	ctx := context.Background()

	tools, err := h.client.Tools(ctx)
	require.NoError(t, err)
	assert.Len(t, tools, domain.DefaultCatalog().Len())

	ttl := 9
	stats, err := h.client.ConfigureCache(ctx, domain.CacheUpdate{TTLSeconds: &ttl})
	require.NoError(t, err)
	assert.Equal(t, 9, stats.TTLSeconds)

	stats, err = h.client.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCacheMaxSize, stats.MaxSize)

	require.NoError(t, h.client.ClearCache(ctx))
}

func TestServer_RawProtocol(t *testing.T) {
	engine := newEngine(t, mocks.NewMockDispatcher(gomock.NewController(t)))
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	done := make(chan error, 1)
	go func() {
		done <- stdio.NewServer(engine, nil, nil).Serve(context.Background(), reqR, respW)
		_ = respW.Close()
	}()

	go func() {
		_, _ = io.WriteString(reqW, "not json\n\n")
		_, _ = io.WriteString(reqW, `{"id":"1","method":"reboot"}`+"\n")
		_ = reqW.Close()
	}()

	scanner := bufio.NewScanner(respR)
	var got []stdio.Response
	for scanner.Scan() {
		var resp stdio.Response
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		got = append(got, resp)
	}
	require.NoError(t, <-done)
	require.Len(t, got, 2)

	byID := map[string]stdio.Response{}
	for _, r := range got {
		byID[r.ID] = r
	}
	assert.Equal(t, http.StatusBadRequest, byID[""].Status)
	assert.Contains(t, byID[""].Error, "invalid request")
	assert.Equal(t, http.StatusNotFound, byID["1"].Status)
}

func TestClient_ServerGone(t *testing.T) {
	respR, respW := io.Pipe()
	client := stdio.NewClient(respR, nopCloser{io.Discard})
	_ = respW.Close()

	_, err := client.CacheStats(context.Background())
	assert.ErrorIs(t, err, domain.ErrServerUnreachable)
}

func TestServe_IdleShutdown(t *testing.T) {
	engine := newEngine(t, mocks.NewMockDispatcher(gomock.NewController(t)))
	reqR, reqW := io.Pipe()
	t.Cleanup(func() { _ = reqW.Close() })

	done := make(chan error, 1)
	go func() {
		srv := stdio.NewServer(engine, transport.NewLifecycle(20*time.Millisecond), nil)
		done <- srv.Serve(context.Background(), reqR, io.Discard)
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after idle timeout")
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
