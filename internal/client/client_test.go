package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/client"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newClient(t *testing.T, auth string) (*client.Client, *mocks.MockRemote) {
	t.Helper()
	ctrl := gomock.NewController(t)
	remote := mocks.NewMockRemote(ctrl)
	c, err := client.New(remote, domain.DefaultCacheConfig(domain.InvalidationPrecise), auth)
	require.NoError(t, err)
	return c, remote
}

func TestClient_PreciseInvalidation(t *testing.T) {
	c, remote := newClient(t, "tok")
	ctx := context.Background()

	device := domain.Params{"device_id": "d1", "auth": "tok"}
	list := domain.Params{"auth": "tok"}
	gomock.InOrder(
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpGetDevice, device).Return(map[string]any{"v": 1.0}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpListDevices, list).Return(map[string]any{"items": []any{}}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpExecuteCommand, gomock.Any()).Return(map[string]any{}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpGetDevice, device).Return(map[string]any{"v": 2.0}, nil),
	)

	out, err := c.GetDevice(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": 1.0}, out)

	_, err = c.GetDevice(ctx, "d1")
	require.NoError(t, err)
	_, err = c.ListDevices(ctx, client.DeviceFilter{})
	require.NoError(t, err)

	_, err = c.ExecuteCommand(ctx, "d1", client.Command{Capability: "switch", Command: "on"})
	require.NoError(t, err)

	out, err = c.GetDevice(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"v": 2.0}, out)

	_, err = c.ListDevices(ctx, client.DeviceFilter{})
	require.NoError(t, err)

	stats := c.CacheStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(3), stats.Misses)
	assert.Equal(t, domain.InvalidationPrecise, stats.Invalidation)
}

func TestClient_AuthInjection(t *testing.T) {
	c, remote := newClient(t, "default")
	ctx := context.Background()

	remote.EXPECT().Dispatch(gomock.Any(), domain.OpGetScene, domain.Params{"scene_id": "s", "auth": "default"}).
		Return(map[string]any{}, nil)
	remote.EXPECT().Dispatch(gomock.Any(), domain.OpGetScene, domain.Params{"scene_id": "s", "auth": "mine"}).
		Return(map[string]any{}, nil)

	_, err := c.GetScene(ctx, "s")
	require.NoError(t, err)

	params := domain.Params{"scene_id": "s", "auth": "mine"}
	_, err = c.Call(ctx, domain.OpGetScene, params)
	require.NoError(t, err)
	assert.Equal(t, domain.Params{"scene_id": "s", "auth": "mine"}, params)
}

func TestClient_OptionalArgsOmitted(t *testing.T) {
	c, remote := newClient(t, "")
	ctx := context.Background()

	lat, long := 45.0, -93.0
	gomock.InOrder(
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpGetDeviceStatus, domain.Params{"device_id": "d"}).
			Return(map[string]any{}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpCreateLocation, domain.Params{
			"name": "Home", "country_code": "USA", "latitude": 45.0, "longitude": -93.0,
			"address_lines": []any{"1 Main St"},
		}).Return(map[string]any{}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpUpdateRule, domain.Params{
			"rule_id": "r", "enabled": false,
		}).Return(map[string]any{}, nil),
		remote.EXPECT().Dispatch(gomock.Any(), domain.OpCreateScene, domain.Params{
			"location_id": "loc", "name": "Movie", "actions": []any{},
		}).Return(map[string]any{}, nil),
	)

	_, err := c.GetDeviceStatus(ctx, "d", "", "")
	require.NoError(t, err)
	_, err = c.CreateLocation(ctx, client.Location{
		Name: "Home", CountryCode: "USA", Latitude: &lat, Longitude: &long, AddressLines: []string{"1 Main St"},
	})
	require.NoError(t, err)
	off := false
	_, err = c.UpdateRule(ctx, "r", "", client.Rule{Enabled: &off})
	require.NoError(t, err)
	_, err = c.CreateScene(ctx, "loc", client.Scene{Name: "Movie", Actions: []any{}})
	require.NoError(t, err)
}

func TestClient_ListTools(t *testing.T) {
	c, remote := newClient(t, "")
	ops := domain.DefaultOperations()[:2]
	remote.EXPECT().Tools(gomock.Any()).Return(ops, nil)

	out, err := c.Call(context.Background(), domain.OpListTools, nil)
	require.NoError(t, err)
	assert.Equal(t, ops, out)
}

func TestClient_CacheControls(t *testing.T) {
	c, remote := newClient(t, "")
	ctx := context.Background()
	remote.EXPECT().Dispatch(gomock.Any(), domain.OpListLocations, gomock.Any()).Return([]any{}, nil).Times(2)

	_, err := c.ListLocations(ctx)
	require.NoError(t, err)
	c.SetCacheEnabled(false)
	assert.Zero(t, c.CacheStats().Size)
	_, err = c.ListLocations(ctx)
	require.NoError(t, err)

	require.NoError(t, c.SetCacheTTL(10))
	assert.Equal(t, 10, c.CacheStats().TTLSeconds)
	assert.ErrorIs(t, c.SetCacheTTL(-1), domain.ErrInvalidConfig)

	c.ClearCache()
	assert.Zero(t, c.CacheStats().TotalRequests)
	assert.Same(t, remote, c.Server())
}

func TestClient_Close(t *testing.T) {
	c, remote := newClient(t, "")
	remote.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
}

func TestClient_InvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := client.New(mocks.NewMockRemote(ctrl), domain.CacheConfig{TTLSeconds: -1, Invalidation: domain.InvalidationPrecise}, "")
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)

	_, err = client.New(nil, domain.DefaultCacheConfig(domain.InvalidationPrecise), "")
	assert.Error(t, err)
}
