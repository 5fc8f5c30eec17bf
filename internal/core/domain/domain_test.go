package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/core/domain"
)

func TestDefaultCatalog_Classes(t *testing.T) {
	c := domain.DefaultCatalog()

	tests := []struct {
		op   string
		want domain.OperationClass
	}{
		{domain.OpListDevices, domain.ClassRead},
		{domain.OpGetDeviceStatus, domain.ClassRead},
		{domain.OpGetCurrentMode, domain.ClassRead},
		{domain.OpExecuteCommand, domain.ClassWrite},
		{domain.OpSetMode, domain.ClassWrite},
		{domain.OpExecuteScene, domain.ClassWrite},
		{domain.OpGenerateContextAnalysis, domain.ClassLocal},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			op, ok := c.Lookup(tt.op)
			require.True(t, ok)
			assert.Equal(t, tt.want, op.Class())
			assert.Equal(t, tt.want == domain.ClassRead, c.IsCacheable(tt.op))
			assert.Equal(t, tt.want == domain.ClassWrite, c.IsMutating(tt.op))
		})
	}
}

func TestDefaultCatalog_Targets(t *testing.T) {
	c := domain.DefaultCatalog()

	assert.Equal(t, []string{domain.OpGetDeviceStatus, domain.OpGetDevice}, c.Targets(domain.OpExecuteCommand))
	assert.Equal(t, []string{domain.OpGetCurrentMode}, c.Targets(domain.OpSetMode))
	assert.Empty(t, c.Targets(domain.OpExecuteRule))
	assert.Empty(t, c.Targets(domain.OpListDevices))
	assert.Empty(t, c.Targets("unknown"))

	for _, op := range c.Operations() {
		for _, target := range op.Invalidates {
			assert.True(t, c.IsCacheable(target), "%s invalidates %s", op.Name, target)
		}
	}
}

func TestCatalog_Unknown(t *testing.T) {
	c := domain.DefaultCatalog()
	_, ok := c.Lookup("reboot")
	assert.False(t, ok)
	assert.False(t, c.IsCacheable("reboot"))
	assert.False(t, c.IsMutating("reboot"))
	assert.False(t, c.IsCacheable(domain.OpListTools))
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := domain.DefaultCatalog()
	targets := c.Targets(domain.OpUpdateDevice)
	targets[0] = "mutated"

	op, _ := c.Lookup(domain.OpUpdateDevice)
	op.Invalidates[1] = "mutated"

	assert.Equal(t, []string{domain.OpListDevices, domain.OpGetDevice}, c.Targets(domain.OpUpdateDevice))
}

func TestCatalog_Ordering(t *testing.T) {
	c := domain.DefaultCatalog()
	names := c.Names()
	assert.IsNonDecreasing(t, names)
	assert.Len(t, names, c.Len())

	ops := c.Operations()
	for i := 1; i < len(ops); i++ {
		assert.LessOrEqual(t, ops[i-1].Group, ops[i].Group)
	}
}

func TestNewCatalog_Invalid(t *testing.T) {
	read := domain.Operation{Name: "get", Cacheable: true}
	tests := []struct {
		name        string
		ops         []domain.Operation
		errContains string
	}{
		{
			name:        "empty name",
			ops:         []domain.Operation{{}},
			errContains: "operation name cannot be empty",
		},
		{
			name:        "duplicate",
			ops:         []domain.Operation{read, read},
			errContains: "duplicate operation",
		},
		{
			name:        "unknown target",
			ops:         []domain.Operation{{Name: "set", Mutating: true, Invalidates: []string{"nope"}}},
			errContains: "invalidation target is not a cacheable operation",
		},
		{
			name: "target is a write",
			ops: []domain.Operation{
				{Name: "a", Mutating: true},
				{Name: "b", Mutating: true, Invalidates: []string{"a"}},
			},
			errContains: "invalidation target is not a cacheable operation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewCatalog(tt.ops...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestParams(t *testing.T) {
	p := domain.Params{"device_id": "d1", "count": 3.0, "empty": "", "nothing": nil}

	s, err := p.String("device_id")
	require.NoError(t, err)
	assert.Equal(t, "d1", s)

	s, err = p.String("missing")
	require.NoError(t, err)
	assert.Empty(t, s)

	_, err = p.String("count")
	require.ErrorIs(t, err, domain.ErrInvalidParam)

	_, err = p.Required("empty")
	require.ErrorIs(t, err, domain.ErrMissingParam)
	assert.Contains(t, err.Error(), `"empty" is required`)

	assert.True(t, p.Has("device_id"))
	assert.False(t, p.Has("nothing"))
	assert.False(t, p.Has("missing"))
}

func TestParams_CloneAndRedact(t *testing.T) {
	p := domain.Params{"auth": "secret", "device_id": "d1"}

	clone := p.Clone()
	clone["extra"] = true
	assert.NotContains(t, p, "extra")

	redacted := p.Redacted()
	assert.Equal(t, "***", redacted["auth"])
	assert.Equal(t, "secret", p["auth"])

	plain := domain.Params{"device_id": "d1"}
	assert.Equal(t, plain, plain.Redacted())
}

func TestParseTransport(t *testing.T) {
	for _, s := range []string{"grpc", "http", "stdio"} {
		got, err := domain.ParseTransport(s)
		require.NoError(t, err)
		assert.Equal(t, domain.Transport(s), got)
	}

	_, err := domain.ParseTransport("smtp")
	assert.ErrorIs(t, err, domain.ErrInvalidTransport)
}

func TestCacheConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.CacheConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*domain.CacheConfig) {}},
		{name: "zero ttl", mutate: func(c *domain.CacheConfig) { c.TTLSeconds = 0 }},
		{name: "negative ttl", mutate: func(c *domain.CacheConfig) { c.TTLSeconds = -1 }, wantErr: true},
		{name: "negative size", mutate: func(c *domain.CacheConfig) { c.MaxSize = -1 }, wantErr: true},
		{name: "unknown mode", mutate: func(c *domain.CacheConfig) { c.Invalidation = "lazy" }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.DefaultCacheConfig(domain.InvalidationPrecise)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidConfig)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCacheUpdate(t *testing.T) {
	assert.True(t, domain.CacheUpdate{}.Empty())

	enabled, ttl := false, 30
	u := domain.CacheUpdate{Enabled: &enabled, TTLSeconds: &ttl}
	assert.False(t, u.Empty())
	assert.Equal(t, "enabled=false ttl=30s", u.String())
}

func TestDefaultConfig(t *testing.T) {
	cfg := domain.DefaultConfig()
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "localhost:8000", cfg.Client.Addr())
	assert.Equal(t, domain.InvalidationCoarse, cfg.Server.Cache.Invalidation)
	assert.Equal(t, domain.InvalidationPrecise, cfg.Client.Cache.Invalidation)
	assert.Equal(t, 300, cfg.Server.Cache.TTLSeconds)
	assert.Equal(t, 1000, cfg.Client.Cache.MaxSize)
}

func TestRemoteCallError(t *testing.T) {
	err := domain.NewRemoteCallError(domain.OpGetDevice, 404, "SmartThings API request failed: 404 Not Found")
	assert.Equal(t, "SmartThings API request failed: 404 Not Found", err.Error())
	assert.ErrorIs(t, err, domain.ErrRemoteCall)
	assert.False(t, errors.Is(err, domain.ErrUnknownOperation))
}
