package config_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/adapters/config"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	dir := t.TempDir()
	path := writeConfig(t, dir, "server:\n  cache:\n    ttlSeconds: 60\n")

	loader := config.NewLoader(log)
	loader.Getenv = func(string) string { return "" }

	var mu sync.Mutex
	var got []*domain.Config
	w := config.NewWatcher(loader, log, dir, path, func(cfg *domain.Config) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, cfg)
	}).WithWindow(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Invalid edits are skipped, valid ones are delivered.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("server:\n  cache:\n    ttlSeconds: -3\n"), 0o600)
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(path, []byte("server:\n  cache:\n    ttlSeconds: 5\n"), 0o600)
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, got[len(got)-1].Server.Cache.TTLSeconds)
}
