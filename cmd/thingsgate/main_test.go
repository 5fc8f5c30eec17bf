package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/thingsgate/internal/app"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newComponents(ctrl *gomock.Controller) (*app.Components, *mocks.MockConfigLoader, *mocks.MockLogger) {
	loader := mocks.NewMockConfigLoader(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	application := app.New(loader, logger, mocks.NewMockTracer(ctrl), mocks.NewMockRemoteFactory(ctrl))
	return &app.Components{App: application, Logger: logger}, loader, logger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, _, _ := newComponents(ctrl)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)
	assert.Equal(t, 0, exitCode)
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run logs the error and returns 1 when the command fails.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, loader, logger := newComponents(ctrl)

	loader.EXPECT().Load(gomock.Any(), "").Return(nil, domain.ErrInvalidConfig)
	logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	cleaned := false
	exitCode := run(context.Background(), []string{"serve"}, new(bytes.Buffer), func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := provider(ctx)
		return c, func() { cleaned = true }, err
	}, func(a *app.App) {
		a.WithGetwd(func() (string, error) { return "/work", nil })
	})

	assert.Equal(t, 1, exitCode)
	assert.True(t, cleaned)
}

// TestRun_MissingAction verifies that call without --action fails before any connection.
func TestRun_MissingAction(t *testing.T) {
	ctrl := gomock.NewController(t)
	components, _, logger := newComponents(ctrl)
	logger.EXPECT().Error(domain.ErrMissingAction)

	provider := func(_ context.Context) (*app.Components, func(), error) {
		return components, func() {}, nil
	}

	exitCode := run(context.Background(), []string{"call"}, new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
