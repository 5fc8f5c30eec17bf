package smartthings_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/thingsgate/internal/adapters/smartthings"
	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/thingsgate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestDispatcher_TokenResolution(t *testing.T) {
	tests := []struct {
		name    string
		params  domain.Params
		def     string
		want    string
		wantErr error
	}{
		{name: "param wins", params: domain.Params{"auth": "call"}, def: "default", want: "call"},
		{name: "default token", params: domain.Params{}, def: "default", want: "default"},
		{name: "empty param falls back", params: domain.Params{"auth": ""}, def: "default", want: "default"},
		{name: "no token", params: domain.Params{}, wantErr: domain.ErrMissingToken},
		{name: "bad type", params: domain.Params{"auth": 5}, def: "default", wantErr: domain.ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			up := mocks.NewMockUpstream(ctrl)
			if tt.wantErr == nil {
				up.EXPECT().Do(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, req ports.UpstreamRequest) (any, error) {
						assert.Equal(t, tt.want, req.Token)
						assert.Equal(t, domain.OpListLocations, req.Operation)
						assert.Equal(t, http.MethodGet, req.Method)
						assert.Equal(t, "locations", req.Path)
						return map[string]any{"items": []any{}}, nil
					})
			}

			d := smartthings.NewDispatcher(up, nil, domain.DefaultCatalog(), tt.def)
			out, err := d.Dispatch(context.Background(), domain.OpListLocations, tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"items": []any{}}, out)
		})
	}
}

func TestDispatcher_RoutesLocalOperations(t *testing.T) {
	ctrl := gomock.NewController(t)
	up := mocks.NewMockUpstream(ctrl)
	local := mocks.NewMockDispatcher(ctrl)

	params := domain.Params{"tool_calls": []any{}}
	local.EXPECT().Dispatch(gomock.Any(), domain.OpGenerateExecutionPlan, params).Return(map[string]any{"plan": []any{}}, nil)

	d := smartthings.NewDispatcher(up, local, domain.DefaultCatalog(), "")
	out, err := d.Dispatch(context.Background(), domain.OpGenerateExecutionPlan, params)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"plan": []any{}}, out)
}

func TestDispatcher_UnknownOperation(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := smartthings.NewDispatcher(mocks.NewMockUpstream(ctrl), nil, domain.DefaultCatalog(), "tok")

	_, err := d.Dispatch(context.Background(), "reboot_hub", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)

	_, err = d.Dispatch(context.Background(), domain.OpGenerateContextAnalysis, nil)
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)
}

func TestDispatcher_MissingParamSkipsUpstream(t *testing.T) {
	ctrl := gomock.NewController(t)
	d := smartthings.NewDispatcher(mocks.NewMockUpstream(ctrl), nil, domain.DefaultCatalog(), "tok")

	_, err := d.Dispatch(context.Background(), domain.OpGetDevice, domain.Params{})
	assert.ErrorIs(t, err, domain.ErrMissingParam)
}

func TestDispatcher_PropagatesRemoteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	up := mocks.NewMockUpstream(ctrl)
	remote := domain.NewRemoteCallError(domain.OpDeleteDevice, http.StatusForbidden,
		"SmartThings API request failed: forbidden")
	up.EXPECT().Do(gomock.Any(), gomock.Any()).Return(nil, remote)

	d := smartthings.NewDispatcher(up, nil, domain.DefaultCatalog(), "tok")
	_, err := d.Dispatch(context.Background(), domain.OpDeleteDevice, domain.Params{"device_id": "d1"})
	assert.Same(t, remote, err)
}
