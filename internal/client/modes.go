package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// ListModes lists the modes of a location.
func (c *Client) ListModes(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpListModes, args("location_id", locationID))
}

// GetMode returns one mode.
func (c *Client) GetMode(ctx context.Context, locationID, modeID string) (any, error) {
	return c.Call(ctx, domain.OpGetMode, args("location_id", locationID, "mode_id", modeID))
}

// GetCurrentMode returns the active mode of a location.
func (c *Client) GetCurrentMode(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpGetCurrentMode, args("location_id", locationID))
}

// SetMode changes the active mode of a location.
func (c *Client) SetMode(ctx context.Context, locationID, modeID string) (any, error) {
	return c.Call(ctx, domain.OpSetMode, args("location_id", locationID, "mode_id", modeID))
}
