package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// ListRooms lists the rooms of a location.
func (c *Client) ListRooms(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpListRooms, args("location_id", locationID))
}

// GetRoom returns one room.
func (c *Client) GetRoom(ctx context.Context, locationID, roomID string) (any, error) {
	return c.Call(ctx, domain.OpGetRoom, args("location_id", locationID, "room_id", roomID))
}

// CreateRoom creates a room in a location.
func (c *Client) CreateRoom(ctx context.Context, locationID, name string) (any, error) {
	return c.Call(ctx, domain.OpCreateRoom, args("location_id", locationID, "name", name))
}

// UpdateRoom renames a room.
func (c *Client) UpdateRoom(ctx context.Context, locationID, roomID, name string) (any, error) {
	return c.Call(ctx, domain.OpUpdateRoom, args("location_id", locationID, "room_id", roomID, "name", name))
}

// DeleteRoom deletes a room.
func (c *Client) DeleteRoom(ctx context.Context, locationID, roomID string) (any, error) {
	return c.Call(ctx, domain.OpDeleteRoom, args("location_id", locationID, "room_id", roomID))
}
