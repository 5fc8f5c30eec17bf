package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// DeviceFilter narrows ListDevices. Empty fields are ignored.
type DeviceFilter struct {
	Capability string
	DeviceID   string
	LocationID string
	RoomID     string
}

// ListDevices lists devices matching filter.
func (c *Client) ListDevices(ctx context.Context, filter DeviceFilter) (any, error) {
	return c.Call(ctx, domain.OpListDevices, args(
		"capability", filter.Capability,
		"device_id", filter.DeviceID,
		"location_id", filter.LocationID,
		"room_id", filter.RoomID))
}

// GetDevice returns one device.
func (c *Client) GetDevice(ctx context.Context, deviceID string) (any, error) {
	return c.Call(ctx, domain.OpGetDevice, args("device_id", deviceID))
}

// GetDeviceStatus returns the status of a device, optionally narrowed to a
// component and capability.
func (c *Client) GetDeviceStatus(ctx context.Context, deviceID, componentID, capabilityID string) (any, error) {
	return c.Call(ctx, domain.OpGetDeviceStatus, args(
		"device_id", deviceID, "component_id", componentID, "capability_id", capabilityID))
}

// GetDeviceComponents lists the components of a device.
func (c *Client) GetDeviceComponents(ctx context.Context, deviceID string) (any, error) {
	return c.Call(ctx, domain.OpGetDeviceComponents, args("device_id", deviceID))
}

// GetDeviceCapabilities lists the capabilities of a device component.
func (c *Client) GetDeviceCapabilities(ctx context.Context, deviceID, componentID string) (any, error) {
	return c.Call(ctx, domain.OpGetDeviceCapabilities, args("device_id", deviceID, "component_id", componentID))
}

// GetDeviceHealth returns the health of a device.
func (c *Client) GetDeviceHealth(ctx context.Context, deviceID string) (any, error) {
	return c.Call(ctx, domain.OpGetDeviceHealth, args("device_id", deviceID))
}

// GetDevicePresentation returns the presentation of a device.
func (c *Client) GetDevicePresentation(ctx context.Context, deviceID string) (any, error) {
	return c.Call(ctx, domain.OpGetDevicePresentation, args("device_id", deviceID))
}

// Command is one device command.
type Command struct {
	Component  string
	Capability string
	Command    string
	Arguments  []any
}

// ExecuteCommand sends cmd to a device.
func (c *Client) ExecuteCommand(ctx context.Context, deviceID string, cmd Command) (any, error) {
	arguments := cmd.Arguments
	if arguments == nil {
		arguments = []any{}
	}
	return c.Call(ctx, domain.OpExecuteCommand, args(
		"device_id", deviceID,
		"component", cmd.Component,
		"capability", cmd.Capability,
		"command", cmd.Command,
		"arguments", arguments))
}

// UpdateDevice relabels a device.
func (c *Client) UpdateDevice(ctx context.Context, deviceID, label string) (any, error) {
	return c.Call(ctx, domain.OpUpdateDevice, args("device_id", deviceID, "label", label))
}

// DeleteDevice deletes a device.
func (c *Client) DeleteDevice(ctx context.Context, deviceID string) (any, error) {
	return c.Call(ctx, domain.OpDeleteDevice, args("device_id", deviceID))
}
