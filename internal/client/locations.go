package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// Location holds the writable fields of a location. Coordinates are sent only as a pair.
type Location struct {
	Name         string
	CountryCode  string
	Latitude     *float64
	Longitude    *float64
	RegionCode   string
	Locality     string
	AddressLines []string
}

func (l Location) params(kv ...any) domain.Params {
	p := args(append(kv,
		"name", l.Name,
		"country_code", l.CountryCode,
		"region_code", l.RegionCode,
		"locality", l.Locality)...)
	if l.Latitude != nil && l.Longitude != nil {
		p["latitude"] = *l.Latitude
		p["longitude"] = *l.Longitude
	}
	if len(l.AddressLines) > 0 {
		lines := make([]any, len(l.AddressLines))
		for i, s := range l.AddressLines {
			lines[i] = s
		}
		p["address_lines"] = lines
	}
	return p
}

// ListLocations lists all locations.
func (c *Client) ListLocations(ctx context.Context) (any, error) {
	return c.Call(ctx, domain.OpListLocations, nil)
}

// GetLocation returns one location.
func (c *Client) GetLocation(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpGetLocation, args("location_id", locationID))
}

// GetLocationRooms lists the rooms of a location.
func (c *Client) GetLocationRooms(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpGetLocationRooms, args("location_id", locationID))
}

// CreateLocation creates a location.
func (c *Client) CreateLocation(ctx context.Context, loc Location) (any, error) {
	return c.Call(ctx, domain.OpCreateLocation, loc.params())
}

// UpdateLocation updates a location.
func (c *Client) UpdateLocation(ctx context.Context, locationID string, loc Location) (any, error) {
	return c.Call(ctx, domain.OpUpdateLocation, loc.params("location_id", locationID))
}

// DeleteLocation deletes a location.
func (c *Client) DeleteLocation(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpDeleteLocation, args("location_id", locationID))
}
