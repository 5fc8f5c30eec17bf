package smartthings

import (
	"net/http"
	"net/url"
	"strings"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
)

type endpoint func(b *builder) ports.UpstreamRequest

// builder collects path segments, query values and body fields for one call.
// The first missing or mistyped parameter is kept in err and later lookups are no-ops.
type builder struct {
	params domain.Params
	err    error
}

// id returns the path-escaped value of a required parameter.
func (b *builder) id(key string) string {
	if b.err != nil {
		return ""
	}
	v, err := b.params.Required(key)
	if err != nil {
		b.err = err
		return ""
	}
	return url.PathEscape(v)
}

// str returns a required string parameter unescaped.
func (b *builder) str(key string) string {
	if b.err != nil {
		return ""
	}
	v, err := b.params.Required(key)
	if err != nil {
		b.err = err
	}
	return v
}

// set reports whether key carries a value worth sending.
func (b *builder) set(key string) bool {
	if !b.params.Has(key) {
		return false
	}
	if s, ok := b.params[key].(string); ok && s == "" {
		return false
	}
	return true
}

// query maps optional string parameters onto API query names, given as api, param pairs.
func (b *builder) query(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if b.err != nil || !b.set(pairs[i+1]) {
			continue
		}
		v, err := b.params.String(pairs[i+1])
		if err != nil {
			b.err = err
			continue
		}
		q.Set(pairs[i], v)
	}
	return q
}

// body copies optional parameters onto API field names, given as api, param pairs.
func (b *builder) body(into map[string]any, pairs ...string) map[string]any {
	if into == nil {
		into = map[string]any{}
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if b.set(pairs[i+1]) {
			into[pairs[i]] = b.params[pairs[i+1]]
		}
	}
	return into
}

func path(segments ...string) string {
	return strings.Join(segments, "/")
}

func get(p string, q url.Values) ports.UpstreamRequest {
	return ports.UpstreamRequest{Method: http.MethodGet, Path: p, Query: q}
}

func send(method, p string, q url.Values, body any) ports.UpstreamRequest {
	return ports.UpstreamRequest{Method: method, Path: p, Query: q, Body: body}
}

var endpoints = map[string]endpoint{
	domain.OpListDevices: func(b *builder) ports.UpstreamRequest {
		return get("devices", b.query(
			"capability", "capability",
			"deviceId", "device_id",
			"locationId", "location_id",
			"roomId", "room_id"))
	},
	domain.OpGetDevice: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id")), nil)
	},
	domain.OpGetDeviceStatus: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id"), "status"), b.query(
			"componentId", "component_id",
			"capabilityId", "capability_id"))
	},
	domain.OpGetDeviceComponents: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id"), "components"), nil)
	},
	domain.OpGetDeviceCapabilities: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id"), "components", b.id("component_id"), "capabilities"), nil)
	},
	domain.OpGetDeviceHealth: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id"), "health"), nil)
	},
	domain.OpGetDevicePresentation: func(b *builder) ports.UpstreamRequest {
		return get(path("devices", b.id("device_id"), "presentation"), nil)
	},
	domain.OpExecuteCommand: func(b *builder) ports.UpstreamRequest {
		p := path("devices", b.id("device_id"), "commands")
		component := "main"
		if b.set("component") {
			component = b.str("component")
		}
		command := map[string]any{
			"component":  component,
			"capability": b.str("capability"),
			"command":    b.str("command"),
			"arguments":  []any{},
		}
		b.body(command, "arguments", "arguments")
		return send(http.MethodPost, p, nil, map[string]any{"commands": []any{command}})
	},
	domain.OpUpdateDevice: func(b *builder) ports.UpstreamRequest {
		p := path("devices", b.id("device_id"))
		return send(http.MethodPut, p, nil, map[string]any{"label": b.str("label")})
	},
	domain.OpDeleteDevice: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodDelete, path("devices", b.id("device_id")), nil, nil)
	},

	domain.OpListLocations: func(*builder) ports.UpstreamRequest {
		return get("locations", nil)
	},
	domain.OpGetLocation: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id")), nil)
	},
	domain.OpGetLocationRooms: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "rooms"), nil)
	},
	domain.OpCreateLocation: func(b *builder) ports.UpstreamRequest {
		data := map[string]any{"name": b.str("name"), "countryCode": b.str("country_code")}
		return send(http.MethodPost, "locations", nil, locationBody(b, data))
	},
	domain.OpUpdateLocation: func(b *builder) ports.UpstreamRequest {
		p := path("locations", b.id("location_id"))
		data := b.body(map[string]any{"name": b.str("name")}, "countryCode", "country_code")
		return send(http.MethodPut, p, nil, locationBody(b, data))
	},
	domain.OpDeleteLocation: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodDelete, path("locations", b.id("location_id")), nil, nil)
	},

	domain.OpListRooms: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "rooms"), nil)
	},
	domain.OpGetRoom: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "rooms", b.id("room_id")), nil)
	},
	domain.OpCreateRoom: func(b *builder) ports.UpstreamRequest {
		p := path("locations", b.id("location_id"), "rooms")
		return send(http.MethodPost, p, nil, map[string]any{"name": b.str("name")})
	},
	domain.OpUpdateRoom: func(b *builder) ports.UpstreamRequest {
		p := path("locations", b.id("location_id"), "rooms", b.id("room_id"))
		return send(http.MethodPut, p, nil, map[string]any{"name": b.str("name")})
	},
	domain.OpDeleteRoom: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodDelete, path("locations", b.id("location_id"), "rooms", b.id("room_id")), nil, nil)
	},

	domain.OpListModes: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "modes"), nil)
	},
	domain.OpGetMode: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "modes", b.id("mode_id")), nil)
	},
	domain.OpGetCurrentMode: func(b *builder) ports.UpstreamRequest {
		return get(path("locations", b.id("location_id"), "modes", "current"), nil)
	},
	domain.OpSetMode: func(b *builder) ports.UpstreamRequest {
		p := path("locations", b.id("location_id"), "modes", "current")
		return send(http.MethodPut, p, nil, map[string]any{"modeId": b.str("mode_id")})
	},

	domain.OpListRules: func(b *builder) ports.UpstreamRequest {
		return get("rules", b.query("locationId", "location_id"))
	},
	domain.OpGetRule: func(b *builder) ports.UpstreamRequest {
		return get(path("rules", b.id("rule_id")), b.query("locationId", "location_id"))
	},
	domain.OpCreateRule: func(b *builder) ports.UpstreamRequest {
		data := map[string]any{"name": b.str("name"), "actions": b.params["actions"]}
		if data["actions"] == nil {
			data["actions"] = []any{}
		}
		b.body(data, "triggers", "triggers")
		return send(http.MethodPost, "rules", b.query("locationId", "location_id"), data)
	},
	domain.OpUpdateRule: func(b *builder) ports.UpstreamRequest {
		p := path("rules", b.id("rule_id"))
		data := b.body(nil, "name", "name", "actions", "actions", "triggers", "triggers", "enabled", "enabled")
		return send(http.MethodPut, p, b.query("locationId", "location_id"), data)
	},
	domain.OpDeleteRule: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodDelete, path("rules", b.id("rule_id")), b.query("locationId", "location_id"), nil)
	},
	domain.OpExecuteRule: func(b *builder) ports.UpstreamRequest {
		p := path("rules", b.id("rule_id"), "execute")
		return send(http.MethodPost, p, b.query("locationId", "location_id"), nil)
	},

	domain.OpListScenes: func(b *builder) ports.UpstreamRequest {
		return get("scenes", b.query("locationId", "location_id"))
	},
	domain.OpGetScene: func(b *builder) ports.UpstreamRequest {
		return get(path("scenes", b.id("scene_id")), nil)
	},
	domain.OpExecuteScene: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodPost, path("scenes", b.id("scene_id"), "execute"), nil, nil)
	},
	domain.OpCreateScene: func(b *builder) ports.UpstreamRequest {
		data := map[string]any{"locationId": b.str("location_id"), "sceneName": b.str("name")}
		b.body(data, "icon", "icon", "colors", "colors", "actions", "actions")
		return send(http.MethodPost, "scenes", nil, data)
	},
	domain.OpUpdateScene: func(b *builder) ports.UpstreamRequest {
		p := path("scenes", b.id("scene_id"))
		data := b.body(nil, "sceneName", "name", "icon", "icon", "colors", "colors", "actions", "actions")
		return send(http.MethodPut, p, nil, data)
	},
	domain.OpDeleteScene: func(b *builder) ports.UpstreamRequest {
		return send(http.MethodDelete, path("scenes", b.id("scene_id")), nil, nil)
	},
}

// locationBody adds the optional location fields. Coordinates are only sent as a pair.
func locationBody(b *builder, data map[string]any) map[string]any {
	if b.set("latitude") && b.set("longitude") {
		b.body(data, "latitude", "latitude", "longitude", "longitude")
	}
	return b.body(data, "regionCode", "region_code", "locality", "locality", "addressLines", "address_lines")
}

// buildRequest resolves the REST request for op. It reports false for
// operations that have no endpoint.
func buildRequest(op string, params domain.Params) (ports.UpstreamRequest, bool, error) {
	ep, ok := endpoints[op]
	if !ok {
		return ports.UpstreamRequest{}, false, nil
	}
	b := &builder{params: params}
	req := ep(b)
	if b.err != nil {
		return ports.UpstreamRequest{}, true, b.err
	}
	req.Operation = op
	return req, true, nil
}
