package client

import (
	"context"

	"go.trai.ch/thingsgate/internal/core/domain"
)

// Rule holds the writable fields of a rule. Nil fields are left unchanged on update.
type Rule struct {
	Name     string
	Actions  []any
	Triggers []any
	Enabled  *bool
}

func (r Rule) params(kv ...any) domain.Params {
	p := args(append(kv, "name", r.Name)...)
	if r.Actions != nil {
		p["actions"] = r.Actions
	}
	if r.Triggers != nil {
		p["triggers"] = r.Triggers
	}
	if r.Enabled != nil {
		p["enabled"] = *r.Enabled
	}
	return p
}

// ListRules lists rules, optionally of one location.
func (c *Client) ListRules(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpListRules, args("location_id", locationID))
}

// GetRule returns one rule.
func (c *Client) GetRule(ctx context.Context, ruleID, locationID string) (any, error) {
	return c.Call(ctx, domain.OpGetRule, args("rule_id", ruleID, "location_id", locationID))
}

// CreateRule creates a rule in a location.
func (c *Client) CreateRule(ctx context.Context, locationID string, rule Rule) (any, error) {
	return c.Call(ctx, domain.OpCreateRule, rule.params("location_id", locationID))
}

// UpdateRule updates a rule.
func (c *Client) UpdateRule(ctx context.Context, ruleID, locationID string, rule Rule) (any, error) {
	return c.Call(ctx, domain.OpUpdateRule, rule.params("rule_id", ruleID, "location_id", locationID))
}

// DeleteRule deletes a rule.
func (c *Client) DeleteRule(ctx context.Context, ruleID, locationID string) (any, error) {
	return c.Call(ctx, domain.OpDeleteRule, args("rule_id", ruleID, "location_id", locationID))
}

// ExecuteRule runs a rule now.
func (c *Client) ExecuteRule(ctx context.Context, ruleID, locationID string) (any, error) {
	return c.Call(ctx, domain.OpExecuteRule, args("rule_id", ruleID, "location_id", locationID))
}

// Scene holds the writable fields of a scene.
type Scene struct {
	Name    string
	Icon    string
	Colors  map[string]any
	Actions []any
}

func (s Scene) params(kv ...any) domain.Params {
	p := args(append(kv, "name", s.Name, "icon", s.Icon)...)
	if s.Colors != nil {
		p["colors"] = s.Colors
	}
	if s.Actions != nil {
		p["actions"] = s.Actions
	}
	return p
}

// ListScenes lists scenes, optionally of one location.
func (c *Client) ListScenes(ctx context.Context, locationID string) (any, error) {
	return c.Call(ctx, domain.OpListScenes, args("location_id", locationID))
}

// GetScene returns one scene.
func (c *Client) GetScene(ctx context.Context, sceneID string) (any, error) {
	return c.Call(ctx, domain.OpGetScene, args("scene_id", sceneID))
}

// ExecuteScene runs a scene.
func (c *Client) ExecuteScene(ctx context.Context, sceneID string) (any, error) {
	return c.Call(ctx, domain.OpExecuteScene, args("scene_id", sceneID))
}

// CreateScene creates a scene in a location.
func (c *Client) CreateScene(ctx context.Context, locationID string, scene Scene) (any, error) {
	return c.Call(ctx, domain.OpCreateScene, scene.params("location_id", locationID))
}

// UpdateScene updates a scene.
func (c *Client) UpdateScene(ctx context.Context, sceneID string, scene Scene) (any, error) {
	return c.Call(ctx, domain.OpUpdateScene, scene.params("scene_id", sceneID))
}

// DeleteScene deletes a scene.
func (c *Client) DeleteScene(ctx context.Context, sceneID string) (any, error) {
	return c.Call(ctx, domain.OpDeleteScene, args("scene_id", sceneID))
}
