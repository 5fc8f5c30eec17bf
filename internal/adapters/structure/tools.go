// Package structure validates the structured-output tools that planners call
// instead of emitting free-form JSON. They run locally and are never cached.
package structure

import (
	"context"
	"fmt"
	"strconv"

	"go.trai.ch/thingsgate/internal/core/domain"
	"go.trai.ch/thingsgate/internal/core/ports"
	"go.trai.ch/zerr"
)

const defaultEntityConfidence = 0.5

var intents = map[string]bool{"query": true, "control": true, "status": true, "other": true}

// Tools answers the structure operations.
type Tools struct {
	logger ports.Logger
}

var _ ports.Dispatcher = (*Tools)(nil)

// New creates the structure tools. logger may be nil.
func New(logger ports.Logger) *Tools {
	return &Tools{logger: logger}
}

// Dispatch implements ports.Dispatcher.
func (t *Tools) Dispatch(_ context.Context, op string, params domain.Params) (any, error) {
	switch op {
	case domain.OpGenerateContextAnalysis:
		return t.ContextAnalysis(params), nil
	case domain.OpGenerateExecutionPlan:
		return t.ExecutionPlan(params), nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownOperation, "not a structure tool"), "operation", op)
	}
}

// ContextAnalysis normalizes an intent classification with its extracted entities.
func (t *Tools) ContextAnalysis(params domain.Params) map[string]any {
	intent, _ := params["intent"].(string)
	if !intents[intent] {
		t.warn(fmt.Sprintf("invalid intent %q, defaulting to other", intent))
		intent = "other"
	}

	confidence := clamp(number(params["confidence"], 1))

	ambiguities, ok := params["ambiguities"].([]any)
	if !ok {
		ambiguities = []any{}
	}

	entities := []any{}
	raw, _ := params["entities"].([]any)
	for _, e := range raw {
		entity, ok := e.(map[string]any)
		if !ok {
			t.warn(fmt.Sprintf("skipping invalid entity: %v", e))
			continue
		}
		typ, hasType := entity["type"]
		val, hasValue := entity["value"]
		if !hasType || !hasValue {
			t.warn(fmt.Sprintf("entity missing type or value: %v", e))
			continue
		}
		metadata, ok := entity["metadata"].(map[string]any)
		if !ok {
			metadata = map[string]any{}
		}
		entities = append(entities, map[string]any{
			"type":       text(typ),
			"value":      text(val),
			"confidence": number(entity["confidence"], defaultEntityConfidence),
			"metadata":   metadata,
		})
	}

	reasoning, _ := params["reasoning"].(string)
	t.info(fmt.Sprintf("Generated context analysis: intent=%s, entities=%d", intent, len(entities)))
	return map[string]any{
		"intent":      intent,
		"entities":    entities,
		"ambiguities": ambiguities,
		"reasoning":   reasoning,
		"confidence":  confidence,
	}
}

// ExecutionPlan normalizes an ordered list of tool calls.
func (t *Tools) ExecutionPlan(params domain.Params) map[string]any {
	plan := []any{}
	raw, _ := params["tool_calls"].([]any)
	for _, c := range raw {
		call, ok := c.(map[string]any)
		if !ok {
			t.warn(fmt.Sprintf("skipping invalid tool call: %v", c))
			continue
		}
		name, ok := call["tool_name"]
		if !ok {
			t.warn(fmt.Sprintf("tool call missing tool_name: %v", c))
			continue
		}
		parameters, ok := call["parameters"].(map[string]any)
		if !ok {
			parameters = map[string]any{}
		}
		description := ""
		if d, ok := call["description"]; ok && d != nil {
			description = text(d)
		}
		plan = append(plan, map[string]any{
			"tool_name":   text(name),
			"parameters":  parameters,
			"description": description,
		})
	}

	reasoning, _ := params["reasoning"].(string)
	requiresInput, _ := params["requires_user_input"].(bool)
	var prompt any
	if s, ok := params["user_prompt"].(string); ok {
		prompt = s
	}
	t.info(fmt.Sprintf("Generated execution plan: %d tool calls", len(plan)))
	return map[string]any{
		"plan":                plan,
		"reasoning":           reasoning,
		"requires_user_input": requiresInput,
		"user_prompt":         prompt,
	}
}

func (t *Tools) info(msg string) {
	if t.logger != nil {
		t.logger.Info(msg)
	}
}

func (t *Tools) warn(msg string) {
	if t.logger != nil {
		t.logger.Warn(msg)
	}
}

func clamp(v float64) float64 {
	return max(0, min(1, v))
}

// number reads a JSON number, falling back to def for anything else.
func number(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return f
		}
	}
	return def
}

func text(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
