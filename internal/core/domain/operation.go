package domain

import (
	"fmt"
	"slices"
	"sort"

	"go.trai.ch/zerr"
)

// Params is the JSON-compatible argument set of an operation call.
type Params map[string]any

// AuthParam is the parameter that carries the bearer token of a call.
const AuthParam = "auth"

// Clone returns a shallow copy of p that is safe to add keys to.
func (p Params) Clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// String returns the string parameter key, or "" when absent.
func (p Params) String(key string) (string, error) {
	v, ok := p[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", zerr.With(zerr.Wrap(ErrInvalidParam, "expected a string"), "param", key)
	}
	return s, nil
}

// Required returns the non-empty string parameter key.
func (p Params) Required(key string) (string, error) {
	s, err := p.String(key)
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", zerr.With(zerr.Wrap(ErrMissingParam, fmt.Sprintf("%q is required", key)), "param", key)
	}
	return s, nil
}

// Has reports whether key is present with a non-nil value.
func (p Params) Has(key string) bool {
	v, ok := p[key]
	return ok && v != nil
}

// Redacted returns a copy of p with the bearer token masked, for logging.
func (p Params) Redacted() Params {
	if !p.Has(AuthParam) {
		return p
	}
	out := p.Clone()
	out[AuthParam] = "***"
	return out
}

// OperationClass is the cache classification of an operation.
type OperationClass string

const (
	// ClassRead marks an operation whose result may be memoized.
	ClassRead OperationClass = "read"
	// ClassWrite marks an operation that invalidates cached reads.
	ClassWrite OperationClass = "write"
	// ClassLocal marks an operation that is neither cached nor invalidating.
	ClassLocal OperationClass = "local"
)

// Operation is one entry of the operation catalog.
type Operation struct {
	Name        string   `json:"name"`
	Group       string   `json:"group"`
	Description string   `json:"description"`
	Cacheable   bool     `json:"cacheable"`
	Mutating    bool     `json:"mutating"`
	Invalidates []string `json:"invalidates,omitempty"`
	Params      []string `json:"params,omitempty"`
}

// Class derives the cache classification from the catalog flags.
func (o Operation) Class() OperationClass {
	switch {
	case o.Mutating:
		return ClassWrite
	case o.Cacheable:
		return ClassRead
	default:
		return ClassLocal
	}
}

// Catalog is an immutable, name-indexed table of operations.
type Catalog struct {
	ops   map[string]Operation
	names []string
}

// NewCatalog builds a catalog, rejecting duplicate names and invalidation targets
// that are not cacheable operations of the same catalog.
func NewCatalog(ops ...Operation) (*Catalog, error) {
	c := &Catalog{ops: make(map[string]Operation, len(ops))}
	for _, op := range ops {
		if op.Name == "" {
			return nil, zerr.New("operation name cannot be empty")
		}
		if _, dup := c.ops[op.Name]; dup {
			return nil, zerr.With(zerr.New("duplicate operation"), "operation", op.Name)
		}
		op.Invalidates = slices.Clone(op.Invalidates)
		op.Params = slices.Clone(op.Params)
		c.ops[op.Name] = op
		c.names = append(c.names, op.Name)
	}
	for _, op := range c.ops {
		for _, target := range op.Invalidates {
			t, ok := c.ops[target]
			if !ok || !t.Cacheable {
				return nil, zerr.With(zerr.With(zerr.New("invalidation target is not a cacheable operation"),
					"operation", op.Name), "target", target)
			}
		}
	}
	sort.Strings(c.names)
	return c, nil
}

// Lookup returns the operation registered under name.
func (c *Catalog) Lookup(name string) (Operation, bool) {
	op, ok := c.ops[name]
	if !ok {
		return Operation{}, false
	}
	op.Invalidates = slices.Clone(op.Invalidates)
	return op, true
}

// IsCacheable reports whether name is a cacheable read.
func (c *Catalog) IsCacheable(name string) bool {
	op, ok := c.ops[name]
	return ok && op.Cacheable && !op.Mutating
}

// IsMutating reports whether name invalidates cached reads.
func (c *Catalog) IsMutating(name string) bool {
	op, ok := c.ops[name]
	return ok && op.Mutating
}

// Targets returns the operation prefixes purged by name in precise mode.
func (c *Catalog) Targets(name string) []string {
	return slices.Clone(c.ops[name].Invalidates)
}

// Names returns all operation names in sorted order.
func (c *Catalog) Names() []string {
	return slices.Clone(c.names)
}

// Operations returns all operations sorted by group, then name.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, 0, len(c.names))
	for _, name := range c.names {
		op, _ := c.Lookup(name)
		out = append(out, op)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Group < out[j].Group
	})
	return out
}

// Len returns the number of operations.
func (c *Catalog) Len() int {
	return len(c.names)
}
