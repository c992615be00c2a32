package node

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/BaSui01/mediaflow/grid"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/types"
)

// Spec describes a node type: its identifier and port surface.
type Spec struct {
	// Type is the node type identifier ("veo_video", "imagen_image", ...).
	Type string `json:"type"`
	// Description explains the node to workflow authors.
	Description string `json:"description"`
	// Parameters lists the node's ports in declaration order.
	Parameters []Parameter `json:"parameters"`
}

// Parameter returns the named parameter and whether it exists.
func (s Spec) Parameter(name string) (Parameter, bool) {
	for _, p := range s.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Node is a single executable unit in a media workflow.
type Node interface {
	// Spec returns the node's type descriptor and port surface.
	Spec() Spec
	// Execute runs the node against bound input values.
	Execute(ctx context.Context, in Inputs) (Outputs, error)
}

// Inputs holds the values bound to a node's input and property ports.
type Inputs map[string]any

// String returns the named value as a string, or fallback when absent.
func (in Inputs) String(name, fallback string) string {
	if v, ok := in[name].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Int returns the named value as an int, or fallback when absent.
func (in Inputs) Int(name string, fallback int) int {
	switch v := in[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

// Bool returns the named value as a bool, or fallback when absent.
func (in Inputs) Bool(name string, fallback bool) bool {
	if v, ok := in[name].(bool); ok {
		return v
	}
	return fallback
}

// Media returns the named value as a slice of media items. A single item
// binds the same as a one-element slice.
func (in Inputs) Media(name string) []media.Item {
	switch v := in[name].(type) {
	case media.Item:
		return []media.Item{v}
	case []media.Item:
		return v
	default:
		return nil
	}
}

// Outputs holds the values a node produced, keyed by output port name.
type Outputs map[string]any

// References returns every media reference in the outputs, in slot order.
// Slot names are compared by their numeric row and column, so video_10_1
// sorts after video_2_1. Non-slot names sort lexically after slots.
func (out Outputs) References() []media.Reference {
	names := make([]string, 0, len(out))
	for name := range out {
		if _, ok := out[name].(media.Reference); ok {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		ri, ci, iok := grid.ParseName(names[i])
		rj, cj, jok := grid.ParseName(names[j])
		switch {
		case iok && jok:
			if ri != rj {
				return ri < rj
			}
			if ci != cj {
				return ci < cj
			}
			return names[i] < names[j]
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})

	refs := make([]media.Reference, 0, len(names))
	for _, name := range names {
		refs = append(refs, out[name].(media.Reference))
	}
	return refs
}

// Factory builds a node bound to a shared runtime.
type Factory func(rt *Runtime) (Node, error)

// Registry maps node type identifiers to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty node registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given type identifier.
// Registering the same type twice is an error.
func (r *Registry) Register(nodeType string, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[nodeType]; exists {
		return types.Errorf(types.ErrInvalidConfiguration, "node type %q already registered", nodeType)
	}
	r.factories[nodeType] = factory
	return nil
}

// Create instantiates a node of the given type bound to rt.
func (r *Registry) Create(nodeType string, rt *Runtime) (Node, error) {
	r.mu.RLock()
	factory, ok := r.factories[nodeType]
	r.mu.RUnlock()

	if !ok {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "unknown node type %q", nodeType)
	}
	node, err := factory(rt)
	if err != nil {
		return nil, fmt.Errorf("create node %q: %w", nodeType, err)
	}
	return node, nil
}

// Types returns the registered type identifiers, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
