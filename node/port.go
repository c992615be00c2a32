package node

import (
	"fmt"

	"github.com/BaSui01/mediaflow/grid"
)

// ParameterMode is a bitmask describing how a parameter may be bound.
type ParameterMode uint8

const (
	// ModeInput means the value may arrive over a connection from another node.
	ModeInput ParameterMode = 1 << iota
	// ModeProperty means the value may be set directly on the node.
	ModeProperty
	// ModeOutput means the node produces the value.
	ModeOutput
)

// Has reports whether mode includes the given flag.
func (m ParameterMode) Has(flag ParameterMode) bool { return m&flag != 0 }

// Parameter describes one input, property, or output port of a node.
type Parameter struct {
	// Name is the port identifier, unique within a node.
	Name string `json:"name"`
	// Type is a human-readable value type ("str", "int", "media", "list[media]").
	Type string `json:"type"`
	// Description explains the port to workflow authors.
	Description string `json:"description,omitempty"`
	// Default is the value used when nothing is bound. Nil means required.
	Default any `json:"default,omitempty"`
	// Modes is the set of allowed binding modes.
	Modes ParameterMode `json:"modes"`
	// Choices restricts the value to a fixed set when non-empty.
	Choices []any `json:"choices,omitempty"`
}

// AllowsValue reports whether v is permitted by the parameter's choice list.
// Parameters without choices allow any value.
func (p Parameter) AllowsValue(v any) bool {
	if len(p.Choices) == 0 {
		return true
	}
	for _, c := range p.Choices {
		if c == v {
			return true
		}
	}
	return false
}

// GridOutputs expands a dynamic output surface into concrete output
// parameters, one per grid slot. The slot layout is stable: asking for a
// larger count later extends the list without renaming earlier slots.
func GridOutputs(prefix string, count, columns int) ([]Parameter, error) {
	alloc, err := grid.NewAllocator(columns, prefix)
	if err != nil {
		return nil, err
	}
	slots, err := alloc.Allocate(count)
	if err != nil {
		return nil, err
	}

	params := make([]Parameter, 0, len(slots))
	for _, slot := range slots {
		params = append(params, Parameter{
			Name:        slot.Name,
			Type:        "media",
			Description: fmt.Sprintf("Generated item at row %d, column %d.", slot.Row+1, slot.Column+1),
			Modes:       ModeOutput,
		})
	}
	return params, nil
}
