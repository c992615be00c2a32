package grid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BaSui01/mediaflow/types"
)

// Default layout used by the display and generator nodes.
const (
	DefaultColumns = 2
	DefaultPrefix  = "item"
)

// Slot is a named output position derived from an item's index and a fixed
// column count. Slot names are 1-based for human-facing labels and are
// stable for a given index regardless of how many total items exist.
type Slot struct {
	Index  int    `json:"index"`
	Row    int    `json:"row"`
	Column int    `json:"column"`
	Name   string `json:"name"`
}

// Allocator derives deterministic grid slots from an item count. It is a
// pure function of (count, columns, prefix): no state persists between
// invocations, so re-allocating with a larger count reproduces identical
// earlier slot names.
type Allocator struct {
	columns int
	prefix  string
}

// NewAllocator creates an allocator with the given column width and name
// prefix. An empty prefix defaults to "item". Columns below 1 are rejected.
func NewAllocator(columns int, prefix string) (*Allocator, error) {
	if columns < 1 {
		return nil, types.Errorf(types.ErrInvalidConfiguration, "columns must be at least 1, got %d", columns)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Allocator{columns: columns, prefix: prefix}, nil
}

// Default returns the standard two-column "item" allocator.
func Default() *Allocator {
	a, _ := NewAllocator(DefaultColumns, DefaultPrefix)
	return a
}

// Columns returns the fixed column width.
func (a *Allocator) Columns() int { return a.columns }

// Prefix returns the slot name prefix.
func (a *Allocator) Prefix() string { return a.prefix }

// Allocate produces exactly count slots in index order. A count of zero is
// a valid, non-error state ("no results yet") and yields an empty slice.
func (a *Allocator) Allocate(count int) ([]Slot, error) {
	if count < 0 {
		return nil, types.Errorf(types.ErrInvalidCount, "count must be non-negative, got %d", count)
	}
	slots := make([]Slot, count)
	for i := 0; i < count; i++ {
		slots[i] = a.slot(i)
	}
	return slots, nil
}

// SlotFor returns the slot for a single item index.
func (a *Allocator) SlotFor(index int) (Slot, error) {
	if index < 0 {
		return Slot{}, types.Errorf(types.ErrInvalidCount, "index must be non-negative, got %d", index)
	}
	return a.slot(index), nil
}

// Names maps every item index in [0, count) to its slot name.
func (a *Allocator) Names(count int) ([]string, error) {
	slots, err := a.Allocate(count)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(slots))
	for i, s := range slots {
		names[i] = s.Name
	}
	return names, nil
}

func (a *Allocator) slot(index int) Slot {
	row := index / a.columns
	col := index % a.columns
	return Slot{
		Index:  index,
		Row:    row,
		Column: col,
		Name:   fmt.Sprintf("%s_%d_%d", a.prefix, row+1, col+1),
	}
}

// Allocate is a convenience wrapper over a throwaway allocator.
func Allocate(count, columns int) ([]Slot, error) {
	a, err := NewAllocator(columns, "")
	if err != nil {
		return nil, err
	}
	return a.Allocate(count)
}

// ParseName extracts the 1-based row and column from a slot name produced
// by an allocator. ok is false when the name does not end in two positive
// integer segments.
func ParseName(name string) (row, col int, ok bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 {
		return 0, 0, false
	}
	var err error
	row, err = strconv.Atoi(parts[len(parts)-2])
	if err != nil || row < 1 {
		return 0, 0, false
	}
	col, err = strconv.Atoi(parts[len(parts)-1])
	if err != nil || col < 1 {
		return 0, 0, false
	}
	return row, col, true
}
