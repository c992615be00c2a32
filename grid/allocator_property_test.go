package grid

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for all non-negative counts c1 < c2, the slot name for every
// index i < c1 is identical whether allocated with count c1 or c2.
func TestProperty_SlotNameStability(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("earlier slots never rename as count grows", prop.ForAll(
		func(c1, delta, columns int) bool {
			c2 := c1 + delta
			a, err := NewAllocator(columns, "item")
			if err != nil {
				return false
			}
			small, err := a.Allocate(c1)
			if err != nil {
				return false
			}
			large, err := a.Allocate(c2)
			if err != nil {
				return false
			}
			for i := range small {
				if small[i] != large[i] {
					t.Logf("slot %d diverged: %+v vs %+v", i, small[i], large[i])
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
		gen.IntRange(0, 50),
		gen.IntRange(1, 8),
	))

	properties.Property("allocation is a pure function of (count, columns)", prop.ForAll(
		func(count, columns int) bool {
			a, err := NewAllocator(columns, "item")
			if err != nil {
				return false
			}
			first, err := a.Allocate(count)
			if err != nil {
				return false
			}
			second, err := a.Allocate(count)
			if err != nil {
				return false
			}
			if len(first) != count || len(second) != count {
				return false
			}
			for i := range first {
				if first[i] != second[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 8),
	))

	properties.Property("row/column law and 1-based names hold", prop.ForAll(
		func(count, columns int) bool {
			a, err := NewAllocator(columns, "item")
			if err != nil {
				return false
			}
			slots, err := a.Allocate(count)
			if err != nil {
				return false
			}
			for i, s := range slots {
				if s.Index != i || s.Row != i/columns || s.Column != i%columns {
					return false
				}
				if s.Name != fmt.Sprintf("item_%d_%d", s.Row+1, s.Column+1) {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 100),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
