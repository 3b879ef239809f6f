package entity

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnsupportedComparison is returned when two entity kinds have no comparison rule
var ErrUnsupportedComparison = errors.New("unsupported entity comparison")

// Comparator decides equality and superset relations between entities
type Comparator struct {
	cache *SignatureCache
}

// NewComparator creates a comparator. A nil cache disables memoization.
func NewComparator(cache *SignatureCache) *Comparator {
	return &Comparator{cache: cache}
}

// TypesCompatible reports whether two entities can be compared. Event nodes pair
// with event and event exclusion nodes, action nodes with action and action
// exclusion nodes. Every other pairing is an error.
func TypesCompatible(a, b *Entity) (bool, error) {
	fa, fb := a.Kind.family(), b.Kind.family()
	if fa == familyUnknown || fa != fb {
		return false, fmt.Errorf("%w: %s and %s", ErrUnsupportedComparison, a.Kind, b.Kind)
	}
	return true, nil
}

// Equal reports whether a and b are the same node with the same properties.
// Known but different kinds are simply unequal; an unknown kind is an error.
func (c *Comparator) Equal(a, b *Entity) (bool, error) {
	return c.equal(a, b, true)
}

// SameNode reports whether a and b refer to the same event or action, ignoring properties
func (c *Comparator) SameNode(a, b *Entity) (bool, error) {
	return c.equal(a, b, false)
}

func (c *Comparator) equal(a, b *Entity, compareProperties bool) (bool, error) {
	if ok, err := TypesCompatible(a, b); !ok {
		if a.Kind.family() != familyUnknown && b.Kind.family() != familyUnknown {
			return false, nil
		}
		return false, err
	}

	switch a.Kind.family() {
	case familyActions:
		if a.ID != b.ID {
			return false, nil
		}
	case familyEvents:
		if a.Event != b.Event {
			return false, nil
		}
	}

	if !compareProperties {
		return true, nil
	}
	if !slices.Equal(c.SortedSignatures(a.Properties), c.SortedSignatures(b.Properties)) {
		return false, nil
	}
	if !slices.Equal(c.SortedSignatures(a.FixedProperties), c.SortedSignatures(b.FixedProperties)) {
		return false, nil
	}
	// math is trends-specific and intentionally not compared
	return true, nil
}

// IsSuperset reports whether a is the same node as b and its properties and fixed
// properties contain b's, counting duplicates.
func (c *Comparator) IsSuperset(a, b *Entity) (bool, error) {
	same, err := c.SameNode(a, b)
	if err != nil || !same {
		return false, err
	}

	if !containsAll(c.SortedSignatures(a.Properties), c.SortedSignatures(b.Properties)) {
		return false, nil
	}
	return containsAll(c.SortedSignatures(a.FixedProperties), c.SortedSignatures(b.FixedProperties)), nil
}

// containsAll reports whether the multiset outer contains every element of inner
func containsAll(outer, inner []string) bool {
	counts := make(map[string]int, len(outer))
	for _, s := range outer {
		counts[s]++
	}
	for _, s := range inner {
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}
