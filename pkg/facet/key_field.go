package facet

import (
	"slices"

	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/types"
)

type Value struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// KeyField counts the distinct values one facet takes in a store.
type KeyField struct {
	Field types.FacetField
	Keys  map[string]int
}

func EmptyKeyField(field types.FacetField) *KeyField {
	return &KeyField{
		Field: field,
		Keys:  map[string]int{},
	}
}

func (f *KeyField) AddValueLink(m *types.Member) bool {
	value := f.Field.Value(m)
	if value == "" {
		return false
	}
	f.Keys[value]++
	return true
}

func (f *KeyField) Len() int {
	return len(f.Keys)
}

// Values returns the distinct values ordered by the collator.
func (f *KeyField) Values(c sorting.Collator) []Value {
	ret := make([]Value, 0, len(f.Keys))
	for v, count := range f.Keys {
		ret = append(ret, Value{Value: v, Count: count})
	}
	slices.SortFunc(ret, func(a, b Value) int {
		if r := c.Compare(a.Value, b.Value); r != 0 {
			return r
		}
		// collators may consider distinct strings equal, keep output deterministic
		if a.Value < b.Value {
			return -1
		}
		if a.Value > b.Value {
			return 1
		}
		return 0
	})
	return ret
}
