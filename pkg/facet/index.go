package facet

import (
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
)

// FieldsFor lists the facets offered for a store variant.
func FieldsFor(variant types.Variant) []types.FacetField {
	if variant == types.VariantAggregate {
		return []types.FacetField{types.FacetMunicipality, types.FacetAffiliation}
	}
	return []types.FacetField{types.FacetAffiliation}
}

// Index holds the facet options of one store. It is built from the full
// store, never from a filtered subset, so options do not shrink while filtering.
type Index struct {
	fields   map[types.FacetField]*KeyField
	order    []types.FacetField
	collator sorting.Collator
}

func NewIndex(s *store.Store, c sorting.Collator) *Index {
	if c == nil {
		c = sorting.DefaultCollator
	}
	idx := &Index{
		fields:   map[types.FacetField]*KeyField{},
		order:    FieldsFor(s.Variant()),
		collator: c,
	}
	for _, field := range idx.order {
		idx.fields[field] = EmptyKeyField(field)
	}
	for m := range s.All() {
		for _, f := range idx.fields {
			f.AddValueLink(&m)
		}
	}
	return idx
}

func (i *Index) Fields() []types.FacetField {
	return i.order
}

func (i *Index) Values(field types.FacetField) []Value {
	f, ok := i.fields[field]
	if !ok {
		return []Value{}
	}
	return f.Values(i.collator)
}

func (i *Index) Distinct(field types.FacetField) []string {
	values := i.Values(field)
	ret := make([]string, len(values))
	for j, v := range values {
		ret[j] = v.Value
	}
	return ret
}

// DistinctValues is the sorted set of values field takes in the store.
func DistinctValues(s *store.Store, field types.FacetField) []string {
	f := EmptyKeyField(field)
	for m := range s.All() {
		f.AddValueLink(&m)
	}
	values := f.Values(sorting.DefaultCollator)
	ret := make([]string, len(values))
	for i, v := range values {
		ret[i] = v.Value
	}
	return ret
}
