package sorting

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matst80/council-finder/pkg/types"
)

var ErrFieldNotAvailable = errors.New("sort field not available")

func key(field types.SortField, m *types.Member) string {
	switch field {
	case types.SortName:
		return m.Name
	case types.SortReading:
		return m.Reading
	case types.SortAffiliation:
		return m.Affiliation
	case types.SortSocialHandle:
		if m.HasSocialHandle() {
			return "1"
		}
		return "0"
	case types.SortMunicipality:
		return m.Municipality
	}
	return ""
}

// FieldsFor lists the sortable fields of a store variant.
func FieldsFor(variant types.Variant) []types.SortField {
	fields := []types.SortField{types.SortName, types.SortReading, types.SortAffiliation, types.SortSocialHandle}
	if variant == types.VariantAggregate {
		return append([]types.SortField{types.SortMunicipality}, fields...)
	}
	return fields
}

func CheckField(variant types.Variant, field types.SortField) error {
	if slices.Contains(FieldsFor(variant), field) {
		return nil
	}
	return fmt.Errorf("%w: %q in %s scope", ErrFieldNotAvailable, field, variant)
}

type Sorter struct {
	Collator Collator
}

func NewSorter(c Collator) *Sorter {
	if c == nil {
		c = DefaultCollator
	}
	return &Sorter{Collator: c}
}

type keyed struct {
	key    string
	member types.Member
}

// Apply returns a new slice ordered by field. The sort is stable in both
// directions: members with equal keys keep their input order.
func (s *Sorter) Apply(members []types.Member, field types.SortField, ascending bool) []types.Member {
	items := make([]keyed, len(members))
	for i := range members {
		items[i] = keyed{key: key(field, &members[i]), member: members[i]}
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		c := s.Collator.Compare(a.key, b.key)
		if !ascending {
			return -c
		}
		return c
	})
	ret := make([]types.Member, len(items))
	for i := range items {
		ret[i] = items[i].member
	}
	return ret
}

func Apply(members []types.Member, field types.SortField, ascending bool) []types.Member {
	return NewSorter(nil).Apply(members, field, ascending)
}
