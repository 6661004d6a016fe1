package store

import (
	"iter"
	"slices"
	"time"

	"github.com/matst80/council-finder/pkg/types"
)

// Store is the full, immutable member collection of one scope. Members keep
// load order, which is catalog order for prefecture scopes.
type Store struct {
	scope    types.Scope
	variant  types.Variant
	members  []types.Member
	failed   []types.Municipality
	warnings []string
	loadedAt time.Time
}

// Empty is the store of a scope whose load has not completed.
func Empty(scope types.Scope) *Store {
	variant := types.VariantFlat
	if scope.IsAggregate() {
		variant = types.VariantAggregate
	}
	return &Store{scope: scope, variant: variant, members: []types.Member{}}
}

// New builds a store from already normalized members.
func New(scope types.Scope, variant types.Variant, members []types.Member) *Store {
	return &Store{
		scope:    scope,
		variant:  variant,
		members:  slices.Clone(members),
		loadedAt: time.Now(),
	}
}

func (s *Store) Scope() types.Scope {
	if s == nil {
		return types.Scope{}
	}
	return s.scope
}

func (s *Store) Variant() types.Variant {
	if s == nil {
		return types.VariantFlat
	}
	return s.variant
}

func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// All yields copies of the members in load order.
func (s *Store) All() iter.Seq[types.Member] {
	return func(yield func(types.Member) bool) {
		if s == nil {
			return
		}
		for i := range s.members {
			if !yield(s.members[i]) {
				return
			}
		}
	}
}

func (s *Store) Members() []types.Member {
	if s == nil {
		return []types.Member{}
	}
	return slices.Clone(s.members)
}

// Failed lists the municipalities that contributed nothing to this store.
func (s *Store) Failed() []types.Municipality {
	if s == nil {
		return nil
	}
	return slices.Clone(s.failed)
}

// Warnings are only populated when the loader runs with PartialFailureWarn.
func (s *Store) Warnings() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.warnings)
}

func (s *Store) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
