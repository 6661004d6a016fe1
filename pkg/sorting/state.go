package sorting

import (
	"github.com/matst80/council-finder/pkg/types"
)

// State is the active sort column. The zero value means no column has been
// activated yet and the visible subset stays in store order.
type State struct {
	Field     types.SortField `json:"field,omitempty"`
	Ascending bool            `json:"ascending"`
}

func (s State) IsActive() bool {
	return s.Field != ""
}

// Activate toggles direction on the active field and starts ascending on a new one.
func (s State) Activate(field types.SortField) State {
	if s.Field == field {
		return State{Field: field, Ascending: !s.Ascending}
	}
	return State{Field: field, Ascending: true}
}

func (s State) Direction() string {
	if !s.IsActive() {
		return ""
	}
	if s.Ascending {
		return "asc"
	}
	return "desc"
}

func (s *Sorter) ApplyState(members []types.Member, state State) []types.Member {
	if !state.IsActive() {
		return members
	}
	return s.Apply(members, state.Field, state.Ascending)
}
