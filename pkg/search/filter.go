package search

import (
	"strings"

	"github.com/matst80/council-finder/pkg/store"
	"github.com/matst80/council-finder/pkg/types"
)

type matcher struct {
	needle     string
	selections types.FacetSelections
}

func newMatcher(text string, selections types.FacetSelections) *matcher {
	return &matcher{
		needle:     Normalize(text),
		selections: selections,
	}
}

func (q *matcher) matchesText(m *types.Member) bool {
	if q.needle == "" {
		return true
	}
	if strings.Contains(Normalize(m.Name), q.needle) {
		return true
	}
	return m.Reading != "" && strings.Contains(Normalize(m.Reading), q.needle)
}

func (q *matcher) Matches(m *types.Member) bool {
	return q.matchesText(m) && q.selections.Matches(m)
}

// Apply recomputes the visible subset from the full store. The result keeps
// store order and is a new slice; a nil store yields an empty result.
func Apply(s *store.Store, text string, selections types.FacetSelections) []types.Member {
	q := newMatcher(text, selections)
	ret := make([]types.Member, 0, s.Len())
	for m := range s.All() {
		if q.Matches(&m) {
			ret = append(ret, m)
		}
	}
	return ret
}
