package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
	"github.com/matst80/council-finder/pkg/common"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/types"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

type ViewRequest struct {
	Query        string `json:"q" schema:"q"`
	Affiliation  string `json:"affiliation" schema:"affiliation"`
	Municipality string `json:"municipality" schema:"municipality"`
	Sort         string `json:"sort" schema:"sort"`
	Ascending    *bool  `json:"asc,omitempty" schema:"asc"`
}

func (v *ViewRequest) Selections() types.FacetSelections {
	return types.FacetSelections{}.
		With(types.FacetAffiliation, v.Affiliation).
		With(types.FacetMunicipality, v.Municipality)
}

// IsAscending reports the requested direction, ascending unless asc=false.
func (v *ViewRequest) IsAscending() bool {
	return v.Ascending == nil || *v.Ascending
}

// SortState resolves the requested sort; no sort keeps store order.
func (v *ViewRequest) SortState() (sorting.State, error) {
	if v.Sort == "" {
		return sorting.State{}, nil
	}
	field, ok := types.ParseSortField(v.Sort)
	if !ok {
		return sorting.State{}, fmt.Errorf("unknown sort field %q", v.Sort)
	}
	return sorting.State{Field: field, Ascending: v.IsAscending()}, nil
}

type SearchRequest struct {
	Query string `schema:"q"`
}

type SortRequest struct {
	Field string `schema:"field,required"`
}

type ScopeRequest struct {
	Scope string `schema:"scope,required"`
}

func decodeQuery[T any](query url.Values) (*T, error) {
	ret := new(T)
	if err := decoder.Decode(ret, query); err != nil {
		return nil, common.WithStatus(http.StatusBadRequest, err)
	}
	return ret, nil
}

// filterUpdates returns the facet fields present in the query with their
// values. An empty value clears that facet.
func filterUpdates(query url.Values) map[types.FacetField]string {
	ret := map[types.FacetField]string{}
	for _, field := range []types.FacetField{types.FacetAffiliation, types.FacetMunicipality} {
		if query.Has(string(field)) {
			ret[field] = query.Get(string(field))
		}
	}
	return ret
}
