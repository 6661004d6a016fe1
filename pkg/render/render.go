package render

import (
	"net/url"
	"strings"

	"github.com/matst80/council-finder/pkg/facet"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/types"
)

type columnDef struct {
	key   string
	label string
	sort  types.SortField
	cell  func(m *types.Member) Cell
}

var (
	municipalityColumn = columnDef{"municipality", "自治体", types.SortMunicipality, func(m *types.Member) Cell { return textCell(m.Municipality) }}
	nameColumn         = columnDef{"name", "氏名", types.SortName, func(m *types.Member) Cell { return textCell(m.Name) }}
	readingColumn      = columnDef{"reading", "よみ", types.SortReading, func(m *types.Member) Cell { return textCell(m.Reading) }}
	affiliationColumn  = columnDef{"affiliation", "所属", types.SortAffiliation, func(m *types.Member) Cell { return textCell(m.Affiliation) }}
	socialColumn       = columnDef{"social", "X", types.SortSocialHandle, SocialCell}
	profileColumn      = columnDef{"profile", "プロフィール", "", ProfileCell}
)

func columnsFor(variant types.Variant) []columnDef {
	switch variant {
	case types.VariantAggregate:
		return []columnDef{municipalityColumn, nameColumn, readingColumn, affiliationColumn, socialColumn}
	case types.VariantLegacy:
		name, reading, affiliation := nameColumn, readingColumn, affiliationColumn
		name.label = "議員名"
		reading.label = "ふりがな"
		affiliation.label = "政党・会派"
		social := socialColumn
		social.label = "X アカウント"
		return []columnDef{name, reading, affiliation, social, profileColumn}
	}
	return []columnDef{nameColumn, readingColumn, affiliationColumn, socialColumn}
}

func textCell(text string) Cell {
	if text == "" {
		return Cell{Text: Placeholder, Placeholder: true}
	}
	return Cell{Text: text}
}

// SocialLink turns a stored handle or URL into a link target and a label.
func SocialLink(handle string) (link string, label string) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", ""
	}
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		u, err := url.Parse(handle)
		if err != nil {
			return handle, handle
		}
		if first, _, _ := strings.Cut(strings.Trim(u.Path, "/"), "/"); first != "" {
			return handle, "@" + first
		}
		return handle, handle
	}
	name := strings.TrimPrefix(handle, "@")
	return "https://x.com/" + name, "@" + name
}

func SocialCell(m *types.Member) Cell {
	link, label := SocialLink(m.SocialHandle)
	if link == "" {
		return Cell{Text: Placeholder, Placeholder: true}
	}
	return Cell{Text: label, Link: link}
}

func ProfileCell(m *types.Member) Cell {
	if m.ProfileURL == "" {
		return Cell{Text: Placeholder, Placeholder: true}
	}
	return Cell{Text: "プロフィール", Link: m.ProfileURL}
}

func ComputeStats(members []types.Member) types.Stats {
	stats := types.Stats{Total: len(members)}
	for i := range members {
		if members[i].HasSocialHandle() {
			stats.WithHandle++
		}
	}
	return stats
}

// Render projects the visible subset, already in display order, into rows.
// Stats describe exactly the rendered members. An empty subset produces an
// explicit empty-state and no rows.
func Render(sorted []types.Member, variant types.Variant, state sorting.State) *DisplayModel {
	defs := columnsFor(variant)
	model := &DisplayModel{
		Variant: variant,
		Columns: make([]Column, len(defs)),
		Rows:    []Row{},
		Stats:   ComputeStats(sorted),
	}
	for i, d := range defs {
		col := Column{Key: d.key, Label: d.label, SortKey: d.sort, Sortable: d.sort != ""}
		if col.Sortable && state.Field == d.sort {
			col.Sort = state.Direction()
		}
		model.Columns[i] = col
	}
	if len(sorted) == 0 {
		model.Empty = true
		model.Message = EmptyMessage
		return model
	}
	model.Rows = make([]Row, len(sorted))
	for i := range sorted {
		cells := make([]Cell, len(defs))
		for j, d := range defs {
			cells[j] = d.cell(&sorted[i])
		}
		model.Rows[i] = Row{Cells: cells}
	}
	return model
}

// Failure is the model of a scope that could not be loaded.
func Failure(scope types.Scope, variant types.Variant) *DisplayModel {
	model := Render(nil, variant, sorting.State{})
	model.Scope = scope
	model.Empty = false
	model.Failed = true
	model.Message = FailureMessage
	return model
}

// Loading is the model of a scope whose load is still in flight.
func Loading(scope types.Scope, variant types.Variant) *DisplayModel {
	model := Render(nil, variant, sorting.State{})
	model.Scope = scope
	model.Loading = true
	model.Message = LoadingMessage
	return model
}

// FacetLabel is the selector caption of a facet for a variant.
func FacetLabel(field types.FacetField, variant types.Variant) string {
	switch field {
	case types.FacetMunicipality:
		return municipalityColumn.label
	case types.FacetAffiliation:
		if variant == types.VariantLegacy {
			return "政党・会派"
		}
		return affiliationColumn.label
	}
	return string(field)
}

// Facets lists the selector options of idx with the current selections.
func Facets(idx *facet.Index, variant types.Variant, selections types.FacetSelections) []FacetOptions {
	fields := facet.FieldsFor(variant)
	ret := make([]FacetOptions, 0, len(fields))
	for _, field := range fields {
		values := []facet.Value{}
		if idx != nil {
			values = idx.Values(field)
		}
		ret = append(ret, FacetOptions{
			Field:    field,
			Label:    FacetLabel(field, variant),
			Selected: selections[field],
			Values:   values,
		})
	}
	return ret
}
