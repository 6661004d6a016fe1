package types

import (
	"maps"
	"strings"
)

type FacetField string

const (
	FacetAffiliation  FacetField = "affiliation"
	FacetMunicipality FacetField = "municipality"
)

func (f FacetField) Value(m *Member) string {
	switch f {
	case FacetAffiliation:
		return m.Affiliation
	case FacetMunicipality:
		return m.Municipality
	}
	return ""
}

// FacetSelections holds the active facet constraints. A missing or empty
// entry imposes no constraint.
type FacetSelections map[FacetField]string

func (f FacetSelections) IsSet(field FacetField) bool {
	return f[field] != ""
}

func (f FacetSelections) With(field FacetField, value string) FacetSelections {
	ret := make(FacetSelections, len(f)+1)
	maps.Copy(ret, f)
	value = strings.TrimSpace(value)
	if value == "" {
		delete(ret, field)
	} else {
		ret[field] = value
	}
	return ret
}

func (f FacetSelections) Matches(m *Member) bool {
	for field, value := range f {
		if value == "" {
			continue
		}
		if field.Value(m) != value {
			return false
		}
	}
	return true
}

type SortField string

const (
	SortName         SortField = "name"
	SortReading      SortField = "reading"
	SortAffiliation  SortField = "affiliation"
	SortSocialHandle SortField = "hasSocialHandle"
	SortMunicipality SortField = "municipality"
)

// ParseSortField accepts the canonical names plus the column keys used by the
// old viewer pages.
func ParseSortField(s string) (SortField, bool) {
	switch strings.TrimSpace(s) {
	case "name":
		return SortName, true
	case "reading", "ruby":
		return SortReading, true
	case "affiliation", "party":
		return SortAffiliation, true
	case "hasSocialHandle", "x_account", "social":
		return SortSocialHandle, true
	case "municipality":
		return SortMunicipality, true
	}
	return "", false
}
