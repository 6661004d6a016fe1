package types

import "fmt"

// Member is one elected council member. Municipality and MunicipalityCode are
// only set when the member was loaded as part of a prefecture scope.
type Member struct {
	Name             string `json:"name"`
	Reading          string `json:"reading,omitempty"`
	Affiliation      string `json:"affiliation"`
	SocialHandle     string `json:"socialHandle,omitempty"`
	ProfileURL       string `json:"profileUrl,omitempty"`
	Municipality     string `json:"municipality,omitempty"`
	MunicipalityCode string `json:"municipalityCode,omitempty"`
}

func (m *Member) HasSocialHandle() bool {
	return m.SocialHandle != ""
}

// Variant identifies the record shape a store was built from, which in turn
// decides the columns shown for it.
type Variant uint8

const (
	VariantFlat Variant = iota
	VariantLegacy
	VariantAggregate
)

func (v Variant) String() string {
	switch v {
	case VariantLegacy:
		return "legacy"
	case VariantAggregate:
		return "aggregate"
	default:
		return "flat"
	}
}

func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

type Stats struct {
	Total      int `json:"total"`
	WithHandle int `json:"withHandle"`
}

func (v *Variant) UnmarshalText(text []byte) error {
	switch string(text) {
	case "flat":
		*v = VariantFlat
	case "legacy":
		*v = VariantLegacy
	case "aggregate":
		*v = VariantAggregate
	default:
		return fmt.Errorf("unknown variant %q", text)
	}
	return nil
}
