package types

import (
	"fmt"
	"strings"
)

type ScopeKind uint8

const (
	ScopeMunicipality ScopeKind = iota + 1
	ScopePrefecture
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeMunicipality:
		return "municipality"
	case ScopePrefecture:
		return "prefecture"
	}
	return "unknown"
}

// Scope is the data boundary of one screen, a single municipality (Id is the
// municipality code) or a prefecture (Id is the prefecture id, e.g. "13_東京都").
type Scope struct {
	Kind ScopeKind `json:"kind"`
	Id   string    `json:"id"`
}

func (s Scope) IsZero() bool {
	return s.Id == ""
}

func (s Scope) IsAggregate() bool {
	return s.Kind == ScopePrefecture
}

func (s Scope) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Id)
}

type Municipality struct {
	Code       string `json:"code" yaml:"code"`
	Name       string `json:"name" yaml:"name"`
	Prefecture string `json:"prefecture" yaml:"prefecture"`
}

// PrefectureName strips the numeric prefix of a prefecture id, "13_東京都" -> "東京都".
func PrefectureName(id string) string {
	if _, name, ok := strings.Cut(id, "_"); ok {
		return name
	}
	return id
}
