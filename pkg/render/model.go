package render

import (
	"github.com/matst80/council-finder/pkg/facet"
	"github.com/matst80/council-finder/pkg/types"
)

const (
	Placeholder    = "-"
	EmptyMessage   = "該当する議員が見つかりません"
	FailureMessage = "データの読み込みに失敗しました。"
	LoadingMessage = "データを読み込み中..."
)

type Column struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	SortKey  types.SortField `json:"sortKey,omitempty"`
	Sort     string          `json:"sort,omitempty"`
	Sortable bool            `json:"sortable"`
}

type Cell struct {
	Text        string `json:"text"`
	Link        string `json:"link,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

type Row struct {
	Cells []Cell `json:"cells"`
}

type FacetOptions struct {
	Field    types.FacetField `json:"field"`
	Label    string           `json:"label"`
	Selected string           `json:"selected,omitempty"`
	Values   []facet.Value    `json:"values"`
}

// DisplayModel is everything a surface needs to draw one scope.
type DisplayModel struct {
	Scope    types.Scope    `json:"scope"`
	Variant  types.Variant  `json:"variant"`
	Columns  []Column       `json:"columns"`
	Rows     []Row          `json:"rows"`
	Stats    types.Stats    `json:"stats"`
	Facets   []FacetOptions `json:"facets,omitempty"`
	Query    string         `json:"query,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Empty    bool           `json:"empty"`
	Loading  bool           `json:"loading,omitempty"`
	Failed   bool           `json:"failed,omitempty"`
	Message  string         `json:"message,omitempty"`
}
