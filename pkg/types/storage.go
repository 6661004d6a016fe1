package types

import "context"

type RawFormat uint8

const (
	FormatJSON RawFormat = iota
	FormatScript
)

// RawRecords is the undecoded payload of one municipality data file.
type RawRecords struct {
	Municipality Municipality
	Format       RawFormat
	Data         []byte
}

type DataSource interface {
	Fetch(ctx context.Context, m Municipality) (*RawRecords, error)
}

// DataUpdate announces regenerated municipality files. An empty Codes list
// means every municipality may have changed.
type DataUpdate struct {
	Codes []string `json:"codes"`
}
