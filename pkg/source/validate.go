package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/matst80/council-finder/pkg/types"
)

type Issue struct {
	Municipality types.Municipality `json:"municipality"`
	Message      string             `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (%s): %s", i.Municipality.Name, i.Municipality.Code, i.Message)
}

type ValidationReport struct {
	Checked  int                  `json:"checked"`
	Members  int                  `json:"members"`
	Errors   []Issue              `json:"errors"`
	Warnings []Issue              `json:"warnings"`
	Missing  []types.Municipality `json:"missing"`
}

func (r *ValidationReport) Ok() bool {
	return len(r.Errors) == 0
}

// Validate fetches and normalizes every municipality. Municipalities without a
// data file are listed as missing, an empty file is a warning and anything
// that does not normalize is an error.
func Validate(ctx context.Context, src types.DataSource, municipalities []types.Municipality) *ValidationReport {
	report := &ValidationReport{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Missing:  []types.Municipality{},
	}
	for _, m := range municipalities {
		if ctx.Err() != nil {
			break
		}
		raw, err := src.Fetch(ctx, m)
		if errors.Is(err, ErrNoDataFile) {
			report.Missing = append(report.Missing, m)
			continue
		}
		report.Checked++
		if err != nil {
			report.Errors = append(report.Errors, Issue{Municipality: m, Message: err.Error()})
			continue
		}
		members, _, err := Normalize(raw)
		if err != nil {
			report.Errors = append(report.Errors, Issue{Municipality: m, Message: err.Error()})
			continue
		}
		if len(members) == 0 {
			report.Warnings = append(report.Warnings, Issue{Municipality: m, Message: "no council members"})
		}
		report.Members += len(members)
	}
	return report
}
