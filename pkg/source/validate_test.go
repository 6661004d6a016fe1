package source

import (
	"context"
	"errors"
	"testing"

	"github.com/matst80/council-finder/pkg/types"
)

func TestValidate(t *testing.T) {
	mem := NewMemorySource()
	_ = mem.SetMembers("1", types.Member{Name: "田中", Affiliation: "A"})
	mem.Set("2", types.FormatJSON, []byte(`[]`))
	mem.Set("3", types.FormatJSON, []byte(`[{"所属": "A"}]`))
	mem.Fail("4", errors.New("gone"))
	mem.Fail("5", ErrNoDataFile)

	municipalities := []types.Municipality{
		{Code: "1", Name: "a"}, {Code: "2", Name: "b"}, {Code: "3", Name: "c"}, {Code: "4", Name: "d"}, {Code: "5", Name: "e"},
	}
	report := Validate(context.Background(), mem, municipalities)
	if report.Checked != 4 {
		t.Errorf("Expected 4 checked, got %d", report.Checked)
	}
	if report.Members != 1 {
		t.Errorf("Expected 1 member, got %d", report.Members)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].Municipality.Code != "2" {
		t.Errorf("Expected warning for empty file, got %v", report.Warnings)
	}
	if len(report.Errors) != 2 {
		t.Errorf("Expected 2 errors, got %v", report.Errors)
	}
	if len(report.Missing) != 1 || report.Missing[0].Code != "5" {
		t.Errorf("Expected 5 to be missing, got %v", report.Missing)
	}
	if report.Ok() {
		t.Errorf("Expected report not to be ok")
	}
}
