package server

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/matst80/council-finder/pkg/common"
	"github.com/matst80/council-finder/pkg/sorting"
	"github.com/matst80/council-finder/pkg/types"
)

func TestParseViewRequest(t *testing.T) {
	query := url.Values{
		"q":           []string{"さとう"},
		"affiliation": []string{"A"},
		"sort":        []string{"ruby"},
		"unknown":     []string{"x"},
	}
	req, err := decodeQuery[ViewRequest](query)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if req.Query != "さとう" {
		t.Errorf("Expected query to be さとう, got %s", req.Query)
	}
	if !req.IsAscending() {
		t.Errorf("Expected ascending by default")
	}
	sel := req.Selections()
	if sel[types.FacetAffiliation] != "A" || sel.IsSet(types.FacetMunicipality) {
		t.Errorf("Unexpected selections %v", sel)
	}
	state, err := req.SortState()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if state != (sorting.State{Field: types.SortReading, Ascending: true}) {
		t.Errorf("Unexpected sort state %v", state)
	}
}

func TestParseViewRequestDescending(t *testing.T) {
	req, err := decodeQuery[ViewRequest](url.Values{"sort": []string{"name"}, "asc": []string{"false"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	state, _ := req.SortState()
	if state.Ascending {
		t.Errorf("Expected descending sort")
	}

	req, err = decodeQuery[ViewRequest](url.Values{"sort": []string{"name"}, "asc": []string{"true"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if state, _ = req.SortState(); !state.Ascending {
		t.Errorf("Expected ascending sort")
	}
}

func TestParseViewRequestInvalidSort(t *testing.T) {
	req, err := decodeQuery[ViewRequest](url.Values{"sort": []string{"price"}})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err = req.SortState(); err == nil {
		t.Errorf("Expected error for unknown sort field")
	}
}

func TestRequiredParameters(t *testing.T) {
	_, err := decodeQuery[SortRequest](url.Values{})
	if err == nil {
		t.Fatalf("Expected error for missing field")
	}
	if status := common.StatusFor(err); status != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", status)
	}
}

func TestFilterUpdates(t *testing.T) {
	updates := filterUpdates(url.Values{"affiliation": []string{""}, "q": []string{"x"}})
	if len(updates) != 1 {
		t.Fatalf("Expected one update, got %v", updates)
	}
	if v, ok := updates[types.FacetAffiliation]; !ok || v != "" {
		t.Errorf("Expected affiliation to be cleared, got %v", updates)
	}
}
