package tracking

import (
	"net/http/httptest"
	"testing"

	"github.com/matst80/council-finder/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionEvent(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/session", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1")
	r.Header.Set("Accept-Language", "ja")
	evt := NewSessionEvent("council", "abc", r)
	assert.Equal(t, "abc", evt.SessionId)
	assert.Equal(t, "10.0.0.1", evt.Ip)
	assert.Equal(t, "ja", evt.Language)
	assert.Equal(t, uint16(0), evt.Event)
}

func TestNewSessionEventPrefersRealIp(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/session", nil)
	r.Header.Set("X-Real-Ip", "10.0.0.2")
	r.Header.Set("X-Forwarded-For", "10.0.0.1")
	assert.Equal(t, "10.0.0.2", NewSessionEvent("", "abc", r).Ip)
}

func TestNewSearchEvent(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/session/abc/search", nil)
	scope := types.Scope{Kind: types.ScopePrefecture, Id: "13_東京都"}
	evt := NewSearchEvent("council", "abc", scope, "さとう", types.FacetSelections{types.FacetAffiliation: "A"}, 3, r)
	assert.Equal(t, uint16(1), evt.Event)
	assert.Equal(t, "13_東京都", evt.Scope)
	assert.Equal(t, map[string]string{"affiliation": "A"}, evt.Selections)
	assert.Equal(t, 3, evt.NumberOfResults)

	evt = NewSearchEvent("council", "abc", scope, "", nil, 0, r)
	assert.Nil(t, evt.Selections)
}
