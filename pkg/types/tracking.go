package types

import (
	"net/http"
)

type Tracking interface {
	TrackSession(sessionId string, r *http.Request)
	TrackSearch(sessionId string, scope Scope, query string, selections FacetSelections, resultLen int, r *http.Request)
	Close() error
}
