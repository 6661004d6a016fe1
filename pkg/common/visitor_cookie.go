package common

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/matst80/council-finder/pkg/types"
)

const visitorCookie = "sid"

func setVisitorCookie(w http.ResponseWriter, visitorId string) {
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    visitorId,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		MaxAge:   30 * 24 * 3600,
		Path:     "/",
	})
}

// HandleVisitorCookie returns the visitor id of the request, issuing and
// tracking a new one when the cookie is missing or malformed.
func HandleVisitorCookie(trk types.Tracking, w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(visitorCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	visitorId := uuid.NewString()
	if trk != nil {
		go trk.TrackSession(visitorId, r)
	}
	setVisitorCookie(w, visitorId)
	return visitorId
}
