package common

import (
	"errors"
	"net/http"

	"github.com/matst80/council-finder/pkg/common/jsoncompat"
	"github.com/matst80/council-finder/pkg/types"
	"go.uber.org/zap"
)

// StatusError attaches an HTTP status to an error returned by a handler.
type StatusError struct {
	Status int
	Err    error
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

func WithStatus(status int, err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Status: status, Err: err}
}

// StatusFor maps an error to the status code sent to the client.
func StatusFor(err error) int {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Status
	case errors.Is(err, types.ErrScopeNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrSourceUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type HandlerFunc func(w http.ResponseWriter, r *http.Request, visitorId string, enc jsoncompat.Encoder) error

func JsonHandler(trk types.Tracking, logger *zap.Logger, fn HandlerFunc) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			RespondToOptions(w, r)
			return
		}
		visitorId := HandleVisitorCookie(trk, w, r)

		if err := fn(w, r, visitorId, jsoncompat.NewEncoder(w)); err != nil {
			status := StatusFor(err)
			if status >= http.StatusInternalServerError {
				logger.Error("error handling request", zap.String("path", r.URL.Path), zap.Error(err))
			} else {
				logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
			}
			http.Error(w, err.Error(), status)
		}
	}
}

func RespondToOptions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	origin := r.Header.Get("Origin")
	if origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	w.Header().Set("Age", "0")
	w.WriteHeader(http.StatusAccepted)
}
