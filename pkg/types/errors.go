package types

import "errors"

var (
	ErrScopeNotFound     = errors.New("scope not found")
	ErrSourceUnavailable = errors.New("source unavailable")
)
