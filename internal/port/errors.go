package port

import "errors"

// Sentinel errors used across ports.
var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrEmptyInput       = errors.New("title and abstract are both empty")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
)
