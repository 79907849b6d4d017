package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrInvalidRequest = errors.New("invalid request")
)
