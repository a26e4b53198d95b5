package errors

import "errors"

// Client errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Server/transport errors.
var (
	ErrAPIRequest  = errors.New("API request failed")
	ErrAPIResponse = errors.New("unexpected API response")
)
