package handler

import (
	"net/http"

	"github.com/minisport/arena/internal/api/apierr"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// Re-export error codes
const (
	CodeInvalidRequest      = apierr.CodeInvalidRequest
	CodeUnauthorized        = apierr.CodeUnauthorized
	CodePlayerNotFound      = apierr.CodePlayerNotFound
	CodeSessionNotFound     = apierr.CodeSessionNotFound
	CodeResultNotFound      = apierr.CodeResultNotFound
	CodeStatsNotFound       = apierr.CodeStatsNotFound
	CodePlayerNotRanked     = apierr.CodePlayerNotRanked
	CodeInvalidSessionState = apierr.CodeInvalidSessionState
	CodeResultExists        = apierr.CodeResultExists
	CodeNotParticipant      = apierr.CodeNotParticipant
	CodeAlreadyQueued       = apierr.CodeAlreadyQueued
	CodeQueueFull           = apierr.CodeQueueFull
	CodeInsufficientPlayers = apierr.CodeInsufficientPlayers
	CodeUsernameExists      = apierr.CodeUsernameExists
	CodeInvalidCredentials  = apierr.CodeInvalidCredentials
	CodeStoreUnavailable    = apierr.CodeStoreUnavailable
	CodeInternalError       = apierr.CodeInternalError
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return apierr.NewUnauthorizedError()
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return apierr.NewInternalError()
}
