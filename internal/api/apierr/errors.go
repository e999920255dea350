package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minisport/arena/internal/model"
	"github.com/minisport/arena/internal/services/players"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeResultNotFound      = "RESULT_NOT_FOUND"
	CodeStatsNotFound       = "STATS_NOT_FOUND"
	CodePlayerNotRanked     = "PLAYER_NOT_RANKED"
	CodeInvalidSessionState = "INVALID_SESSION_STATE"
	CodeResultExists        = "RESULT_ALREADY_EXISTS"
	CodeNotParticipant      = "NOT_PARTICIPANT"
	CodeAlreadyQueued       = "ALREADY_QUEUED"
	CodeQueueFull           = "QUEUE_FULL"
	CodeInsufficientPlayers = "INSUFFICIENT_PLAYERS"
	CodeUsernameExists      = "USERNAME_EXISTS"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeStoreUnavailable    = "STORE_UNAVAILABLE"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrSessionNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSessionNotFound, "Session not found"}}
	case errors.Is(err, model.ErrResultNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResultNotFound, "Result not found"}}
	case errors.Is(err, model.ErrStatsNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeStatsNotFound, "No stats recorded for this player"}}
	case errors.Is(err, model.ErrPlayerNotRanked):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotRanked, "Player has no leaderboard rank"}}
	case errors.Is(err, model.ErrInvalidSessionState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidSessionState, "Operation not valid for current session status"}}
	case errors.Is(err, model.ErrResultAlreadyExists):
		return &httpError{http.StatusConflict, APIError{CodeResultExists, "Result already submitted for this player"}}
	case errors.Is(err, model.ErrNotParticipant):
		return &httpError{http.StatusForbidden, APIError{CodeNotParticipant, "Player is not a participant in this session"}}
	case errors.Is(err, model.ErrAlreadyQueued):
		return &httpError{http.StatusConflict, APIError{CodeAlreadyQueued, "Already in this queue"}}
	case errors.Is(err, model.ErrQueueFull):
		return &httpError{http.StatusTooManyRequests, APIError{CodeQueueFull, "Queue is at capacity, try again later"}}
	case errors.Is(err, model.ErrInsufficientPlayers):
		return &httpError{http.StatusConflict, APIError{CodeInsufficientPlayers, "Not enough players for a session"}}
	case errors.Is(err, model.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Backing store unavailable"}}

	// Map auth errors
	case errors.Is(err, players.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, players.ErrInvalidSession):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid or expired session"}}
	case errors.Is(err, players.ErrUsernameExists):
		return &httpError{http.StatusConflict, APIError{CodeUsernameExists, "Username already exists"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
