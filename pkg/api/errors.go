package api

import (
	"errors"
	"fmt"
)

// error codes the client assigns when the server did not provide one
const (
	CodeNetworkError = "NETWORK_ERROR"
	CodeBadResponse  = "BAD_RESPONSE"
)

// error codes the server returns in its error envelope
const (
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodePlayerNotFound = "PLAYER_NOT_FOUND"
	CodeNotYourTurn    = "NOT_YOUR_TURN"
	CodeInvalidCard    = "INVALID_CARD"
	CodeEmptyDeck      = "EMPTY_DECK"
	CodeGameNotOver    = "GAME_NOT_FINISHED"
)

// Error is an error from a SpeedMatch API call. Domain errors carry the code
// from the server's error envelope; HTTP failures without an envelope are
// normalized to HTTP_<status>, and transport failures to NETWORK_ERROR
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNetwork returns true if the error is a connectivity or timeout failure
func (e *Error) IsNetwork() bool {
	return e.Code == CodeNetworkError
}

// IsDomain returns true if the server rejected the request with a business
// error code
func (e *Error) IsDomain() bool {
	switch e.Code {
	case CodeNetworkError, CodeBadResponse:
		return false
	}

	return e.HTTPStatus == 0 || !isHTTPCode(e.Code)
}

// Fatal returns true if retrying the same request can never succeed. A fatal
// error during polling stops the poll loop permanently
func (e *Error) Fatal() bool {
	switch e.Code {
	case CodeGameNotFound, CodeRoomNotFound, CodePlayerNotFound:
		return true
	}

	return false
}

func isHTTPCode(code string) bool {
	return len(code) > 5 && code[:5] == "HTTP_"
}

func newNetworkError(err error) *Error {
	return &Error{
		Code:    CodeNetworkError,
		Message: err.Error(),
	}
}

func newHTTPError(statusCode int, body string) *Error {
	return &Error{
		Code:       fmt.Sprintf("HTTP_%d", statusCode),
		Message:    body,
		HTTPStatus: statusCode,
	}
}

// AsError returns the *Error inside err, or a NETWORK_ERROR wrapping it if
// err came from outside the API layer
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	return newNetworkError(err)
}

// ValidationError is a client-side precondition failure. It is raised before
// any network call is made and never reaches the server
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
