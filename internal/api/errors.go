package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// DefaultErrorMessage is used when an error response carries no usable detail.
const DefaultErrorMessage = "An error occurred"

// Error is the normalized form of every non-2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is a 401 response, which signals a stale or absent Credential.
func IsUnauthorized(err error) bool {
	return StatusOf(err) == http.StatusUnauthorized
}

// StatusOf returns the HTTP status carried by err, or 0 when err is not an *Error.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// newError builds an *Error from a failed response body.
func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: detailMessage(body)}
}

func detailMessage(body []byte) string {
	var payload errorPayload
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || len(payload.Detail) == 0 {
		return DefaultErrorMessage
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return DefaultErrorMessage
	}
	if strings.TrimSpace(detail) == "" {
		return DefaultErrorMessage
	}
	return detail
}
