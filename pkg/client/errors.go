package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// PostgREST and Postgres error codes the app reacts to.
const (
	CodeNoRows          = "PGRST116" // single row requested, zero (or many) returned
	CodeUniqueViolation = "23505"
)

// ErrNoSession is returned by operations that need a signed-in session.
var ErrNoSession = errors.New("no active session")

// APIError represents a non-2xx HTTP response from the backend.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    string
	Hint       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// errorBody covers the shapes returned by the auth service (msg,
// error_description, error) and by PostgREST (code, message, details, hint).
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Details          json.RawMessage `json:"details"`
	Hint             string          `json:"hint"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var eb errorBody
	if json.Unmarshal(body, &eb) != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		return apiErr
	}

	apiErr.Code = eb.ErrorCode
	if len(eb.Code) > 0 {
		var s string
		if json.Unmarshal(eb.Code, &s) == nil {
			apiErr.Code = s
		} else if apiErr.Code == "" {
			// The auth service reports the HTTP status as a numeric code.
			var n int
			if json.Unmarshal(eb.Code, &n) == nil {
				apiErr.Code = strconv.Itoa(n)
			}
		}
	}

	for _, m := range []string{eb.Msg, eb.ErrorDescription, eb.Message, eb.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}

	if len(eb.Details) > 0 && string(eb.Details) != "null" {
		var s string
		if json.Unmarshal(eb.Details, &s) == nil {
			apiErr.Details = s
		} else {
			apiErr.Details = string(eb.Details)
		}
	}
	apiErr.Hint = eb.Hint
	return apiErr
}

// IsStatus returns true if err (or any wrapped error) is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == code
	}
	return false
}

// IsCode returns true if err (or any wrapped error) is an APIError with the given backend code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}

// IsNotFound reports whether a single-row read matched no row.
func IsNotFound(err error) bool {
	return IsCode(err, CodeNoRows)
}

// IsUniqueViolation reports whether an insert hit a unique constraint.
func IsUniqueViolation(err error) bool {
	return IsCode(err, CodeUniqueViolation)
}

// Message returns the backend's human-readable message for err, or err.Error()
// when err is not an APIError.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
