package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a normalised non-2xx response from the commerce API.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Body       []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("commerce api: %d %s", e.StatusCode, e.Message)
}

func newError(status int, body []byte) *Error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e := &Error{
		StatusCode: status,
		Code:       codeForStatus(status),
		Body:       body,
	}

	var envelope struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != "":
			e.Message = envelope.Error
		case envelope.Detail != "":
			e.Message = envelope.Detail
		case envelope.Message != "":
			e.Message = envelope.Message
		}
		if envelope.Code != "" {
			e.Code = envelope.Code
		}
	}
	if e.Message == "" {
		e.Message = fieldErrors(body)
	}
	if e.Message == "" {
		e.Message = strings.ToLower(http.StatusText(status))
	}
	return e
}

// fieldErrors flattens a validation body such as {"email": ["required"]}.
func fieldErrors(body []byte) string {
	var fields map[string][]string
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fields))
	for name, msgs := range fields {
		parts = append(parts, name+": "+strings.Join(msgs, " "))
	}
	return strings.Join(parts, "; ")
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	case http.StatusTooManyRequests:
		return "rate_limit_exceeded"
	case http.StatusServiceUnavailable:
		return "service_unavailable"
	case http.StatusGatewayTimeout:
		return "timeout"
	default:
		if status >= http.StatusInternalServerError {
			return "internal_error"
		}
		return "request_failed"
	}
}

// StatusCode returns the API status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsUnauthorized reports 401 and 403, both of which mean "no usable user".
func IsUnauthorized(err error) bool {
	code := StatusCode(err)
	return code == http.StatusUnauthorized || code == http.StatusForbidden
}
