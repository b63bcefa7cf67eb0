package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// RequestError is a failed HTTP call, carrying a human-readable message for
// the UI layer. Message extraction follows a fixed priority order so callers
// never see a raw body dump or a stack trace.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// newRequestError classifies an error response body. Extraction order is a
// contract: string body, then a message field, then a field→messages errors
// map joined into a multi-line summary, then the generic fallback.
func newRequestError(statusCode int, body []byte, fallback string) *RequestError {
	if msg := extractMessage(body); msg != "" {
		return &RequestError{StatusCode: statusCode, Message: msg}
	}
	return &RequestError{StatusCode: statusCode, Message: fallback}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	// A plain-text body is the message.
	var asString string
	if err := json.Unmarshal(body, &asString); err == nil {
		return strings.TrimSpace(asString)
	}
	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
			return trimmed
		}
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	if payload.Error != "" {
		return payload.Error
	}
	if len(payload.Errors) > 0 {
		fields := make([]string, 0, len(payload.Errors))
		for field := range payload.Errors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		lines := make([]string, 0, len(fields))
		for _, field := range fields {
			lines = append(lines, fmt.Sprintf("%s: %s", field, strings.Join(payload.Errors[field], "; ")))
		}
		return strings.Join(lines, "\n")
	}
	return ""
}
