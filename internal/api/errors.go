package api

import (
	"encoding/json"
	"fmt"
	"strings"
)

const genericErrorMessage = "request failed, please try again later"

type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// newError builds an Error from a non-2xx response body. The body may be a
// JSON object carrying "detail", a JSON string, or plain text.
func newError(status int, body []byte) *Error {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		decoded = strings.TrimSpace(string(body))
	}
	return &Error{Status: status, Message: FormatError(decoded)}
}

// FormatError extracts a human-readable message from an error payload.
func FormatError(payload any) string {
	switch typed := payload.(type) {
	case nil:
		return genericErrorMessage
	case string:
		if typed == "" {
			return genericErrorMessage
		}
		return typed
	case error:
		return typed.Error()
	case map[string]any:
		switch detail := typed["detail"].(type) {
		case string:
			return detail
		case []any:
			if len(detail) > 0 {
				if first, ok := detail[0].(string); ok {
					return first
				}
			}
		}
	}
	return genericErrorMessage
}
