package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Normalize renders an arbitrary payload as display text. It never fails:
// strings pass through, nil becomes "", errors use their message, everything
// else is pretty-printed JSON with fmt.Sprint as the last resort.
func Normalize(v any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("%v", v)
		}
	}()

	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case error:
		return typed.Error()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}
