package chat

// Host receives the transcript mutations produced by Reduce. The reducer
// keeps no state of its own between events.
type Host interface {
	AppendMessage(Message)
	MutateInFlight(func(content string) string)
	SetSession(id string)
	SetError(msg string)
	NewID() string
}

// Reduce applies one event to the host. Unknown kinds and payloads missing
// the expected field are ignored.
func Reduce(host Host, ev Event) {
	switch ev.Kind {
	case KindSessionInitialized:
		if id := stringField(ev.Data, "session_id"); id != "" {
			host.SetSession(id)
		}
	case KindMessageDelta:
		if chunk := stringField(ev.Data, "content"); chunk != "" {
			host.MutateInFlight(func(content string) string { return content + chunk })
		}
	case KindCompleted:
		if final := stringField(ev.Data, "final_message"); final != "" {
			host.MutateInFlight(func(string) string { return final })
		}
	case KindToolCall:
		appendToolMessage(host, LabelToolCall, ev.Data)
	case KindToolResult:
		appendToolMessage(host, LabelToolResult, ev.Data)
	case KindAgentUpdated:
		appendToolMessage(host, LabelAgentUpdated, ev.Data)
	case KindError:
		msg := stringField(ev.Data, "message")
		if msg == "" {
			msg = ErrorFallback
		}
		host.SetError(msg)
	}
}

func appendToolMessage(host Host, label string, data any) {
	host.AppendMessage(Message{
		ID:      host.NewID(),
		Role:    RoleTool,
		Content: label + ": " + Normalize(data),
	})
}

func stringField(data any, key string) string {
	record, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := record[key].(string)
	return s
}
