package chat

import "strings"

const sessionLabelMax = 24

// FromHistory converts the backend's session history into display messages.
// Role records keep their role, event records become tool messages and
// anything else is shown as assistant output.
func FromHistory(items []any, newID IDFunc) []Message {
	if newID == nil {
		newID = NewMessageID
	}
	out := make([]Message, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			role, hasRole := record["role"].(string)
			if _, hasContent := record["content"]; hasRole && hasContent {
				out = append(out, Message{ID: newID(), Role: Role(role), Content: Normalize(record["content"])})
				continue
			}
			if event, ok := record["event"].(string); ok {
				out = append(out, Message{ID: newID(), Role: RoleTool, Content: event + ": " + Normalize(record["data"])})
				continue
			}
		}
		out = append(out, Message{ID: newID(), Role: RoleAssistant, Content: Normalize(item)})
	}
	return out
}

func SessionLabel(id string) string {
	if id == "" {
		return "no session"
	}
	label := []rune(strings.Replace(id, "user_", "User ", 1))
	if len(label) > sessionLabelMax {
		label = label[:sessionLabelMax]
	}
	return string(label)
}
