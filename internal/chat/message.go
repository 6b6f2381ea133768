// Package chat folds the server-pushed event stream of an agent chat session
// into an ordered transcript of display messages.
package chat

import "github.com/google/uuid"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	default:
		return false
	}
}

type Message struct {
	ID      string
	Role    Role
	Content string
}

// Event is one server-sent event of an agent stream. Data holds the decoded
// JSON payload, or the raw text when the payload was not JSON.
type Event struct {
	Kind string
	Data any
}

const (
	KindSessionInitialized = "session_initialized"
	KindMessageDelta       = "message_delta"
	KindCompleted          = "completed"
	KindToolCall           = "tool_call"
	KindToolResult         = "tool_result"
	KindAgentUpdated       = "agent_updated"
	KindError              = "error"
)

const (
	LabelToolCall     = "tool invocation"
	LabelToolResult   = "tool result"
	LabelAgentUpdated = "agent updated"

	ErrorFallback = "AI streaming response failed"
)

type Usage struct {
	UsageCount     int    `json:"usage_count"`
	RemainingQuota int    `json:"remaining_quota"`
	ResetDate      string `json:"reset_date"`
}

type IDFunc func() string

func NewMessageID() string {
	return "msg-" + uuid.NewString()
}
