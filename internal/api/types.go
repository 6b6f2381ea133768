package api

import "github.com/sandeepkv93/todoai/internal/chat"

type AccountLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AccountRegister struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type OAuth2Login struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	IsVerified bool   `json:"is_verified"`
}

type ResendVerificationResponse struct {
	Message string `json:"message"`
}

type TagModel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type TagCreate struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type TodoModel struct {
	ID          string     `json:"id"`
	Item        string     `json:"item"`
	Description string     `json:"description,omitempty"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	AlarmTime   string     `json:"alarm_time,omitempty"`
	Importance  string     `json:"importance,omitempty"`
	Tags        []TagModel `json:"tags,omitempty"`
}

// TodoCreate is the write payload; the backend spells the time fields
// without underscores on writes.
type TodoCreate struct {
	Item        string `json:"item"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"starttime"`
	EndTime     string `json:"endtime"`
	AlarmTime   string `json:"alarmtime,omitempty"`
	Importance  string `json:"importance,omitempty"`
}

type TodoQuery struct {
	Search             string
	PageSize           int
	IncludeSeriesItems *bool
	StartFrom          string
	StartTo            string
	EndFrom            string
	EndTo              string
}

type ListTodosResponse struct {
	Items []TodoModel `json:"items"`
}

type ListTagsResponse struct {
	Items []TagModel `json:"items"`
}

type DeleteResponse struct {
	Message string `json:"message,omitempty"`
}

type AgentMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AgentTodoRequest struct {
	Messages  []AgentMessage `json:"messages"`
	SessionID string         `json:"session_id"`
	AgentName string         `json:"agent_name"`
	Timezone  string         `json:"timezone,omitempty"`
}

type AgentCreateTodoResponse map[string]any

type ListAgentSessionsResponse struct {
	Sessions []string `json:"sessions"`
}

type CreateNewSessionResponse struct {
	SessionID string `json:"session_id"`
}

type SessionHistoryResponse struct {
	History []any `json:"history"`
}

type UsageStatsResponse = chat.Usage
