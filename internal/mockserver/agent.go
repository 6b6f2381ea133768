package mockserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sessions := append([]string(nil), s.sessions...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.ListAgentSessionsResponse{Sessions: sessions})
}

func (s *Server) handleNewSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	id := s.newSessionLocked()
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.CreateNewSessionResponse{SessionID: id})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = api.DefaultHistoryLimit
	}
	s.mu.Lock()
	items, ok := s.history[id]
	items = append([]any(nil), items...)
	s.mu.Unlock()
	if !ok {
		respondDetail(w, http.StatusNotFound, "Session not found")
		return
	}
	if len(items) > limit {
		items = items[len(items)-limit:]
	}
	respondJSON(w, http.StatusOK, api.SessionHistoryResponse{History: items})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	usage := s.usageLocked()
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, usage)
}

func (s *Server) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	var in api.AgentTodoRequest
	if !decode(w, r, &in) {
		return
	}
	content := lastUserMessage(in.Messages)
	if content == "" {
		respondDetailList(w, http.StatusUnprocessableEntity, "messages must contain a user message")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.usage >= s.opts.Quota {
		respondDetail(w, http.StatusTooManyRequests, "Monthly AI quota exhausted")
		return
	}
	s.usage++
	todo := s.insertTodoLocked(s.draftFromPrompt(content))
	respondJSON(w, http.StatusOK, api.AgentCreateTodoResponse{
		"session_id": in.SessionID,
		"reply":      replyFor(todo),
		"todo":       todo,
	})
}

// handleAgentStream replays a fixed agent turn: session handshake, one
// create_todo tool round trip, the reply as word deltas and the final text.
func (s *Server) handleAgentStream(w http.ResponseWriter, r *http.Request) {
	var in api.AgentTodoRequest
	if !decode(w, r, &in) {
		return
	}
	content := lastUserMessage(in.Messages)
	if content == "" {
		respondDetailList(w, http.StatusUnprocessableEntity, "messages must contain a user message")
		return
	}

	stream, err := newSSEWriter(w)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	ctx := r.Context()
	log := s.log.WithField("session_id", in.SessionID)

	s.mu.Lock()
	sessionID := in.SessionID
	if _, known := s.history[sessionID]; !known {
		sessionID = s.newSessionLocked()
	}
	exhausted := s.usage >= s.opts.Quota
	if !exhausted {
		s.usage++
	}
	s.mu.Unlock()

	emit := func(event string, data any) bool {
		if s.opts.EventDelay > 0 {
			select {
			case <-time.After(s.opts.EventDelay):
			case <-ctx.Done():
				return false
			}
		}
		if err := stream.Write(event, data); err != nil {
			log.WithError(err).Debug("client went away")
			return false
		}
		return true
	}

	if !emit(chat.KindSessionInitialized, map[string]any{"session_id": sessionID}) {
		return
	}
	if exhausted {
		emit(chat.KindError, map[string]any{"message": "Monthly AI quota exhausted"})
		return
	}

	draft := s.draftFromPrompt(content)
	if !emit(chat.KindAgentUpdated, map[string]any{"agent": "TodoAssistant"}) {
		return
	}
	if !emit(chat.KindToolCall, map[string]any{"name": "create_todo", "arguments": draft}) {
		return
	}
	s.mu.Lock()
	todo := s.insertTodoLocked(draft)
	s.mu.Unlock()
	if !emit(chat.KindToolResult, map[string]any{"name": "create_todo", "todo": todo}) {
		return
	}

	reply := replyFor(todo)
	for i, word := range strings.SplitAfter(reply, " ") {
		if !emit(chat.KindMessageDelta, map[string]any{"content": word, "index": i}) {
			return
		}
	}
	if !emit(chat.KindCompleted, map[string]any{"final_message": reply, "session_id": sessionID}) {
		return
	}
	_ = stream.Comment("end of stream")

	s.mu.Lock()
	s.history[sessionID] = append(s.history[sessionID],
		map[string]any{"role": "user", "content": content},
		map[string]any{"event": chat.KindToolCall, "data": map[string]any{"name": "create_todo", "todo_id": todo.ID}},
		map[string]any{"role": "assistant", "content": reply},
	)
	s.mu.Unlock()
	log.WithField("todo_id", todo.ID).Info("agent turn streamed")
}

func (s *Server) newSessionLocked() string {
	id := fmt.Sprintf("user_demo_%s", uuid.NewString()[:8])
	s.sessions = append([]string{id}, s.sessions...)
	s.history[id] = []any{}
	return id
}

func (s *Server) usageLocked() chat.Usage {
	now := s.opts.Now().UTC()
	reset := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return chat.Usage{
		UsageCount:     s.usage,
		RemainingQuota: s.opts.Quota - s.usage,
		ResetDate:      reset.Format(time.RFC3339),
	}
}

// draftFromPrompt schedules the prompt as a one hour todo starting at the
// next full hour.
func (s *Server) draftFromPrompt(prompt string) api.TodoCreate {
	start := s.opts.Now().UTC().Truncate(time.Hour).Add(time.Hour)
	item := strings.TrimSpace(prompt)
	if runes := []rune(item); len(runes) > 60 {
		item = string(runes[:60])
	}
	return api.TodoCreate{
		Item:       item,
		StartTime:  start.Format(time.RFC3339),
		EndTime:    start.Add(time.Hour).Format(time.RFC3339),
		AlarmTime:  start.Add(-10 * time.Minute).Format(time.RFC3339),
		Importance: "medium",
	}
}

func replyFor(todo api.TodoModel) string {
	return fmt.Sprintf("Created **%s** starting %s.", todo.Item, todo.StartTime)
}

func lastUserMessage(messages []api.AgentMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == string(chat.RoleUser) && strings.TrimSpace(messages[i].Content) != "" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}
