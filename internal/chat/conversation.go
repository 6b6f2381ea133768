package chat

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrEmptyDraft = errors.New("chat: message is empty")
	ErrNoSession  = errors.New("chat: no active session")
)

type Outcome string

const (
	OutcomeIdle      Outcome = "idle"
	OutcomeSending   Outcome = "sending"
	OutcomeCompleted Outcome = "completed"
	OutcomeErrored   Outcome = "errored"
	OutcomeCancelled Outcome = "cancelled"
)

// Send identifies one outstanding send. Gen is bumped on every Begin, and
// events tagged with an older Gen are discarded.
type Send struct {
	Gen         uint64
	SessionID   string
	Content     string
	AssistantID string
}

type activeSend struct {
	gen         uint64
	assistantID string
	cancel      context.CancelFunc
	errored     bool
}

// Conversation owns the transcript and session handle of the agent page.
// It is not safe for concurrent use; all calls happen on the UI update loop.
type Conversation struct {
	newID     IDFunc
	messages  []Message
	sessionID string
	sessions  []string
	err       string
	usage     *Usage
	gen       uint64
	active    *activeSend
	outcome   Outcome
}

func NewConversation(newID IDFunc) *Conversation {
	if newID == nil {
		newID = NewMessageID
	}
	return &Conversation{newID: newID, outcome: OutcomeIdle}
}

// Load selects a session and replaces the transcript with its history.
// Any active send is cancelled first.
func (c *Conversation) Load(sessionID string, history []Message) {
	c.Cancel()
	c.sessionID = sessionID
	c.messages = append([]Message(nil), history...)
	c.err = ""
	c.outcome = OutcomeIdle
}

// Begin validates the draft, cancels any previous send and appends the user
// message plus the empty assistant placeholder. The returned context is
// cancelled when the send is superseded or the conversation is torn down.
func (c *Conversation) Begin(ctx context.Context, draft string) (Send, context.Context, error) {
	content := strings.TrimSpace(draft)
	if content == "" {
		return Send{}, nil, ErrEmptyDraft
	}
	if c.sessionID == "" {
		return Send{}, nil, ErrNoSession
	}
	c.Cancel()

	c.err = ""
	c.gen++
	sendCtx, cancel := context.WithCancel(ctx)
	user := Message{ID: c.newID(), Role: RoleUser, Content: content}
	assistant := Message{ID: c.newID(), Role: RoleAssistant}
	c.messages = append(c.messages, user, assistant)
	c.active = &activeSend{gen: c.gen, assistantID: assistant.ID, cancel: cancel}
	c.outcome = OutcomeSending

	return Send{
		Gen:         c.gen,
		SessionID:   c.sessionID,
		Content:     content,
		AssistantID: assistant.ID,
	}, sendCtx, nil
}

// Apply feeds one event of send gen to the reducer. It reports false when
// the event belongs to a send that is no longer active.
func (c *Conversation) Apply(gen uint64, ev Event) bool {
	if c.active == nil || c.active.gen != gen {
		return false
	}
	Reduce(conversationHost{c: c, send: c.active}, ev)
	return true
}

// End terminates send gen. Transport errors are surfaced without touching
// the output already applied; cancellation is not reported as an error.
func (c *Conversation) End(gen uint64, err error) {
	if c.active == nil || c.active.gen != gen {
		return
	}
	send := c.active
	c.active = nil
	send.cancel()

	switch {
	case errors.Is(err, context.Canceled):
		c.outcome = OutcomeCancelled
	case err != nil:
		c.err = Normalize(err)
		c.outcome = OutcomeErrored
	case send.errored:
		c.outcome = OutcomeErrored
	default:
		c.outcome = OutcomeCompleted
	}
}

// Cancel stops the active send, if any.
func (c *Conversation) Cancel() {
	if c.active == nil {
		return
	}
	c.active.cancel()
	c.active = nil
	c.outcome = OutcomeCancelled
}

func (c *Conversation) Sending() bool { return c.active != nil }

func (c *Conversation) Outcome() Outcome { return c.outcome }

func (c *Conversation) ActiveGen() uint64 {
	if c.active == nil {
		return 0
	}
	return c.active.gen
}

func (c *Conversation) InFlightID() string {
	if c.active == nil {
		return ""
	}
	return c.active.assistantID
}

func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

func (c *Conversation) SessionID() string { return c.sessionID }

func (c *Conversation) Sessions() []string {
	return append([]string(nil), c.sessions...)
}

func (c *Conversation) SetSessions(ids []string) {
	c.sessions = c.sessions[:0]
	for _, id := range ids {
		if id != "" && !containsString(c.sessions, id) {
			c.sessions = append(c.sessions, id)
		}
	}
}

// AddSession puts id at the front of the session list unless already known.
func (c *Conversation) AddSession(id string) {
	if id == "" || containsString(c.sessions, id) {
		return
	}
	c.sessions = append([]string{id}, c.sessions...)
}

func (c *Conversation) Err() string { return c.err }

func (c *Conversation) SetError(msg string) { c.err = msg }

func (c *Conversation) ClearError() { c.err = "" }

func (c *Conversation) Usage() (Usage, bool) {
	if c.usage == nil {
		return Usage{}, false
	}
	return *c.usage, true
}

func (c *Conversation) SetUsage(u Usage) { c.usage = &u }

type conversationHost struct {
	c    *Conversation
	send *activeSend
}

func (h conversationHost) AppendMessage(m Message) {
	h.c.messages = append(h.c.messages, m)
}

func (h conversationHost) MutateInFlight(fn func(string) string) {
	for i := range h.c.messages {
		if h.c.messages[i].ID == h.send.assistantID {
			h.c.messages[i].Content = fn(h.c.messages[i].Content)
			return
		}
	}
}

func (h conversationHost) SetSession(id string) {
	h.c.sessionID = id
	h.c.AddSession(id)
}

func (h conversationHost) SetError(msg string) {
	h.c.err = msg
	h.send.errored = true
}

func (h conversationHost) NewID() string { return h.c.newID() }

func containsString(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
