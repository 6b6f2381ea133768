package update

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
	"github.com/sandeepkv93/todoai/internal/prefs"
	"github.com/sandeepkv93/todoai/internal/views"
)

func (m Model) enterAgentPage() (Model, tea.Cmd) {
	if m.agent.loaded || m.agent.loading {
		return m, m.loadUsageCmd()
	}
	m.agent.loading = true
	return m, tea.Batch(m.loadSessionsCmd(), m.loadUsageCmd(), m.spinner.Tick)
}

func (m Model) onSessionsLoaded(msg SessionsLoadedMsg) (Model, tea.Cmd) {
	m.agent.loading = false
	if msg.Err != nil {
		m.Conversation.SetError(errorText(msg.Err))
		m.syncTranscript()
		return m, nil
	}
	m.agent.loaded = true
	m.Conversation.SetSessions(msg.Sessions)
	sessions := m.Conversation.Sessions()
	if len(sessions) == 0 {
		return m, m.createSessionCmd()
	}
	if current := m.Conversation.SessionID(); current != "" && containsString(sessions, current) {
		return m, nil
	}
	target := sessions[0]
	if containsString(sessions, m.prefs.LastSession) {
		target = m.prefs.LastSession
	}
	return m.selectSession(target)
}

func (m Model) onSessionCreated(msg SessionCreatedMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.Conversation.SetError(errorText(msg.Err))
		m.syncTranscript()
		return m, nil
	}
	if msg.SessionID == "" {
		return m, nil
	}
	m.Conversation.AddSession(msg.SessionID)
	m.Conversation.Load(msg.SessionID, nil)
	m.rememberSession(msg.SessionID)
	m.Status = StatusBar{Text: "new session: " + chat.SessionLabel(msg.SessionID)}
	m.syncTranscript()
	return m, nil
}

// selectSession switches the transcript to id and fetches its history.
func (m Model) selectSession(id string) (Model, tea.Cmd) {
	m.Conversation.Load(id, nil)
	m.rememberSession(id)
	m.agent.loading = true
	m.agent.follow = true
	m.syncTranscript()
	return m, tea.Batch(m.loadHistoryCmd(id), m.spinner.Tick)
}

func (m Model) onHistoryLoaded(msg HistoryLoadedMsg) (Model, tea.Cmd) {
	// A late reply for a session the user already left, or one that would
	// clobber a send in progress, is dropped.
	if msg.SessionID != m.Conversation.SessionID() || m.Conversation.Sending() {
		return m, nil
	}
	m.agent.loading = false
	if msg.Err != nil {
		m.Conversation.SetError(errorText(msg.Err))
		m.syncTranscript()
		return m, nil
	}
	m.Conversation.Load(msg.SessionID, chat.FromHistory(msg.History, nil))
	m.agent.follow = true
	m.syncTranscript()
	return m, nil
}

func (m Model) onUsageLoaded(msg UsageLoadedMsg) Model {
	if msg.Err != nil {
		m.log.WithError(msg.Err).Debug("usage stats unavailable")
		return m
	}
	m.Conversation.SetUsage(msg.Usage)
	return m
}

func (m Model) cycleSession(step int) (Model, tea.Cmd) {
	sessions := m.Conversation.Sessions()
	if len(sessions) == 0 {
		return m, nil
	}
	idx := indexOf(sessions, m.Conversation.SessionID())
	next := (idx + step + len(sessions)) % len(sessions)
	if idx < 0 {
		next = 0
	}
	if sessions[next] == m.Conversation.SessionID() {
		return m, nil
	}
	return m.selectSession(sessions[next])
}

func (m Model) sendDraft() (Model, tea.Cmd) {
	send, ctx, err := m.Conversation.Begin(m.ctx, m.agent.input.Value())
	switch {
	case errors.Is(err, chat.ErrEmptyDraft):
		return m, nil
	case errors.Is(err, chat.ErrNoSession):
		m.Status = StatusBar{Text: "no active session, press n to create one", IsError: true}
		return m, nil
	case err != nil:
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		return m, nil
	}
	m.agent.input.SetValue("")
	m.agent.follow = true
	m.syncTranscript()

	req := api.AgentTodoRequest{
		Messages:  []api.AgentMessage{{Role: string(chat.RoleUser), Content: send.Content}},
		SessionID: send.SessionID,
		AgentName: m.agentName,
		Timezone:  timezoneName(m.loc.String()),
	}
	m.log.WithField("session_id", send.SessionID).WithField("gen", send.Gen).Debug("agent send")
	return m, tea.Batch(streamCmd(ctx, m.backend, req, send.Gen), m.spinner.Tick)
}

func (m Model) onStreamEvent(msg StreamEventMsg) (Model, tea.Cmd) {
	if !m.Conversation.Apply(msg.Gen, msg.Event) {
		return m, nil
	}
	if msg.Event.Kind == chat.KindSessionInitialized {
		m.rememberSession(m.Conversation.SessionID())
	}
	m.syncTranscript()
	return m, waitForStream(msg.ch)
}

func (m Model) onStreamEnd(msg StreamEndMsg) (Model, tea.Cmd) {
	if msg.Gen != m.Conversation.ActiveGen() {
		return m, nil
	}
	m.Conversation.End(msg.Gen, msg.Err)
	switch m.Conversation.Outcome() {
	case chat.OutcomeErrored:
		m.notify("Assistant", m.Conversation.Err(), "error")
	case chat.OutcomeCompleted:
		m.Status = StatusBar{Text: "reply complete"}
	}
	m.syncTranscript()
	// The reply may have created or edited todos.
	return m, tea.Batch(m.loadUsageCmd(), m.loadDashboardCmd())
}

func (m Model) stopStream() Model {
	if !m.Conversation.Sending() {
		return m
	}
	m.Conversation.Cancel()
	m.Status = StatusBar{Text: "reply stopped"}
	m.syncTranscript()
	return m
}

func (m Model) handleAgentKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.agent.composing {
		switch msg.String() {
		case "esc":
			m.agent.composing = false
			m.agent.input.Blur()
			return m, nil
		case "enter":
			if m.Conversation.Sending() {
				return m, nil
			}
			return m.sendDraft()
		}
		var cmd tea.Cmd
		m.agent.input, cmd = m.agent.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "enter", "i":
		if m.Conversation.SessionID() == "" {
			m.Status = StatusBar{Text: "no active session, press n to create one", IsError: true}
			return m, nil
		}
		m.agent.composing = true
		cmd := m.agent.input.Focus()
		return m, cmd
	case "esc":
		return m.stopStream(), nil
	case "n":
		return m, m.createSessionCmd()
	case "[":
		return m.cycleSession(-1)
	case "]":
		return m.cycleSession(1)
	case "pgup", "pgdown", "up", "down", "k", "j":
		var cmd tea.Cmd
		m.agent.transcript, cmd = m.agent.transcript.Update(msg)
		m.agent.follow = m.agent.transcript.AtBottom()
		return m, cmd
	}
	return m, nil
}

func (m *Model) rememberSession(id string) {
	if id == "" || id == m.prefs.LastSession {
		return
	}
	m.prefs.LastSession = id
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if m.prefsStore == nil {
		return
	}
	if err := m.prefsStore.Save(m.prefs); err != nil {
		m.log.WithError(err).Warn("save preferences")
		m.Status = StatusBar{Text: "could not save preferences: " + err.Error(), IsError: true}
	}
}

// syncTranscript re-renders the conversation into the transcript viewport.
func (m *Model) syncTranscript() {
	s := views.NewStyles(m.dark())
	m.agent.transcript.Width = m.transcriptWidth()
	m.agent.transcript.Height = m.transcriptHeight()
	m.agent.transcript.SetContent(views.RenderAgentTranscript(s, m.agentData()))
	if m.agent.follow {
		m.agent.transcript.GotoBottom()
	}
}

func (m Model) agentData() views.AgentData {
	conv := m.Conversation
	data := views.AgentData{
		Sessions:      make([]string, 0, len(conv.Sessions())),
		ActiveSession: indexOf(conv.Sessions(), conv.SessionID()),
		SessionLabel:  chat.SessionLabel(conv.SessionID()),
		Error:         conv.Err(),
		Input:         m.agent.input.View(),
		InputDisabled: conv.SessionID() == "",
		Sending:       conv.Sending(),
		Spinner:       m.spinner.View(),
	}
	for _, id := range conv.Sessions() {
		data.Sessions = append(data.Sessions, chat.SessionLabel(id))
	}
	if usage, ok := conv.Usage(); ok {
		data.Usage = &views.UsageData{UsageCount: usage.UsageCount, RemainingQuota: usage.RemainingQuota, ResetDate: usage.ResetDate}
	}
	inFlight := conv.InFlightID()
	width := m.transcriptWidth()
	for _, msg := range conv.Messages() {
		content := msg.Content
		if msg.Role == chat.RoleAssistant && msg.ID != inFlight {
			content = views.RenderMarkdown(content, m.dark(), width)
		}
		if msg.ID == inFlight && content == "" {
			content = m.spinner.View()
		}
		data.Messages = append(data.Messages, views.MessageRow{Role: string(msg.Role), Content: content})
	}
	return data
}

func (m Model) transcriptWidth() int {
	w := m.width*2/3 - 8
	if w < 20 {
		w = 20
	}
	return w
}

func (m Model) transcriptHeight() int {
	h := m.height - 19
	if m.Conversation.Err() != "" {
		h--
	}
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) dark() bool {
	return m.ResolvedTheme() == prefs.ThemeDark
}

// timezoneName drops the placeholder name of an unnamed local zone.
func timezoneName(name string) string {
	if name == "" || name == "Local" {
		return ""
	}
	return strings.TrimSpace(name)
}

func indexOf(items []string, target string) int {
	for i, item := range items {
		if item == target {
			return i
		}
	}
	return -1
}

func containsString(items []string, target string) bool {
	return indexOf(items, target) >= 0
}
