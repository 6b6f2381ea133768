package update

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/mockserver"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/prefs"
	"github.com/sandeepkv93/todoai/internal/scheduler"
)

// fixedNow sits in the future so the real-clock alarm engine keeps the
// seeded alarms.
var fixedNow = time.Date(2031, 10, 14, 9, 15, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestModel(t *testing.T, srvOpts mockserver.Options, mutate func(*Options)) Model {
	t.Helper()
	srvOpts.Now = clock
	srv := httptest.NewServer(mockserver.New(srvOpts).Handler())
	t.Cleanup(srv.Close)
	opts := Options{
		Backend:  api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}),
		Location: time.UTC,
		Now:      clock,
	}
	if mutate != nil {
		mutate(&opts)
	}
	m := New(opts)
	t.Cleanup(m.Shutdown)
	return m
}

// runCmd executes one command, failing the test if it blocks.
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	out := make(chan tea.Msg, 1)
	go func() { out <- cmd() }()
	select {
	case msg := <-out:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatalf("command did not finish")
		return nil
	}
}

// ignored filters out cursor blinks and spinner ticks, which reschedule
// themselves forever.
func ignored(msg tea.Msg) bool {
	switch msg.(type) {
	case nil, spinner.TickMsg, tea.QuitMsg:
		return true
	}
	name := fmt.Sprintf("%T", msg)
	return strings.HasPrefix(name, "cursor.") || strings.HasPrefix(name, "textinput.")
}

// drain runs cmd and feeds every resulting message back into Update until
// nothing is left to do.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := runCmd(t, next)
		if batch, ok := msg.(tea.BatchMsg); ok {
			queue = append(queue, batch...)
			continue
		}
		if ignored(msg) {
			continue
		}
		updated, follow := m.Update(msg)
		m = updated.(Model)
		queue = append(queue, follow)
	}
	return m
}

func press(t *testing.T, m Model, msg tea.KeyMsg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	return drain(t, updated.(Model), cmd)
}

// pressNoDrain applies a key without running the command it returns.
func pressNoDrain(m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func signIn(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, runes(mockserver.DemoUsername))
	m = press(t, m, tab)
	m = press(t, m, runes(mockserver.DemoPassword))
	m = press(t, m, enter)
	if m.User == nil {
		t.Fatalf("expected signed in user, auth error %q", m.auth.err)
	}
	return m
}

func TestNewModelDefaults(t *testing.T) {
	m := New(Options{Now: clock})
	if m.Page != PageAuth {
		t.Fatalf("expected auth page, got %q", m.Page)
	}
	if m.Keys.Quit != "q" || m.Keys.Agent != "4" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.Theme() != prefs.ThemeSystem {
		t.Fatalf("expected system theme, got %q", m.Theme())
	}
	if m.Booting {
		t.Fatalf("expected no boot check without a backend")
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m := New(Options{Now: clock})
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestBootWithoutTokenStaysOnAuth(t *testing.T) {
	m := newTestModel(t, mockserver.Options{}, nil)
	if !m.Booting {
		t.Fatalf("expected boot check with a backend")
	}
	m = drain(t, m, m.Init())
	if m.Booting || m.Page != PageAuth || m.User != nil {
		t.Fatalf("expected auth page after failed profile check, got page=%q booting=%v", m.Page, m.Booting)
	}
}

func TestLoginLoadsDashboard(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	if m.Page != PageDashboard {
		t.Fatalf("expected dashboard, got %q", m.Page)
	}
	stats := m.dashboard.stats
	if stats.Total != 3 || stats.High != 1 || stats.Upcoming != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.Next) != 3 || stats.Next[0].ID != "todo-3" {
		t.Fatalf("expected next todos ordered by start, got %+v", stats.Next)
	}
	if m.dashboard.usage == nil || m.dashboard.usage.RemainingQuota != 100 {
		t.Fatalf("expected usage on dashboard, got %+v", m.dashboard.usage)
	}
	if m.auth.inputs[fieldPassword].Value() != "" {
		t.Fatalf("expected password cleared after login")
	}
	if !strings.Contains(m.View(), "Overview") {
		t.Fatalf("expected dashboard view to render")
	}
}

func TestLoginFailureStaysOnAuth(t *testing.T) {
	m := newTestModel(t, mockserver.Options{}, nil)
	m = press(t, m, runes(mockserver.DemoUsername))
	m = press(t, m, tab)
	m = press(t, m, runes("wrong"))
	m = press(t, m, enter)
	if m.Page != PageAuth || m.User != nil {
		t.Fatalf("expected to stay on auth page, got %q", m.Page)
	}
	if m.auth.err != "Incorrect username or password" {
		t.Fatalf("expected backend detail as error, got %q", m.auth.err)
	}
}

func TestLoginRequiresFields(t *testing.T) {
	m := newTestModel(t, mockserver.Options{}, nil)
	m, cmd := pressNoDrain(m, enter)
	if cmd != nil {
		t.Fatalf("expected no request for empty form")
	}
	if m.auth.err == "" {
		t.Fatalf("expected validation error")
	}
}

func TestPageKeysNeedLogin(t *testing.T) {
	m := newTestModel(t, mockserver.Options{}, nil)
	m = press(t, m, runes("2"))
	if m.Page != PageAuth {
		t.Fatalf("expected auth page, got %q", m.Page)
	}
	if got := m.auth.inputs[fieldEmail].Value(); got != "2" {
		t.Fatalf("expected key typed into email field, got %q", got)
	}
	updated, _ := m.Update(SwitchPageMsg{Page: PageTodos})
	if updated.(Model).Page != PageAuth {
		t.Fatalf("expected switch to be refused without login")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	m := newTestModel(t, mockserver.Options{}, nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.auth.register {
		t.Fatalf("expected register mode")
	}
	m = press(t, m, runes("new@todo.ai"))
	m = press(t, m, tab)
	m = press(t, m, runes("secret"))
	m = press(t, m, tab)
	m = press(t, m, runes("New Person"))
	m = press(t, m, enter)
	if m.auth.err != "" {
		t.Fatalf("unexpected register error %q", m.auth.err)
	}
	if m.auth.register || !strings.Contains(m.auth.notice, "new@todo.ai") {
		t.Fatalf("expected back on login with notice, got register=%v notice=%q", m.auth.register, m.auth.notice)
	}

	m = press(t, m, runes("secret"))
	m = press(t, m, enter)
	if m.User != nil || m.auth.err != "Email not verified" {
		t.Fatalf("expected unverified login refused, got err %q", m.auth.err)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlV})
	if m.auth.notice != "verification email sent" {
		t.Fatalf("unexpected resend notice %q (err %q)", m.auth.notice, m.auth.err)
	}
	m = press(t, m, enter)
	if m.User == nil || m.User.Email != "new@todo.ai" || m.User.Name != "New Person" {
		t.Fatalf("expected new user signed in, got %+v (err %q)", m.User, m.auth.err)
	}
}

func TestTodosPageWindows(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))
	if m.Page != PageTodos {
		t.Fatalf("expected todos page, got %q", m.Page)
	}
	if len(m.todos.current) != 2 || m.todos.current[0].ID != "todo-1" {
		t.Fatalf("unexpected current window: %+v", m.todos.current)
	}
	if len(m.todos.history) != 1 || m.todos.history[0].ID != "todo-3" {
		t.Fatalf("unexpected history: %+v", m.todos.history)
	}
	if len(m.todos.tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(m.todos.tags))
	}

	m = press(t, m, runes("j"))
	m = press(t, m, runes("j"))
	if todo, _ := m.selectedTodo(); todo.ID != "todo-2" {
		t.Fatalf("expected cursor clamped to last current todo, got %q", todo.ID)
	}
	m = press(t, m, runes("h"))
	m = press(t, m, runes("j"))
	if todo, _ := m.selectedTodo(); todo.ID != "todo-3" {
		t.Fatalf("expected cursor in unfolded history, got %q", todo.ID)
	}
}

func TestTodosCycleImportanceAndDelete(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))

	// todo-1 is high; the next level wraps to none.
	m = press(t, m, runes("i"))
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	if m.todos.current[0].Importance != "none" {
		t.Fatalf("expected importance cycled to none, got %q", m.todos.current[0].Importance)
	}

	m = press(t, m, runes("x"))
	if len(m.todos.current) != 1 || m.todos.current[0].ID != "todo-2" {
		t.Fatalf("expected todo-1 deleted, got %+v", m.todos.current)
	}
	if m.dashboard.stats.Total != 2 {
		t.Fatalf("expected dashboard refreshed after delete, got %d", m.dashboard.stats.Total)
	}
}

var clearField = tea.KeyMsg{Type: tea.KeyCtrlU}

func findTodo(items []model.Todo, match func(model.Todo) bool) (model.Todo, bool) {
	for _, todo := range items {
		if match(todo) {
			return todo, true
		}
	}
	return model.Todo{}, false
}

func TestTodoFormEditsSelected(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))
	m = press(t, m, runes("e"))
	if !m.todos.form.active || m.todos.form.id != "todo-1" {
		t.Fatalf("expected edit form for todo-1, got %+v", m.todos.form)
	}
	if got := m.todos.form.inputs[formItem].Value(); got != "Design review" {
		t.Fatalf("expected item prefilled, got %q", got)
	}
	if got := m.todos.form.inputs[formStart].Value(); got != "2031-10-14T11:00" {
		t.Fatalf("expected start prefilled, got %q", got)
	}

	m = press(t, m, clearField)
	m = press(t, m, runes("Design review v2"))
	m = press(t, m, tab)
	m = press(t, m, clearField)
	m = press(t, m, runes("Bring the mockups"))
	for i := 0; i < 3; i++ {
		m = press(t, m, tab)
	}
	if m.todos.form.focus != formAlarm {
		t.Fatalf("expected alarm field focused, got %d", m.todos.form.focus)
	}
	m = press(t, m, clearField)
	m = press(t, m, runes("2031-10-14T10:45"))
	m = press(t, m, enter)

	if m.todos.form.active {
		t.Fatalf("expected form closed after save, error %q", m.todos.form.err)
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	todo, ok := findTodo(m.todos.current, func(td model.Todo) bool { return td.ID == "todo-1" })
	if !ok {
		t.Fatalf("expected todo-1 in current window, got %+v", m.todos.current)
	}
	if todo.Item != "Design review v2" || todo.Description != "Bring the mockups" {
		t.Fatalf("expected item and description updated, got %+v", todo)
	}
	if want := time.Date(2031, 10, 14, 10, 45, 0, 0, time.UTC); !todo.Alarm.Equal(want) {
		t.Fatalf("expected alarm %v, got %v", want, todo.Alarm)
	}
	if todo.Importance != model.ImportanceHigh {
		t.Fatalf("expected importance kept, got %q", todo.Importance)
	}
}

func TestTodoFormCreatesWithAlarm(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))
	m = press(t, m, runes("a"))
	if !m.todos.form.active || m.todos.form.id != "" {
		t.Fatalf("expected create form, got %+v", m.todos.form)
	}
	if got := m.todos.form.inputs[formStart].Value(); got != "2031-10-14T10:00" {
		t.Fatalf("expected start at the next full hour, got %q", got)
	}

	m = press(t, m, runes("Stretch"))
	m = press(t, m, tab)
	m = press(t, m, runes("Five minutes"))
	for i := 0; i < 3; i++ {
		m = press(t, m, tab)
	}
	m = press(t, m, runes("2031-10-14T09:50"))
	m = press(t, m, tab)
	m = press(t, m, clearField)
	m = press(t, m, runes("medium"))
	m = press(t, m, enter)

	if m.todos.form.active || m.Status.IsError {
		t.Fatalf("expected todo saved, form err %q status %+v", m.todos.form.err, m.Status)
	}
	todo, ok := findTodo(m.todos.current, func(td model.Todo) bool { return td.Item == "Stretch" })
	if !ok {
		t.Fatalf("expected new todo in current window, got %+v", m.todos.current)
	}
	if todo.Description != "Five minutes" || todo.Importance != model.ImportanceMedium {
		t.Fatalf("unexpected new todo: %+v", todo)
	}
	if want := time.Date(2031, 10, 14, 9, 50, 0, 0, time.UTC); !todo.Alarm.Equal(want) {
		t.Fatalf("expected alarm %v, got %v", want, todo.Alarm)
	}
	if m.dashboard.stats.Total != 4 {
		t.Fatalf("expected dashboard refreshed, got %d", m.dashboard.stats.Total)
	}
}

func TestTodoFormKeepsInputOnInvalidDraft(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))
	m = press(t, m, runes("a"))
	m = press(t, m, tab)
	m = press(t, m, runes("no title yet"))
	m = press(t, m, enter)
	if !m.todos.form.active || !strings.Contains(m.todos.form.err, "required") {
		t.Fatalf("expected form kept open with error, got %+v", m.todos.form)
	}
	if got := m.todos.form.inputs[formDescription].Value(); got != "no title yet" {
		t.Fatalf("expected description kept, got %q", got)
	}
	if !strings.Contains(m.View(), "New todo") {
		t.Fatalf("expected form rendered")
	}

	m = press(t, m, esc)
	if m.todos.form.active {
		t.Fatalf("expected esc to close the form")
	}
	if m.dashboard.stats.Total != 3 {
		t.Fatalf("expected nothing created, got %d", m.dashboard.stats.Total)
	}
}

func TestPaletteAddAndSearch(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("/"))
	if !m.Palette.Active {
		t.Fatalf("expected palette active")
	}
	m = press(t, m, runes("add Write tests | 2031-10-15T10:00 | 2031-10-15T11:00 | high"))
	m = press(t, m, enter)
	if m.Palette.Active {
		t.Fatalf("expected palette closed after enter")
	}
	if m.Status.IsError {
		t.Fatalf("unexpected error: %s", m.Status.Text)
	}
	if m.dashboard.stats.Total != 4 || m.dashboard.stats.High != 2 {
		t.Fatalf("expected new high todo on dashboard, got %+v", m.dashboard.stats)
	}

	m = press(t, m, runes("/"))
	m = press(t, m, runes("search write"))
	m = press(t, m, enter)
	if m.Page != PageTodos || m.todos.search != "write" {
		t.Fatalf("expected filtered todos page, got page=%q search=%q", m.Page, m.todos.search)
	}
	if len(m.todos.current) != 1 || m.todos.current[0].Item != "Write tests" {
		t.Fatalf("unexpected search result: %+v", m.todos.current)
	}
}

func TestPaletteRejectsBadInput(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	for _, input := range []string{"fly away", "add only-an-item", "add x | 2031-10-15T12:00 | 2031-10-15T11:00"} {
		m = press(t, m, runes("/"))
		m = press(t, m, runes(input))
		m = press(t, m, enter)
		if !m.Status.IsError {
			t.Fatalf("expected error status for %q, got %+v", input, m.Status)
		}
	}
	if m.dashboard.stats.Total != 3 {
		t.Fatalf("expected no todo created, got %d", m.dashboard.stats.Total)
	}
}

func TestScheduleMonthNavigation(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("3"))
	if got := m.schedule.month.Format("2006-01"); got != "2031-10" {
		t.Fatalf("expected October 2031, got %s", got)
	}
	if len(m.schedule.items) != 3 {
		t.Fatalf("expected 3 todos this month, got %d", len(m.schedule.items))
	}
	m = press(t, m, runes("l"))
	if got := m.schedule.month.Format("2006-01"); got != "2031-11" || len(m.schedule.items) != 0 {
		t.Fatalf("expected empty November, got %s with %d", got, len(m.schedule.items))
	}
	m = press(t, m, runes("t"))
	if got := m.schedule.month.Format("2006-01"); got != "2031-10" {
		t.Fatalf("expected back to October, got %s", got)
	}
}

func TestThemePersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	m := signIn(t, newTestModel(t, mockserver.Options{}, func(o *Options) {
		o.Prefs = prefs.NewStore(path)
	}))
	m = press(t, m, runes("5"))
	m = press(t, m, runes("d"))
	if m.ResolvedTheme() != prefs.ThemeDark {
		t.Fatalf("expected dark theme, got %q", m.ResolvedTheme())
	}
	loaded, err := prefs.NewStore(path).Load()
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if loaded.Theme != prefs.ThemeDark {
		t.Fatalf("expected dark theme persisted, got %q", loaded.Theme)
	}

	m = press(t, m, runes("t"))
	if m.Theme() != prefs.ThemeLight {
		t.Fatalf("expected toggle to light, got %q", m.Theme())
	}
}

func TestLogoutReturnsToAuth(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("5"))
	m = press(t, m, runes("L"))
	if m.Page != PageAuth || m.User != nil {
		t.Fatalf("expected signed out, got page=%q", m.Page)
	}
	if m.dashboard.stats.Total != 0 {
		t.Fatalf("expected page state reset")
	}
}

type recordingNotifier struct {
	sent []Notification
}

func (r *recordingNotifier) Send(n Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func TestAlarmDueNotifies(t *testing.T) {
	rec := &recordingNotifier{}
	m := New(Options{Now: clock, Location: time.UTC, Notifier: rec, DesktopNotifications: true})
	updated, cmd := m.Update(AlarmDueMsg{Event: scheduler.AlarmEvent{ID: "alarm-todo-1", TodoID: "todo-1", Title: "Design review", TriggerAt: fixedNow}})
	next := updated.(Model)
	if cmd != nil {
		t.Fatalf("expected no re-arm without a scheduler")
	}
	if !strings.Contains(next.Status.Text, "Design review") {
		t.Fatalf("unexpected status: %q", next.Status.Text)
	}
	if len(next.Notifications) != 1 || next.Notifications[0].Level != "alarm" {
		t.Fatalf("unexpected notifications: %+v", next.Notifications)
	}
	if len(rec.sent) != 1 || rec.sent[0].Body != "Design review" {
		t.Fatalf("expected desktop notification, got %+v", rec.sent)
	}

	next.notify("Command", "routine", "info")
	if len(rec.sent) != 1 {
		t.Fatalf("expected info notifications kept off the desktop")
	}
}

func TestDashboardArmsAlarms(t *testing.T) {
	engine := scheduler.NewEngine(4)
	m := signIn(t, newTestModel(t, mockserver.Options{}, func(o *Options) {
		o.Scheduler = engine
	}))
	// Only todo-1 carries an alarm, 75 minutes after fixedNow.
	if engine.Pending() != 1 {
		t.Fatalf("expected one pending alarm, got %d", engine.Pending())
	}
	m = press(t, m, runes("5"))
	m = press(t, m, runes("L"))
	if engine.Pending() != 0 {
		t.Fatalf("expected alarms cleared on logout, got %d", engine.Pending())
	}
}

func TestNotificationsCapped(t *testing.T) {
	m := New(Options{Now: clock})
	for i := 0; i < maxNotifications+5; i++ {
		m.notify("n", fmt.Sprintf("body %d", i), "info")
	}
	if len(m.Notifications) != maxNotifications {
		t.Fatalf("expected %d notifications, got %d", maxNotifications, len(m.Notifications))
	}
	if m.Notifications[0].Body != "body 5" {
		t.Fatalf("expected oldest dropped, got %q", m.Notifications[0].Body)
	}
}

func TestEscapeAppleScript(t *testing.T) {
	got := escapeAppleScript(`say "hi" \ bye`)
	want := `say \"hi\" \\ bye`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestHelpPanelListsPageBindings(t *testing.T) {
	m := signIn(t, newTestModel(t, mockserver.Options{}, nil))
	m = press(t, m, runes("2"))
	m = press(t, m, runes("?"))
	if !m.HelpVisible {
		t.Fatalf("expected help visible")
	}
	view := m.renderHelpView()
	if !strings.Contains(view, "cycle importance") || !strings.Contains(view, "command palette") {
		t.Fatalf("expected todos and global bindings in help, got:\n%s", view)
	}
}

func TestQuitCancelsContext(t *testing.T) {
	m := New(Options{Now: clock})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message")
	}
	if m.ctx.Err() == nil {
		t.Fatalf("expected root context cancelled")
	}
}
