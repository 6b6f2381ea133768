package views

import (
	"fmt"
	"strings"
)

type TodoRow struct {
	ID              string
	Item            string
	When            string
	Alarm           string
	Importance      string
	ImportanceLabel string
	Tags            []string
}

type UsageData struct {
	UsageCount     int
	RemainingQuota int
	ResetDate      string
}

type DashboardData struct {
	Total    int
	Upcoming int
	High     int
	Next     []TodoRow
	Usage    *UsageData
}

func RenderDashboard(s Styles, data DashboardData) string {
	var b strings.Builder
	b.WriteString(PageHeader(s, "Overview", "What needs your attention this week.") + "\n\n")
	b.WriteString(fmt.Sprintf("total: %d   next 7 days: %d   high importance: %d\n", data.Total, data.Upcoming, data.High))
	if data.Usage != nil {
		b.WriteString(s.Subtle.Render(fmt.Sprintf("AI usage this month: %d   remaining: %d   resets: %s", data.Usage.UsageCount, data.Usage.RemainingQuota, data.Usage.ResetDate)) + "\n")
	}
	b.WriteString("\nupcoming:\n")
	if len(data.Next) == 0 {
		b.WriteString(EmptyState(s, "Nothing scheduled", "Add a todo or ask the assistant to plan one.", "press 2 for todos, 4 for the assistant"))
		return b.String()
	}
	for _, row := range data.Next {
		b.WriteString(renderTodoLine(s, row, false) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type TagRow struct {
	ID    string
	Name  string
	Color string
}

type TodosData struct {
	Search        string
	IncludeSeries bool
	Current       []TodoRow
	History       []TodoRow
	HistoryOpen   bool
	SelectedID    string
	Tags          []TagRow
}

func RenderTodos(s Styles, data TodosData) string {
	var b strings.Builder
	b.WriteString(PageHeader(s, "Todos", "Today and the next six days.") + "\n")
	filter := "search: " + orDash(data.Search)
	if data.IncludeSeries {
		filter += "   series: included"
	} else {
		filter += "   series: hidden"
	}
	b.WriteString(s.Subtle.Render(filter) + "\n\n")

	if len(data.Current) == 0 {
		b.WriteString(EmptyState(s, "No todos in this window", "Nothing starts between today and the end of the week.", "/add item | start | end") + "\n")
	}
	for _, row := range data.Current {
		b.WriteString(renderTodoLine(s, row, row.ID == data.SelectedID) + "\n")
	}

	b.WriteString("\n")
	switch {
	case len(data.History) == 0:
		b.WriteString(s.Subtle.Render("no history") + "\n")
	case !data.HistoryOpen:
		b.WriteString(s.Subtle.Render(fmt.Sprintf("%d past todos folded (h to expand)", len(data.History))) + "\n")
	default:
		b.WriteString("history:\n")
		for _, row := range data.History {
			b.WriteString(renderTodoLine(s, row, row.ID == data.SelectedID) + "\n")
		}
	}

	b.WriteString("\ntags: ")
	if len(data.Tags) == 0 {
		b.WriteString(s.Subtle.Render("none"))
	}
	names := make([]string, 0, len(data.Tags))
	for _, tag := range data.Tags {
		names = append(names, fmt.Sprintf("%s (%s)", tag.Name, tag.ID))
	}
	b.WriteString(strings.Join(names, ", "))
	return b.String()
}

type DayData struct {
	Label string
	Items []TodoRow
}

type ScheduleData struct {
	Month string
	Days  []DayData
}

func RenderSchedule(s Styles, data ScheduleData) string {
	var b strings.Builder
	b.WriteString(PageHeader(s, "Schedule", data.Month) + "\n")
	if len(data.Days) == 0 {
		b.WriteString("\n" + EmptyState(s, "An empty month", "No todos start in this month.", "h/l to move between months"))
		return b.String()
	}
	for _, day := range data.Days {
		b.WriteString("\n" + s.Accent.Render(day.Label) + "\n")
		for _, row := range day.Items {
			b.WriteString(renderTodoLine(s, row, false) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

type MessageRow struct {
	Role    string
	Content string
}

type AgentData struct {
	Sessions      []string
	ActiveSession int
	SessionLabel  string
	Usage         *UsageData
	Messages      []MessageRow
	Error         string
	Input         string
	InputDisabled bool
	Sending       bool
	Spinner       string
}

// RenderAgentHeader is drawn above the transcript viewport so the error
// banner stays visible while the transcript scrolls.
func RenderAgentHeader(s Styles, data AgentData) string {
	var b strings.Builder
	b.WriteString(PageHeader(s, "AI Assistant", "Create and adjust todos by chatting.") + "\n")
	line := "session: " + data.SessionLabel
	if data.Usage != nil {
		line += fmt.Sprintf("   used: %d   remaining: %d", data.Usage.UsageCount, data.Usage.RemainingQuota)
	}
	b.WriteString(s.Subtle.Render(line))
	if data.Error != "" {
		b.WriteString("\n" + s.Error.Render(data.Error))
	}
	return b.String()
}

func RenderAgentTranscript(s Styles, data AgentData) string {
	var b strings.Builder
	if len(data.Messages) == 0 {
		b.WriteString(EmptyState(s, "Start a conversation", "For example: plan my study time tomorrow morning.", "") + "\n")
	}
	for _, msg := range data.Messages {
		b.WriteString(RoleBadge(s, msg.Role) + "\n")
		b.WriteString(msg.Content + "\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderAgentComposer(s Styles, data AgentData) string {
	var b strings.Builder
	if data.InputDisabled {
		b.WriteString(s.Subtle.Render("no active session (n creates one)") + "\n")
	} else {
		b.WriteString(data.Input + "\n")
	}
	if data.Sending {
		b.WriteString(data.Spinner + " " + s.Subtle.Render("streaming reply (esc to stop)"))
	} else if data.Usage != nil {
		b.WriteString(s.Subtle.Render("quota resets " + data.Usage.ResetDate))
	}
	return strings.TrimRight(b.String(), "\n")
}

func RenderSessionList(s Styles, data AgentData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("sessions (%d):\n", len(data.Sessions)))
	if len(data.Sessions) == 0 {
		b.WriteString(s.Subtle.Render("no sessions yet"))
		return b.String()
	}
	for i, session := range data.Sessions {
		if i == data.ActiveSession {
			b.WriteString(s.Cursor.Render("> "+session) + "\n")
		} else {
			b.WriteString("  " + session + "\n")
		}
	}
	b.WriteString(s.Subtle.Render("\n[/] switch  n new"))
	return b.String()
}

type SettingsData struct {
	Email                string
	Name                 string
	Verified             bool
	BaseURL              string
	ThemePreference      string
	ThemeResolved        string
	DesktopNotifications bool
	AlarmsPending        int
	AlarmsDropped        uint64
}

func RenderSettings(s Styles, data SettingsData) string {
	verified := "not verified"
	if data.Verified {
		verified = "verified"
	}
	name := data.Name
	if name == "" {
		name = "not set"
	}
	desktop := "off"
	if data.DesktopNotifications {
		desktop = "on"
	}
	return strings.Join([]string{
		PageHeader(s, "Settings", "Account, connection and local preferences."),
		"",
		s.Accent.Render("account"),
		"email: " + data.Email,
		"name: " + name,
		"status: " + verified,
		"",
		s.Accent.Render("connection"),
		"api: " + data.BaseURL,
		s.Subtle.Render("set TODOAI_API_BASE_URL or --api to switch backends"),
		"",
		s.Accent.Render("appearance"),
		fmt.Sprintf("theme: %s (showing %s)", data.ThemePreference, data.ThemeResolved),
		s.Subtle.Render("l light  d dark  s system  t toggle"),
		"",
		s.Accent.Render("alarms"),
		fmt.Sprintf("pending: %d   dropped: %d   desktop: %s", data.AlarmsPending, data.AlarmsDropped, desktop),
		"",
		s.Subtle.Render("L log out"),
	}, "\n")
}

type FieldRow struct {
	Label   string
	View    string
	Focused bool
}

type TodoFormData struct {
	Editing bool
	Fields  []FieldRow
	Error   string
}

func RenderTodoForm(s Styles, data TodoFormData) string {
	var b strings.Builder
	title := "New todo"
	if data.Editing {
		title = "Edit todo"
	}
	b.WriteString(PageHeader(s, title, "Times are local, e.g. 2026-10-14T09:30.") + "\n\n")
	for _, f := range data.Fields {
		label := f.Label + ":"
		if f.Focused {
			label = s.Cursor.Render(label)
		}
		b.WriteString(label + " " + f.View + "\n")
	}
	if data.Error != "" {
		b.WriteString("\n" + s.Error.Render(data.Error) + "\n")
	}
	b.WriteString("\n" + s.Subtle.Render("tab next field  enter save  esc cancel"))
	return b.String()
}

type AuthData struct {
	Register bool
	Fields   []FieldRow
	Notice   string
	Error    string
	Busy     bool
	Spinner  string
}

func RenderAuth(s Styles, data AuthData) string {
	var b strings.Builder
	b.WriteString(PageHeader(s, "Todo AI", "Plan your time with todos and an AI assistant.") + "\n\n")
	if data.Register {
		b.WriteString(s.Tab.Render("login") + s.TabOn.Render("register") + "\n\n")
	} else {
		b.WriteString(s.TabOn.Render("login") + s.Tab.Render("register") + "\n\n")
	}
	for _, f := range data.Fields {
		label := f.Label + ":"
		if f.Focused {
			label = s.Cursor.Render(label)
		}
		b.WriteString(label + " " + f.View + "\n")
	}
	b.WriteString("\n")
	if data.Busy {
		b.WriteString(data.Spinner + " working...\n")
	}
	if data.Notice != "" {
		b.WriteString(s.Status.Render(data.Notice) + "\n")
	}
	if data.Error != "" {
		b.WriteString(s.Error.Render(data.Error) + "\n")
	}
	hint := "tab next field  enter submit  ctrl+r switch to register  ctrl+v resend verification"
	if data.Register {
		hint = "tab next field  enter create account  ctrl+r back to login"
	}
	b.WriteString(s.Subtle.Render(hint))
	return b.String()
}

func renderTodoLine(s Styles, row TodoRow, selected bool) string {
	cursor := "  "
	if selected {
		cursor = s.Cursor.Render("> ")
	}
	line := fmt.Sprintf("%s%s  %s  %s", cursor, row.When, row.Item, ImportanceBadge(s, row.Importance, "["+row.ImportanceLabel+"]"))
	if len(row.Tags) > 0 {
		line += "  #" + strings.Join(row.Tags, " #")
	}
	if row.Alarm != "" {
		line += s.Subtle.Render("  alarm " + row.Alarm)
	}
	return line + s.Subtle.Render("  "+row.ID)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}
