package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
	"github.com/sandeepkv93/todoai/internal/logger"
	"github.com/sandeepkv93/todoai/internal/model"
	"github.com/sandeepkv93/todoai/internal/prefs"
	"github.com/sandeepkv93/todoai/internal/scheduler"
	"github.com/sirupsen/logrus"
)

type Page string

const (
	PageAuth      Page = "Auth"
	PageDashboard Page = "Dashboard"
	PageTodos     Page = "Todos"
	PageSchedule  Page = "Schedule"
	PageAgent     Page = "Agent"
	PageSettings  Page = "Settings"
)

var navPages = []Page{PageDashboard, PageTodos, PageSchedule, PageAgent, PageSettings}

// Backend is the part of the api client the UI needs.
type Backend interface {
	BaseURL() string
	Login(context.Context, api.AccountLogin) (api.OAuth2Login, error)
	Logout(context.Context) error
	Profile(context.Context) (api.User, error)
	Register(context.Context, api.AccountRegister) (api.User, error)
	ResendVerification(context.Context, string) (api.ResendVerificationResponse, error)
	ListTodos(context.Context, api.TodoQuery) (api.ListTodosResponse, error)
	CreateTodo(context.Context, api.TodoCreate) (api.TodoModel, error)
	UpdateTodo(context.Context, string, api.TodoCreate) (api.TodoModel, error)
	DeleteTodo(context.Context, string) (api.DeleteResponse, error)
	ListTags(context.Context) (api.ListTagsResponse, error)
	CreateTag(context.Context, api.TagCreate) (api.TagModel, error)
	DeleteTag(context.Context, string) (api.DeleteResponse, error)
	ListAgentSessions(context.Context) (api.ListAgentSessionsResponse, error)
	CreateAgentSession(context.Context) (api.CreateNewSessionResponse, error)
	GetSessionHistory(context.Context, string, int) (api.SessionHistoryResponse, error)
	GetUsageStats(context.Context) (chat.Usage, error)
	AgentCreateStream(context.Context, api.AgentTodoRequest) (*api.EventStream, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Dashboard string
	Todos     string
	Schedule  string
	Agent     string
	Settings  string
	Help      string
	Quit      string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Title string
	Body  string
	Level string
	At    time.Time
}

type authState struct {
	register bool
	focus    int
	// inputs: email, password, name (register only)
	inputs []textinput.Model
	notice string
	err    string
	busy   bool
}

type dashboardState struct {
	loading bool
	stats   model.Stats
	usage   *chat.Usage
}

type todosState struct {
	loading       bool
	current       []model.Todo
	history       []model.Todo
	tags          []model.Tag
	search        string
	includeSeries bool
	historyOpen   bool
	cursor        int
	form          todoFormState
}

type scheduleState struct {
	loading bool
	month   time.Time
	items   []model.Todo
}

type agentState struct {
	loaded     bool
	loading    bool
	composing  bool
	input      textinput.Model
	transcript viewport.Model
	// follow keeps the transcript scrolled to the newest message.
	follow bool
}

type Options struct {
	Backend              Backend
	Scheduler            *scheduler.Engine
	Notifier             DesktopNotifier
	DesktopNotifications bool
	Prefs                *prefs.Store
	AgentName            string
	HistoryLimit         int
	Location             *time.Location
	// SystemDark answers the "system" theme preference.
	SystemDark bool
	Now        func() time.Time
	Logger     *logrus.Logger
	Context    context.Context
}

type Model struct {
	Page          Page
	Keys          GlobalKeyMap
	Status        StatusBar
	Notifications []Notification
	HelpVisible   bool
	Palette       CommandPaletteState
	Quitting      bool
	LastError     error
	User          *api.User
	Booting       bool
	Scheduler     *scheduler.Engine
	Conversation  *chat.Conversation

	backend        Backend
	notifier       DesktopNotifier
	desktopEnabled bool
	prefsStore     *prefs.Store
	prefs          prefs.Preferences
	systemDark     bool
	agentName      string
	historyLimit   int
	loc            *time.Location
	now            func() time.Time
	log            *logrus.Entry
	ctx            context.Context
	cancel         context.CancelFunc

	auth      authState
	dashboard dashboardState
	todos     todosState
	schedule  scheduleState
	agent     agentState

	commandInput textinput.Model
	spinner      spinner.Model
	helpModel    help.Model
	width        int
	height       int
}

type SwitchPageMsg struct {
	Page Page
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type AlarmDueMsg struct {
	Event scheduler.AlarmEvent
}

func New(opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.AgentName == "" {
		opts.AgentName = "TodoAssistant"
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = api.DefaultHistoryLimit
	}
	if opts.Notifier == nil {
		opts.Notifier = NoopDesktopNotifier{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	m := Model{
		Page:    PageAuth,
		Booting: opts.Backend != nil,
		Keys: GlobalKeyMap{
			Dashboard: "1",
			Todos:     "2",
			Schedule:  "3",
			Agent:     "4",
			Settings:  "5",
			Help:      "?",
			Quit:      "q",
		},
		Scheduler:      opts.Scheduler,
		Conversation:   newConversation(),
		backend:        opts.Backend,
		notifier:       opts.Notifier,
		desktopEnabled: opts.DesktopNotifications,
		prefsStore:     opts.Prefs,
		prefs:          prefs.Defaults(),
		systemDark:     opts.SystemDark,
		agentName:      opts.AgentName,
		historyLimit:   opts.HistoryLimit,
		loc:            opts.Location,
		now:            opts.Now,
		log:            opts.Logger.WithField("component", "ui"),
		ctx:            ctx,
		cancel:         cancel,
		todos:          todosState{includeSeries: true},
		schedule:       scheduleState{month: opts.Now().In(opts.Location)},
		width:          120,
		height:         40,
	}
	if m.prefsStore != nil {
		loaded, err := m.prefsStore.Load()
		if err != nil {
			m.log.WithError(err).Warn("preferences unreadable, using defaults")
		}
		m.prefs = loaded
	}
	m.initComponents()
	return m
}

func (m *Model) initComponents() {
	m.auth.inputs = make([]textinput.Model, 3)
	for i, placeholder := range []string{"email", "password", "display name (optional)"} {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 256
		in.Prompt = ""
		m.auth.inputs[i] = in
	}
	m.auth.inputs[1].EchoMode = textinput.EchoPassword
	m.auth.inputs[1].EchoCharacter = '*'
	m.auth.inputs[0].Focus()

	m.agent.input = textinput.New()
	m.agent.input.Placeholder = "Describe what you need..."
	m.agent.input.CharLimit = 2000
	m.agent.input.Prompt = "> "
	m.agent.transcript = viewport.New(80, 20)
	m.agent.follow = true

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.Placeholder = "command"
	m.commandInput.CharLimit = 256

	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// Theme is the stored preference; ResolvedTheme is what is rendered.
func (m Model) Theme() prefs.Theme { return m.prefs.Theme }

func (m Model) ResolvedTheme() prefs.Theme { return m.prefs.Theme.Resolve(m.systemDark) }

// Shutdown stops the active stream and any outstanding request.
func (m Model) Shutdown() {
	m.Conversation.Cancel()
	m.cancel()
}

func newConversation() *chat.Conversation {
	return chat.NewConversation(nil)
}
