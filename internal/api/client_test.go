package api_test

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sandeepkv93/todoai/internal/chat"
	"github.com/sandeepkv93/todoai/internal/mockserver"
)

var fixedNow = time.Date(2026, 10, 14, 9, 15, 0, 0, time.UTC)

func setupClient(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(mockserver.New(mockserver.Options{Now: func() time.Time { return fixedNow }}).Handler())
	t.Cleanup(srv.Close)
	return api.New(api.Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
}

func login(t *testing.T, c *api.Client) {
	t.Helper()
	if _, err := c.Login(context.Background(), api.AccountLogin{Username: mockserver.DemoUsername, Password: mockserver.DemoPassword}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestProfileRequiresLogin(t *testing.T) {
	c := setupClient(t)
	_, err := c.Profile(context.Background())
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 401 || apiErr.Message != "Not authenticated" {
		t.Fatalf("expected 401 api error, got %v", err)
	}

	login(t, c)
	user, err := c.Profile(context.Background())
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if user.Email != mockserver.DemoUsername || !user.IsVerified {
		t.Fatalf("unexpected profile: %+v", user)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	c := setupClient(t)
	_, err := c.Login(context.Background(), api.AccountLogin{Username: mockserver.DemoUsername, Password: "nope"})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Incorrect username or password" {
		t.Fatalf("expected login failure, got %v", err)
	}
	if c.Token() != "" {
		t.Fatalf("expected no token after failed login, got %q", c.Token())
	}
}

func TestTodoAndTagCRUD(t *testing.T) {
	c := setupClient(t)
	login(t, c)
	ctx := context.Background()

	created, err := c.CreateTodo(ctx, api.TodoCreate{
		Item:      "Write release notes",
		StartTime: "2026-10-15T09:00:00.000Z",
		EndTime:   "2026-10-15T10:00:00.000Z",
	})
	if err != nil {
		t.Fatalf("create todo: %v", err)
	}
	if created.ID == "" || created.Importance != "none" {
		t.Fatalf("unexpected created todo: %+v", created)
	}

	list, err := c.ListTodos(ctx, api.TodoQuery{Search: "release"})
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].ID != created.ID {
		t.Fatalf("expected search hit, got %+v", list.Items)
	}

	updated, err := c.UpdateTodo(ctx, created.ID, api.TodoCreate{
		Item:       "Write release notes v2",
		StartTime:  created.StartTime,
		EndTime:    created.EndTime,
		Importance: "high",
	})
	if err != nil || updated.Item != "Write release notes v2" || updated.Importance != "high" {
		t.Fatalf("update todo: %+v err=%v", updated, err)
	}

	_, err = c.CreateTodo(ctx, api.TodoCreate{StartTime: created.StartTime, EndTime: created.EndTime})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "item is required" {
		t.Fatalf("expected validation detail, got %v", err)
	}

	if _, err := c.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("delete todo: %v", err)
	}
	if _, err := c.DeleteTodo(ctx, created.ID); !errors.As(err, &apiErr) || apiErr.Status != 404 {
		t.Fatalf("expected 404 on second delete, got %v", err)
	}

	tag, err := c.CreateTag(ctx, api.TagCreate{Name: "focus"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	tags, err := c.ListTags(ctx)
	if err != nil || len(tags.Items) != 3 {
		t.Fatalf("expected 3 tags, got %+v err=%v", tags.Items, err)
	}
	if _, err := c.DeleteTag(ctx, tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}
}

func TestListTodosTimeWindow(t *testing.T) {
	c := setupClient(t)
	login(t, c)
	list, err := c.ListTodos(context.Background(), api.TodoQuery{
		StartTo:  fixedNow.Add(-24 * time.Hour).Format(time.RFC3339),
		PageSize: 200,
	})
	if err != nil {
		t.Fatalf("list todos: %v", err)
	}
	if len(list.Items) != 1 || list.Items[0].Item != "Submit expense report" {
		t.Fatalf("expected only the past todo, got %+v", list.Items)
	}
}

func TestAgentStreamRoundTrip(t *testing.T) {
	c := setupClient(t)
	login(t, c)
	ctx := context.Background()

	session, err := c.CreateAgentSession(ctx)
	if err != nil || session.SessionID == "" {
		t.Fatalf("create session: %+v err=%v", session, err)
	}

	stream, err := c.AgentCreateStream(ctx, api.AgentTodoRequest{
		Messages:  []api.AgentMessage{{Role: "user", Content: "gym tomorrow"}},
		SessionID: session.SessionID,
		AgentName: "TodoAssistant",
	})
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Close()

	conv := chat.NewConversation(nil)
	conv.Load(session.SessionID, nil)
	send, _, err := conv.Begin(ctx, "gym tomorrow")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	kinds := map[string]int{}
	for {
		ev, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("stream next: %v", err)
		}
		kinds[ev.Kind]++
		conv.Apply(send.Gen, ev)
	}
	conv.End(send.Gen, nil)

	if kinds[chat.KindSessionInitialized] != 1 || kinds[chat.KindCompleted] != 1 || kinds[chat.KindMessageDelta] == 0 {
		t.Fatalf("unexpected event mix: %v", kinds)
	}
	msgs := conv.Messages()
	if msgs[1].Role != chat.RoleAssistant || msgs[1].Content == "" {
		t.Fatalf("expected assistant reply, got %+v", msgs[1])
	}
	if conv.Outcome() != chat.OutcomeCompleted || conv.Err() != "" {
		t.Fatalf("expected completed send, outcome=%s err=%q", conv.Outcome(), conv.Err())
	}

	history, err := c.GetSessionHistory(ctx, session.SessionID, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history.History) != 3 {
		t.Fatalf("expected 3 history items, got %d", len(history.History))
	}
	usage, err := c.GetUsageStats(ctx)
	if err != nil || usage.UsageCount != 1 || usage.RemainingQuota != 99 {
		t.Fatalf("unexpected usage: %+v err=%v", usage, err)
	}
}

func TestAgentStreamUnknownSessionIsReassigned(t *testing.T) {
	c := setupClient(t)
	login(t, c)
	stream, err := c.AgentCreateStream(context.Background(), api.AgentTodoRequest{
		Messages:  []api.AgentMessage{{Role: "user", Content: "read a book"}},
		SessionID: "stale-session",
		AgentName: "TodoAssistant",
	})
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Close()

	ev, err := stream.Next()
	if err != nil || ev.Kind != chat.KindSessionInitialized {
		t.Fatalf("expected session_initialized first, got %+v err=%v", ev, err)
	}
	record, _ := ev.Data.(map[string]any)
	if id, _ := record["session_id"].(string); id == "" || id == "stale-session" {
		t.Fatalf("expected a fresh session id, got %v", record)
	}
}

func TestAgentStreamCancellation(t *testing.T) {
	srv := httptest.NewServer(mockserver.New(mockserver.Options{EventDelay: 50 * time.Millisecond}).Handler())
	t.Cleanup(srv.Close)
	c := api.New(api.Options{BaseURL: srv.URL})
	login(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.AgentCreateStream(ctx, api.AgentTodoRequest{
		Messages:  []api.AgentMessage{{Role: "user", Content: "slow reply"}},
		AgentName: "TodoAssistant",
	})
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Close()

	if _, err := stream.Next(); err != nil {
		t.Fatalf("first event: %v", err)
	}
	cancel()
	for {
		_, err := stream.Next()
		if err == nil {
			continue
		}
		if err == io.EOF {
			t.Fatal("expected cancellation error, got clean EOF")
		}
		if ctx.Err() == nil {
			t.Fatalf("expected cancelled context, stream failed with %v", err)
		}
		return
	}
}
