package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/todoai/internal/chat"
	"github.com/sirupsen/logrus"
)

const (
	DefaultBaseURL      = "http://127.0.0.1:8089"
	DefaultHistoryLimit = 20
	defaultTimeout      = 30 * time.Second
)

type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport for both plain and streaming calls.
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	log     *logrus.Entry

	mu    sync.RWMutex
	token string
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func New(opts Options) *Client {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	c := &Client{
		baseURL: base,
		http:    opts.HTTPClient,
		stream:  opts.HTTPClient,
		log:     logger.WithField("component", "api"),
	}
	if c.http == nil {
		c.http = NewHTTPClient(timeout)
		// Streams stay open for the whole agent reply; only the context ends them.
		c.stream = NewHTTPClient(0)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Login(ctx context.Context, in AccountLogin) (OAuth2Login, error) {
	var out OAuth2Login
	if err := c.do(ctx, http.MethodPost, "/api/accounts/login", nil, in, &out); err != nil {
		return OAuth2Login{}, err
	}
	c.SetToken(out.AccessToken)
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/accounts/logout", nil, nil, nil)
	c.SetToken("")
	return err
}

func (c *Client) Profile(ctx context.Context) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, "/api/accounts/profile", nil, nil, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, in AccountRegister) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/api/accounts/register", nil, in, &out)
	return out, err
}

func (c *Client) ResendVerification(ctx context.Context, email string) (ResendVerificationResponse, error) {
	var out ResendVerificationResponse
	err := c.do(ctx, http.MethodPost, "/api/accounts/resend-verification", url.Values{"email": {email}}, nil, &out)
	return out, err
}

func (c *Client) ListTodos(ctx context.Context, q TodoQuery) (ListTodosResponse, error) {
	var out ListTodosResponse
	err := c.do(ctx, http.MethodGet, "/api/todos", q.values(), nil, &out)
	return out, err
}

func (c *Client) CreateTodo(ctx context.Context, in TodoCreate) (TodoModel, error) {
	var out TodoModel
	err := c.do(ctx, http.MethodPost, "/api/todos", nil, in, &out)
	return out, err
}

func (c *Client) UpdateTodo(ctx context.Context, id string, in TodoCreate) (TodoModel, error) {
	var out TodoModel
	err := c.do(ctx, http.MethodPut, "/api/todos/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteTodo(ctx context.Context, id string) (DeleteResponse, error) {
	var out DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/api/todos/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) ListTags(ctx context.Context) (ListTagsResponse, error) {
	var out ListTagsResponse
	err := c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &out)
	return out, err
}

func (c *Client) CreateTag(ctx context.Context, in TagCreate) (TagModel, error) {
	var out TagModel
	err := c.do(ctx, http.MethodPost, "/api/tags", nil, in, &out)
	return out, err
}

func (c *Client) DeleteTag(ctx context.Context, id string) (DeleteResponse, error) {
	var out DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/api/tags/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) AgentCreate(ctx context.Context, in AgentTodoRequest) (AgentCreateTodoResponse, error) {
	var out AgentCreateTodoResponse
	err := c.do(ctx, http.MethodPost, "/api/todos/agent-create", nil, in, &out)
	return out, err
}

// AgentCreateStream opens the streaming chat endpoint. Cancelling ctx aborts
// the stream; the caller owns the returned stream and must Close it.
func (c *Client) AgentCreateStream(ctx context.Context, in AgentTodoRequest) (*EventStream, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/todos/agent-create/stream", nil, in)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	c.log.WithFields(logrus.Fields{"session_id": in.SessionID, "agent": in.AgentName}).Debug("opening agent stream")
	resp, err := c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("agent stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, newError(resp.StatusCode, body)
	}
	return newEventStream(resp.Body), nil
}

func (c *Client) ListAgentSessions(ctx context.Context) (ListAgentSessionsResponse, error) {
	var out ListAgentSessionsResponse
	err := c.do(ctx, http.MethodGet, "/api/todos/agent/sessions", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAgentSession(ctx context.Context) (CreateNewSessionResponse, error) {
	var out CreateNewSessionResponse
	err := c.do(ctx, http.MethodPost, "/api/todos/agent/sessions/new", nil, nil, &out)
	return out, err
}

func (c *Client) GetSessionHistory(ctx context.Context, sessionID string, limit int) (SessionHistoryResponse, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var out SessionHistoryResponse
	path := "/api/todos/agent/sessions/" + url.PathEscape(sessionID) + "/history"
	err := c.do(ctx, http.MethodGet, path, url.Values{"limit": {strconv.Itoa(limit)}}, nil, &out)
	return out, err
}

func (c *Client) GetUsageStats(ctx context.Context) (chat.Usage, error) {
	var out chat.Usage
	err := c.do(ctx, http.MethodGet, "/api/todos/agent/usage", nil, nil, &out)
	return out, err
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Warn("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.log.WithFields(logrus.Fields{
		"method":  method,
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).String(),
	}).Debug("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (q TodoQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("searchString", q.Search)
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.IncludeSeriesItems != nil {
		v.Set("include_series_items", strconv.FormatBool(*q.IncludeSeriesItems))
	}
	if q.StartFrom != "" {
		v.Set("start_time_from", q.StartFrom)
	}
	if q.StartTo != "" {
		v.Set("start_time_to", q.StartTo)
	}
	if q.EndFrom != "" {
		v.Set("end_time_from", q.EndFrom)
	}
	if q.EndTo != "" {
		v.Set("end_time_to", q.EndTo)
	}
	return v
}
