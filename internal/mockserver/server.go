// Package mockserver is an in-memory stand-in for the todo backend. It
// serves the account, todo, tag and agent endpoints, including the SSE chat
// stream, so the client can run without the real service.
package mockserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/sandeepkv93/todoai/internal/api"
	"github.com/sirupsen/logrus"
)

const (
	DemoUsername = "demo@todo.ai"
	DemoPassword = "demo"
	defaultQuota = 100
)

type Options struct {
	// EventDelay paces the scripted agent stream.
	EventDelay time.Duration
	Quota      int
	Now        func() time.Time
	Logger     *logrus.Logger
}

type account struct {
	user     api.User
	password string
}

type Server struct {
	opts Options
	log  *logrus.Entry

	mu       sync.Mutex
	accounts map[string]*account
	tokens   map[string]string
	todos    []api.TodoModel
	tags     []api.TagModel
	sessions []string
	history  map[string][]any
	usage    int
}

type ctxKey struct{}

func New(opts Options) *Server {
	if opts.Quota <= 0 {
		opts.Quota = defaultQuota
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	s := &Server{
		opts:     opts,
		log:      logger.WithField("component", "mockserver"),
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		history:  make(map[string][]any),
	}
	s.accounts[DemoUsername] = &account{
		user:     api.User{ID: "user-demo", Email: DemoUsername, Name: "Demo User", IsVerified: true},
		password: DemoPassword,
	}
	s.seed()
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/accounts/login", s.handleLogin)
		r.Post("/accounts/register", s.handleRegister)
		r.Post("/accounts/resend-verification", s.handleResendVerification)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/accounts/logout", s.handleLogout)
			r.Get("/accounts/profile", s.handleProfile)

			r.Get("/todos", s.handleListTodos)
			r.Post("/todos", s.handleCreateTodo)
			r.Put("/todos/{todoID}", s.handleUpdateTodo)
			r.Delete("/todos/{todoID}", s.handleDeleteTodo)

			r.Get("/tags", s.handleListTags)
			r.Post("/tags", s.handleCreateTag)
			r.Delete("/tags/{tagID}", s.handleDeleteTag)

			r.Post("/todos/agent-create", s.handleAgentCreate)
			r.Post("/todos/agent-create/stream", s.handleAgentStream)
			r.Get("/todos/agent/sessions", s.handleListSessions)
			r.Post("/todos/agent/sessions/new", s.handleNewSession)
			r.Get("/todos/agent/sessions/{sessionID}/history", s.handleHistory)
			r.Get("/todos/agent/usage", s.handleUsage)
		})
	})
	return r
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		s.mu.Lock()
		email, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			respondDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, email)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in api.AccountLogin
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(in.Username))]
	if !ok || acct.password != in.Password {
		respondDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if !acct.user.IsVerified {
		respondDetail(w, http.StatusForbidden, "Email not verified")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = acct.user.Email
	respondJSON(w, http.StatusOK, api.OAuth2Login{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in api.AccountRegister
	if !decode(w, r, &in) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		respondDetailList(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		respondDetail(w, http.StatusConflict, "Email already registered")
		return
	}
	user := api.User{ID: "user-" + uuid.NewString()[:8], Email: email, Name: in.Name}
	s.accounts[email] = &account{user: user, password: in.Password}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) handleResendVerification(w http.ResponseWriter, r *http.Request) {
	email := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("email")))
	s.mu.Lock()
	acct, ok := s.accounts[email]
	if ok {
		// The mock has no mailbox; resending verifies the account directly.
		acct.user.IsVerified = true
	}
	s.mu.Unlock()
	if !ok {
		respondDetail(w, http.StatusNotFound, "Account not found")
		return
	}
	respondJSON(w, http.StatusOK, api.ResendVerificationResponse{Message: "verification email sent"})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.DeleteResponse{Message: "logged out"})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	email, _ := r.Context().Value(ctxKey{}).(string)
	s.mu.Lock()
	acct := s.accounts[email]
	s.mu.Unlock()
	if acct == nil {
		respondDetail(w, http.StatusNotFound, "Account not found")
		return
	}
	respondJSON(w, http.StatusOK, acct.user)
}

func decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		respondDetailList(w, http.StatusUnprocessableEntity, "invalid request body")
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondDetail(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]any{"detail": detail})
}

func respondDetailList(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]any{"detail": []string{detail}})
}
