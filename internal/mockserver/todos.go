package mockserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sandeepkv93/todoai/internal/api"
)

func (s *Server) seed() {
	now := s.opts.Now().UTC().Truncate(time.Hour)
	s.tags = []api.TagModel{
		{ID: "tag-work", Name: "work", Color: "#4f46e5"},
		{ID: "tag-home", Name: "home", Color: "#16a34a"},
	}
	s.todos = []api.TodoModel{
		{
			ID: "todo-1", Item: "Design review", Description: "Walk through the new onboarding flow.",
			StartTime: now.Add(2 * time.Hour).Format(time.RFC3339), EndTime: now.Add(3 * time.Hour).Format(time.RFC3339),
			AlarmTime: now.Add(90 * time.Minute).Format(time.RFC3339), Importance: "high",
			Tags: []api.TagModel{s.tags[0]},
		},
		{
			ID: "todo-2", Item: "Grocery run",
			StartTime: now.Add(26 * time.Hour).Format(time.RFC3339), EndTime: now.Add(27 * time.Hour).Format(time.RFC3339),
			Importance: "low", Tags: []api.TagModel{s.tags[1]},
		},
		{
			ID: "todo-3", Item: "Submit expense report",
			StartTime: now.Add(-48 * time.Hour).Format(time.RFC3339), EndTime: now.Add(-47 * time.Hour).Format(time.RFC3339),
			Importance: "medium",
		},
	}
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("searchString")))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))

	s.mu.Lock()
	items := make([]api.TodoModel, 0, len(s.todos))
	for _, todo := range s.todos {
		if search != "" && !strings.Contains(strings.ToLower(todo.Item), search) {
			continue
		}
		if !inRange(todo.StartTime, q.Get("start_time_from"), q.Get("start_time_to")) {
			continue
		}
		if !inRange(todo.EndTime, q.Get("end_time_from"), q.Get("end_time_to")) {
			continue
		}
		items = append(items, todo)
	}
	s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool { return items[i].StartTime < items[j].StartTime })
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	respondJSON(w, http.StatusOK, api.ListTodosResponse{Items: items})
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in api.TodoCreate
	if !decode(w, r, &in) {
		return
	}
	if msg := validateTodo(in); msg != "" {
		respondDetailList(w, http.StatusUnprocessableEntity, msg)
		return
	}
	s.mu.Lock()
	todo := s.insertTodoLocked(in)
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "todoID")
	var in api.TodoCreate
	if !decode(w, r, &in) {
		return
	}
	if msg := validateTodo(in); msg != "" {
		respondDetailList(w, http.StatusUnprocessableEntity, msg)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		tags := s.todos[i].Tags
		s.todos[i] = fromCreate(id, in)
		s.todos[i].Tags = tags
		respondJSON(w, http.StatusOK, s.todos[i])
		return
	}
	respondDetail(w, http.StatusNotFound, "Todo not found")
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "todoID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			respondJSON(w, http.StatusOK, api.DeleteResponse{Message: "deleted"})
			return
		}
	}
	respondDetail(w, http.StatusNotFound, "Todo not found")
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]api.TagModel(nil), s.tags...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, api.ListTagsResponse{Items: items})
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in api.TagCreate
	if !decode(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		respondDetailList(w, http.StatusUnprocessableEntity, "tag name is required")
		return
	}
	tag := api.TagModel{ID: "tag-" + uuid.NewString()[:8], Name: strings.TrimSpace(in.Name), Color: in.Color}
	s.mu.Lock()
	s.tags = append(s.tags, tag)
	s.mu.Unlock()
	respondJSON(w, http.StatusCreated, tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "tagID")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tags {
		if s.tags[i].ID == id {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			respondJSON(w, http.StatusOK, api.DeleteResponse{Message: "deleted"})
			return
		}
	}
	respondDetail(w, http.StatusNotFound, "Tag not found")
}

func (s *Server) insertTodoLocked(in api.TodoCreate) api.TodoModel {
	todo := fromCreate("todo-"+uuid.NewString()[:8], in)
	s.todos = append(s.todos, todo)
	return todo
}

func fromCreate(id string, in api.TodoCreate) api.TodoModel {
	importance := in.Importance
	if importance == "" {
		importance = "none"
	}
	return api.TodoModel{
		ID:          id,
		Item:        in.Item,
		Description: in.Description,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		AlarmTime:   in.AlarmTime,
		Importance:  importance,
	}
}

func validateTodo(in api.TodoCreate) string {
	if strings.TrimSpace(in.Item) == "" {
		return "item is required"
	}
	start, err := time.Parse(time.RFC3339, in.StartTime)
	if err != nil {
		return "starttime must be an RFC3339 timestamp"
	}
	end, err := time.Parse(time.RFC3339, in.EndTime)
	if err != nil {
		return "endtime must be an RFC3339 timestamp"
	}
	if end.Before(start) {
		return "endtime must not be before starttime"
	}
	return ""
}

func inRange(value, from, to string) bool {
	if from == "" && to == "" {
		return true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return false
	}
	if from != "" {
		if f, err := time.Parse(time.RFC3339, from); err == nil && t.Before(f) {
			return false
		}
	}
	if to != "" {
		if e, err := time.Parse(time.RFC3339, to); err == nil && t.After(e) {
			return false
		}
	}
	return true
}
