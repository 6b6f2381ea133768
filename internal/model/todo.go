package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/todoai/internal/api"
)

var (
	ErrInvalidImportance = errors.New("model: invalid importance")
	ErrMissingFields     = errors.New("model: item, start time and end time are required")
	ErrEndBeforeStart    = errors.New("model: end time is before start time")
	ErrInvalidTime       = errors.New("model: invalid time")
)

type Importance string

const (
	ImportanceNone   Importance = "none"
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

var Importances = []Importance{ImportanceNone, ImportanceLow, ImportanceMedium, ImportanceHigh}

func (i Importance) IsValid() bool {
	switch i {
	case ImportanceNone, ImportanceLow, ImportanceMedium, ImportanceHigh:
		return true
	default:
		return false
	}
}

func (i Importance) Label() string {
	switch i {
	case ImportanceLow:
		return "Low"
	case ImportanceMedium:
		return "Medium"
	case ImportanceHigh:
		return "High"
	default:
		return "Not important"
	}
}

// ParseImportance treats an empty value as none.
func ParseImportance(raw string) (Importance, error) {
	v := Importance(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" {
		return ImportanceNone, nil
	}
	if !v.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidImportance, raw)
	}
	return v, nil
}

type Tag struct {
	ID    string
	Name  string
	Color string
}

type Todo struct {
	ID          string
	Item        string
	Description string
	Start       time.Time
	End         time.Time
	// Alarm is zero when the todo has no alarm.
	Alarm      time.Time
	Importance Importance
	Tags       []Tag
}

// TodoFromAPI converts a backend todo, rendering its times in loc.
// Unparsable times come back as the zero time.
func TodoFromAPI(in api.TodoModel, loc *time.Location) Todo {
	importance, err := ParseImportance(in.Importance)
	if err != nil {
		importance = ImportanceNone
	}
	todo := Todo{
		ID:          in.ID,
		Item:        in.Item,
		Description: in.Description,
		Start:       parseInstant(in.StartTime, loc),
		End:         parseInstant(in.EndTime, loc),
		Alarm:       parseInstant(in.AlarmTime, loc),
		Importance:  importance,
	}
	for _, tag := range in.Tags {
		todo.Tags = append(todo.Tags, Tag{ID: tag.ID, Name: tag.Name, Color: tag.Color})
	}
	return todo
}

func TodosFromAPI(items []api.TodoModel, loc *time.Location) []Todo {
	out := make([]Todo, 0, len(items))
	for _, item := range items {
		out = append(out, TodoFromAPI(item, loc))
	}
	return out
}

// TodoDraft is the editable form of a todo. Times are datetime-local
// strings ("2006-01-02T15:04") interpreted in the user's location.
type TodoDraft struct {
	ID          string
	Item        string
	Description string
	Start       string
	End         string
	Alarm       string
	Importance  Importance
}

func DraftFromTodo(t Todo) TodoDraft {
	d := TodoDraft{
		ID:          t.ID,
		Item:        t.Item,
		Description: t.Description,
		Importance:  t.Importance,
	}
	if !t.Start.IsZero() {
		d.Start = t.Start.Format(LocalLayout)
	}
	if !t.End.IsZero() {
		d.End = t.End.Format(LocalLayout)
	}
	if !t.Alarm.IsZero() {
		d.Alarm = t.Alarm.Format(LocalLayout)
	}
	return d
}

func (d TodoDraft) Validate(loc *time.Location) error {
	if strings.TrimSpace(d.Item) == "" || strings.TrimSpace(d.Start) == "" || strings.TrimSpace(d.End) == "" {
		return ErrMissingFields
	}
	if d.Importance != "" && !d.Importance.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidImportance, d.Importance)
	}
	start, err := parseLocal(d.Start, loc)
	if err != nil {
		return fmt.Errorf("%w: start %q", ErrInvalidTime, d.Start)
	}
	end, err := parseLocal(d.End, loc)
	if err != nil {
		return fmt.Errorf("%w: end %q", ErrInvalidTime, d.End)
	}
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	if strings.TrimSpace(d.Alarm) != "" {
		if _, err := parseLocal(d.Alarm, loc); err != nil {
			return fmt.Errorf("%w: alarm %q", ErrInvalidTime, d.Alarm)
		}
	}
	return nil
}

// Payload validates the draft and builds the create/update request body.
func (d TodoDraft) Payload(loc *time.Location) (api.TodoCreate, error) {
	if err := d.Validate(loc); err != nil {
		return api.TodoCreate{}, err
	}
	importance := d.Importance
	if importance == "" {
		importance = ImportanceNone
	}
	return api.TodoCreate{
		Item:        strings.TrimSpace(d.Item),
		Description: strings.TrimSpace(d.Description),
		StartTime:   ToISOString(d.Start, loc),
		EndTime:     ToISOString(d.End, loc),
		AlarmTime:   ToISOString(d.Alarm, loc),
		Importance:  string(importance),
	}, nil
}
