package model

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/todoai/internal/api"
)

var shanghai = time.FixedZone("CST", 8*3600)

func TestParseImportance(t *testing.T) {
	if got, err := ParseImportance(""); err != nil || got != ImportanceNone {
		t.Fatalf("expected empty to mean none, got %q err=%v", got, err)
	}
	if got, err := ParseImportance(" HIGH "); err != nil || got != ImportanceHigh {
		t.Fatalf("expected high, got %q err=%v", got, err)
	}
	if _, err := ParseImportance("urgent"); !errors.Is(err, ErrInvalidImportance) {
		t.Fatalf("expected ErrInvalidImportance, got %v", err)
	}
	if ImportanceNone.Label() != "Not important" || ImportanceMedium.Label() != "Medium" {
		t.Fatalf("unexpected labels: %q %q", ImportanceNone.Label(), ImportanceMedium.Label())
	}
}

func TestDraftValidate(t *testing.T) {
	draft := TodoDraft{Item: "Dentist", Start: "2026-10-15T09:00", End: "2026-10-15T10:00"}
	if err := draft.Validate(shanghai); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}

	missing := draft
	missing.End = ""
	if err := missing.Validate(shanghai); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	reversed := draft
	reversed.End = "2026-10-15T08:00"
	if err := reversed.Validate(shanghai); !errors.Is(err, ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}

	badAlarm := draft
	badAlarm.Alarm = "tomorrow"
	if err := badAlarm.Validate(shanghai); !errors.Is(err, ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}

	badImportance := draft
	badImportance.Importance = "urgent"
	if err := badImportance.Validate(shanghai); !errors.Is(err, ErrInvalidImportance) {
		t.Fatalf("expected ErrInvalidImportance, got %v", err)
	}
}

func TestDraftPayloadConvertsToUTC(t *testing.T) {
	draft := TodoDraft{Item: " Dentist ", Start: "2026-10-15T09:00", End: "2026-10-15T10:00"}
	payload, err := draft.Payload(shanghai)
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	want := api.TodoCreate{
		Item:       "Dentist",
		StartTime:  "2026-10-15T01:00:00.000Z",
		EndTime:    "2026-10-15T02:00:00.000Z",
		Importance: "none",
	}
	if payload != want {
		t.Fatalf("expected %+v, got %+v", want, payload)
	}
}

func TestTodoFromAPIRoundTripsThroughDraft(t *testing.T) {
	in := api.TodoModel{
		ID:         "todo-1",
		Item:       "Standup",
		StartTime:  "2026-10-15T01:00:00Z",
		EndTime:    "2026-10-15T01:15:00Z",
		AlarmTime:  "2026-10-15T00:55:00Z",
		Importance: "bogus",
		Tags:       []api.TagModel{{ID: "tag-work", Name: "work"}},
	}
	todo := TodoFromAPI(in, shanghai)
	if todo.Importance != ImportanceNone {
		t.Fatalf("expected unknown importance to fall back to none, got %q", todo.Importance)
	}
	if len(todo.Tags) != 1 || todo.Tags[0].Name != "work" {
		t.Fatalf("unexpected tags: %+v", todo.Tags)
	}
	draft := DraftFromTodo(todo)
	if draft.Start != "2026-10-15T09:00" || draft.Alarm != "2026-10-15T08:55" {
		t.Fatalf("unexpected draft times: %+v", draft)
	}

	noAlarm := TodoFromAPI(api.TodoModel{ID: "todo-2", StartTime: "garbage"}, shanghai)
	if !noAlarm.Alarm.IsZero() || !noAlarm.Start.IsZero() {
		t.Fatalf("expected zero times, got %+v", noAlarm)
	}
}
