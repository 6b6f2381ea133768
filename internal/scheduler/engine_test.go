package scheduler

import (
	"errors"
	"testing"
	"time"
)

func TestEngineFiresInTriggerOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(AlarmEvent{ID: "later", TodoID: "todo-2", TriggerAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(AlarmEvent{ID: "sooner", TodoID: "todo-1", TriggerAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitAlarm(t, engine.C(), time.Second)
	second := waitAlarm(t, engine.C(), time.Second)
	if first.ID != "sooner" || second.ID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.ID, second.ID)
	}
}

func TestEngineDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(AlarmEvent{ID: "alarm", TriggerAt: at}); err != nil {
			t.Fatalf("schedule alarm: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped alarms > 0, got %d", engine.Dropped())
	}
}

func TestScheduleValidatesTriggerTime(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(AlarmEvent{ID: "bad"}); !errors.Is(err, ErrInvalidTriggerTime) {
		t.Fatalf("expected ErrInvalidTriggerTime, got %v", err)
	}
}

func TestReplaceSkipsPastAlarmsAndSwapsPendingSet(t *testing.T) {
	engine := NewEngine(4)
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return now }

	if err := engine.Schedule(AlarmEvent{ID: "stale", TriggerAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	kept, err := engine.Replace([]AlarmEvent{
		{ID: "past", TriggerAt: now.Add(-time.Minute)},
		{ID: "exact", TriggerAt: now},
		{ID: "unset"},
		{ID: "soon", TriggerAt: now.Add(10 * time.Minute)},
		{ID: "later", TriggerAt: now.Add(2 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if kept != 2 || engine.Pending() != 2 {
		t.Fatalf("expected 2 pending alarms, got kept=%d pending=%d", kept, engine.Pending())
	}
	if head, _ := engine.head(); head.ID != "soon" {
		t.Fatalf("expected soonest alarm at head, got %s", head.ID)
	}
}

func TestReplaceDeliversNewAlarms(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	if _, err := engine.Replace([]AlarmEvent{{ID: "a1", TodoID: "todo-1", Title: "Design review", TriggerAt: time.Now().Add(15 * time.Millisecond)}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	ev := waitAlarm(t, engine.C(), time.Second)
	if ev.TodoID != "todo-1" || ev.Title != "Design review" {
		t.Fatalf("unexpected alarm: %+v", ev)
	}
}

func TestStoppedEngineRejectsWork(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	engine.Stop()

	if err := engine.Schedule(AlarmEvent{ID: "x", TriggerAt: time.Now().Add(time.Minute)}); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if _, err := engine.Replace(nil); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped from Replace, got %v", err)
	}
	if _, ok := <-engine.C(); ok {
		t.Fatal("expected closed alarm channel after Stop")
	}
}

func waitAlarm(t *testing.T, ch <-chan AlarmEvent, timeout time.Duration) AlarmEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for alarm")
		return AlarmEvent{}
	}
}
