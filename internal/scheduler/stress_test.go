package scheduler

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestEngineConcurrentScheduleAndReplace(t *testing.T) {
	engine := NewEngine(4096)
	engine.Start()
	defer engine.Stop()

	const workers = 8
	const perWorker = 200
	total := workers * perWorker

	now := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ev := AlarmEvent{
					ID:        fmt.Sprintf("w%d-%d", w, i),
					TodoID:    fmt.Sprintf("todo-%d", i),
					TriggerAt: now.Add(time.Duration((w+i)%50+10) * time.Millisecond),
				}
				if err := engine.Schedule(ev); err != nil {
					t.Errorf("schedule failed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()

	deadline := time.After(5 * time.Second)
	received := 0
	for received < total {
		select {
		case <-deadline:
			t.Fatalf("timeout waiting alarms: received=%d total=%d dropped=%d", received, total, engine.Dropped())
		case <-engine.C():
			received++
		}
	}
	if engine.Dropped() != 0 {
		t.Fatalf("expected zero drops with active consumer, got=%d", engine.Dropped())
	}
}
