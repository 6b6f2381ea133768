// Package scheduler fires local alarms for todos. Alarms are kept in a
// min-heap by trigger time and delivered on a buffered channel; a slow
// consumer loses alarms instead of stalling the engine.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidTriggerTime = errors.New("scheduler: invalid trigger time")
	ErrStopped            = errors.New("scheduler: engine stopped")
)

type AlarmEvent struct {
	ID        string
	TodoID    string
	Title     string
	TriggerAt time.Time
}

type alarmHeap []AlarmEvent

func (h alarmHeap) Len() int           { return len(h) }
func (h alarmHeap) Less(i, j int) bool { return h[i].TriggerAt.Before(h[j].TriggerAt) }
func (h alarmHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *alarmHeap) Push(x any) { *h = append(*h, x.(AlarmEvent)) }

func (h *alarmHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	*h = old[:n-1]
	return ev
}

type Engine struct {
	now func() time.Time

	mu      sync.Mutex
	pending alarmHeap
	out     chan AlarmEvent
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		now:    time.Now,
		out:    make(chan AlarmEvent, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// C is closed after Stop returns.
func (e *Engine) C() <-chan AlarmEvent {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	go e.run()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

func (e *Engine) Schedule(ev AlarmEvent) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}
	heap.Push(&e.pending, ev)
	e.poke()
	return nil
}

// Replace swaps the whole pending set, typically after the todo list was
// reloaded. Alarms whose trigger time already passed are skipped so a reload
// never replays old alarms. It returns how many alarms were kept.
func (e *Engine) Replace(events []AlarmEvent) (int, error) {
	now := e.now()
	next := make(alarmHeap, 0, len(events))
	for _, ev := range events {
		if ev.TriggerAt.IsZero() || !ev.TriggerAt.After(now) {
			continue
		}
		next = append(next, ev)
	}
	heap.Init(&next)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return 0, ErrStopped
	}
	e.pending = next
	e.poke()
	return len(next), nil
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) run() {
	defer close(e.doneCh)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	stopTimer(timer)
	for {
		next, ok := e.head()
		if !ok {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.TriggerAt.Sub(e.now())
		if wait < 0 {
			wait = 0
		}
		stopTimer(timer)
		timer.Reset(wait)

		select {
		case <-timer.C:
			for _, ev := range e.popDue(e.now()) {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
		case <-e.stopCh:
			stopTimer(timer)
			return
		}
	}
}

func (e *Engine) poke() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) head() (AlarmEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) == 0 {
		return AlarmEvent{}, false
	}
	return e.pending[0], true
}

func (e *Engine) popDue(now time.Time) []AlarmEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	var due []AlarmEvent
	for len(e.pending) > 0 && !e.pending[0].TriggerAt.After(now) {
		due = append(due, heap.Pop(&e.pending).(AlarmEvent))
	}
	return due
}

func stopTimer(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
