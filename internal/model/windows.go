package model

import (
	"sort"
	"time"
)

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// CurrentWindow is the todo list's "current" range: today 00:00 through the
// end of the sixth day after it.
func CurrentWindow(now time.Time) (time.Time, time.Time) {
	start := StartOfDay(now)
	return start, EndOfDay(start.AddDate(0, 0, 6))
}

// HistoryCutoff is the last instant before today; todos starting at or
// before it belong to history.
func HistoryCutoff(now time.Time) time.Time {
	return StartOfDay(now).Add(-time.Millisecond)
}

// MonthRange returns [first of month, first of next month).
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

type DayGroup struct {
	Day   time.Time
	Todos []Todo
}

// GroupByDay buckets todos by the calendar day of their start time, oldest
// day first. Todos without a start time are left out.
func GroupByDay(items []Todo) []DayGroup {
	sorted := sortedByStart(items)
	var groups []DayGroup
	for _, todo := range sorted {
		day := StartOfDay(todo.Start)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Todos = append(groups[n-1].Todos, todo)
			continue
		}
		groups = append(groups, DayGroup{Day: day, Todos: []Todo{todo}})
	}
	return groups
}

func sortedByStart(items []Todo) []Todo {
	out := make([]Todo, 0, len(items))
	for _, item := range items {
		if !item.Start.IsZero() {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
