package model

import "time"

const (
	upcomingWindow = 7 * 24 * time.Hour
	nextTodosLimit = 4
)

type Stats struct {
	Total    int
	Upcoming int
	High     int
	// Next holds the earliest todos by start time, past ones included.
	Next []Todo
}

func DashboardStats(items []Todo, now time.Time) Stats {
	stats := Stats{Total: len(items)}
	horizon := now.Add(upcomingWindow)
	for _, todo := range items {
		if !todo.Start.IsZero() && !todo.Start.Before(now) && !todo.Start.After(horizon) {
			stats.Upcoming++
		}
		if todo.Importance == ImportanceHigh {
			stats.High++
		}
	}
	next := sortedByStart(items)
	if len(next) > nextTodosLimit {
		next = next[:nextTodosLimit]
	}
	stats.Next = next
	return stats
}
