// Package gate decides whether a run should proceed at all.
package gate

import (
	"time"

	"mealbot/internal/history"
)

// ShouldRun reports whether this invocation should generate and send:
// today must be in the active weekday set and must not already have
// been sent. Pure; evaluated once per process.
func ShouldRun(st history.State, now time.Time, active map[time.Weekday]bool) bool {
	if !active[now.Weekday()] {
		return false
	}
	return st.LastSent != history.DateKey(now)
}
