// Package lifecycle decides whether a task is active or archived.
package lifecycle

import (
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

// Today returns local midnight of now's calendar day.
func Today(now time.Time) time.Time {
	return model.Midnight(now)
}

// IsArchived reports whether t belongs in the archive: completed, deleted, or
// dated strictly before today. Undated and malformed dates never expire.
func IsArchived(t model.Task, now time.Time) bool {
	if t.Completed || t.Deleted {
		return true
	}
	day, ok := t.Day(now.Location())
	if !ok {
		return false
	}
	return day.Before(Today(now))
}

// Classify rebuilds both sequences from the union of active and archived,
// active first. Relative order is preserved inside each result.
func Classify(active, archived []model.Task, now time.Time) ([]model.Task, []model.Task) {
	nextActive := make([]model.Task, 0, len(active))
	nextArchived := make([]model.Task, 0, len(archived))
	place := func(t model.Task) {
		if IsArchived(t, now) {
			nextArchived = append(nextArchived, t)
			return
		}
		nextActive = append(nextActive, t)
	}
	for _, t := range active {
		place(t)
	}
	for _, t := range archived {
		place(t)
	}
	return nextActive, nextArchived
}

// IsOverdue reports a dated, uncompleted task whose date is before today.
func IsOverdue(t model.Task, now time.Time) bool {
	if t.Completed {
		return false
	}
	day, ok := t.Day(now.Location())
	return ok && day.Before(Today(now))
}
