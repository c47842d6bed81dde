// Package filter narrows the active task set for display and orders it.
package filter

import (
	"sort"
	"time"

	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/model"
)

// StatusPolicy decides how several selected statuses combine.
type StatusPolicy string

const (
	// MatchAny keeps a task that satisfies at least one selected status.
	MatchAny StatusPolicy = "any"
	// MatchAll keeps a task only if it satisfies every selected status, which is
	// what applying one filter pass per status amounts to.
	MatchAll StatusPolicy = "all"
)

func (p StatusPolicy) IsValid() bool {
	return p == MatchAny || p == MatchAll
}

type options struct {
	policy         StatusPolicy
	weekLowerBound bool
}

type Option func(*options)

func WithStatusPolicy(p StatusPolicy) Option {
	return func(o *options) {
		if p.IsValid() {
			o.policy = p
		}
	}
}

// WithWeekLowerBound stops the week preset from including tasks dated before today.
func WithWeekLowerBound(enabled bool) Option {
	return func(o *options) { o.weekLowerBound = enabled }
}

// Visible applies facets then the quick filter, and returns the result sorted
// for rendering. The input slice is not modified.
func Visible(active []model.Task, state model.FilterState, now time.Time, opts ...Option) []model.Task {
	cfg := options{policy: MatchAny}
	for _, opt := range opts {
		opt(&cfg)
	}

	categories := make(map[model.Category]bool, len(state.Categories))
	for _, c := range state.Categories {
		categories[c] = true
	}
	priorities := make(map[model.Priority]bool, len(state.Priorities))
	for _, p := range state.Priorities {
		priorities[p] = true
	}

	out := make([]model.Task, 0, len(active))
	for _, t := range active {
		if !categories[t.Category] || !priorities[t.Priority] {
			continue
		}
		if !matchStatuses(t, state.Statuses, cfg.policy, now) {
			continue
		}
		if !MatchQuick(t, state.QuickFilter, now, cfg.weekLowerBound) {
			continue
		}
		out = append(out, t)
	}
	Sort(out)
	return out
}

// MatchStatus evaluates one status predicate.
func MatchStatus(t model.Task, s model.Status, now time.Time) bool {
	switch s {
	case model.StatusActive:
		return !t.Completed
	case model.StatusCompleted:
		return t.Completed
	case model.StatusOverdue:
		return lifecycle.IsOverdue(t, now)
	default:
		return false
	}
}

func matchStatuses(t model.Task, statuses []model.Status, policy StatusPolicy, now time.Time) bool {
	if len(statuses) == 0 {
		return false
	}
	if policy == MatchAll {
		for _, s := range statuses {
			if !MatchStatus(t, s, now) {
				return false
			}
		}
		return true
	}
	for _, s := range statuses {
		if MatchStatus(t, s, now) {
			return true
		}
	}
	return false
}

// MatchQuick applies the date preset. Unknown presets keep everything.
func MatchQuick(t model.Task, q model.QuickFilter, now time.Time, weekLowerBound bool) bool {
	switch q {
	case model.QuickToday, model.QuickTomorrow, model.QuickWeek, model.QuickOverdue:
	default:
		return true
	}
	day, ok := t.Day(now.Location())
	if !ok {
		return false
	}
	today := lifecycle.Today(now)
	switch q {
	case model.QuickToday:
		return day.Equal(today)
	case model.QuickTomorrow:
		return day.Equal(model.AddDays(today, 1))
	case model.QuickWeek:
		if weekLowerBound && day.Before(today) {
			return false
		}
		return !day.After(model.AddDays(today, 7))
	default:
		return day.Before(today) && !t.Completed
	}
}

// farFuture stands in for undated tasks so they sort last.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Sort orders incomplete before completed, then by ascending date with undated
// last, then by descending priority rank. Ties keep their input order.
func Sort(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		da, db := sortDate(a), sortDate(b)
		if !da.Equal(db) {
			return da.Before(db)
		}
		return a.Priority.Rank() > b.Priority.Rank()
	})
}

func sortDate(t model.Task) time.Time {
	day, ok := t.Day(time.UTC)
	if !ok {
		return farFuture
	}
	return day
}
