// Package stats derives read-only metrics from the active and archived sequences.
package stats

import (
	"math"
	"time"

	"github.com/sandeepkv93/daybook/internal/lifecycle"
	"github.com/sandeepkv93/daybook/internal/model"
)

type Summary struct {
	Total          int                    `json:"total"`
	Completed      int                    `json:"completed"`
	CompletionRate int                    `json:"completionRate"`
	InProgress     int                    `json:"inProgress"`
	Streak         int                    `json:"streak"`
	Categories     map[model.Category]int `json:"categories"`
	Weekdays       [7]int                 `json:"weekdays"`
	AveragePerDay  float64                `json:"averagePerDay"`
	Overdue        int                    `json:"overdue"`
	Load           Load                   `json:"load"`
}

func Compute(active, archived []model.Task, now time.Time) Summary {
	s := Summary{
		Total:         len(active) + len(archived),
		Completed:     Completed(archived),
		InProgress:    InProgress(active),
		Streak:        Streak(archived, now),
		Categories:    Categories(active),
		Weekdays:      Weekdays(active, now.Location()),
		AveragePerDay: AveragePerDay(active, archived),
		Overdue:       Overdue(active, now),
	}
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
	s.Load = LoadFor(s.Overdue, s.InProgress)
	return s
}

// Completed counts archived tasks that were completed, as opposed to deleted or expired.
func Completed(archived []model.Task) int {
	n := 0
	for _, t := range archived {
		if t.Completed {
			n++
		}
	}
	return n
}

func CompletionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

func InProgress(active []model.Task) int {
	n := 0
	for _, t := range active {
		if !t.Completed {
			n++
		}
	}
	return n
}

// Streak counts consecutive days ending today with at least one completion in
// the archive. A day without completions today yields 0.
func Streak(archived []model.Task, now time.Time) int {
	days := make(map[string]bool)
	for _, t := range archived {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		days[model.FormatDate(t.CompletedAt.In(now.Location()))] = true
	}
	streak := 0
	day := lifecycle.Today(now)
	for days[model.FormatDate(day)] {
		streak++
		day = model.AddDays(day, -1)
	}
	return streak
}

// Categories tallies active tasks per known category. Unknown categories are skipped.
func Categories(active []model.Task) map[model.Category]int {
	out := make(map[model.Category]int, len(model.KnownCategories))
	for _, c := range model.KnownCategories {
		out[c] = 0
	}
	for _, t := range active {
		if t.Category.IsKnown() {
			out[t.Category]++
		}
	}
	return out
}

// Weekdays buckets dated active tasks Monday=0 through Sunday=6.
func Weekdays(active []model.Task, loc *time.Location) [7]int {
	var out [7]int
	for _, t := range active {
		day, ok := t.Day(loc)
		if !ok {
			continue
		}
		out[(int(day.Weekday())+6)%7]++
	}
	return out
}

// AveragePerDay divides all tasks, dated or not, by the number of distinct dates seen.
func AveragePerDay(active, archived []model.Task) float64 {
	dates := make(map[string]bool)
	for _, seq := range [][]model.Task{active, archived} {
		for _, t := range seq {
			if t.HasDate() {
				dates[t.Date] = true
			}
		}
	}
	if len(dates) == 0 {
		return 0
	}
	return float64(len(active)+len(archived)) / float64(len(dates))
}

func Overdue(active []model.Task, now time.Time) int {
	n := 0
	for _, t := range active {
		if lifecycle.IsOverdue(t, now) {
			n++
		}
	}
	return n
}
