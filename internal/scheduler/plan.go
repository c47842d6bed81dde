package scheduler

import (
	"sort"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

// Plan lists reminders still ahead of now for uncompleted, undeleted tasks
// that carry a date, a time and a positive lead. Result is ordered by FireAt.
func Plan(tasks []model.Task, now time.Time) []Reminder {
	out := make([]Reminder, 0)
	for _, t := range tasks {
		if t.Completed || t.Deleted {
			continue
		}
		fireAt, ok := t.ReminderAt(now.Location())
		if !ok || !fireAt.After(now) {
			continue
		}
		out = append(out, Reminder{
			TaskID: t.ID,
			Text:   t.Text,
			DueAt:  fireAt.Add(time.Duration(t.Reminder) * time.Minute),
			FireAt: fireAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FireAt.Before(out[j].FireAt)
	})
	return out
}
