package scheduler

import (
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

func TestPlan(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	base := model.Task{Text: "x", Date: "2024-03-10", Time: "10:00", Reminder: 15, CreatedAt: now}

	withID := func(id string, mutate func(*model.Task)) model.Task {
		t := base
		t.ID = id
		if mutate != nil {
			mutate(&t)
		}
		return t
	}
	tasks := []model.Task{
		withID("late", func(t *model.Task) { t.Date = "2024-03-11" }),
		withID("due", nil),
		withID("passed", func(t *model.Task) { t.Time = "09:10" }),
		withID("none", func(t *model.Task) { t.Reminder = 0 }),
		withID("untimed", func(t *model.Task) { t.Time = "" }),
		withID("done", func(t *model.Task) { t.SetCompleted(true, now) }),
	}

	got := Plan(tasks, now)
	if len(got) != 2 || got[0].TaskID != "due" || got[1].TaskID != "late" {
		t.Fatalf("unexpected plan: %+v", got)
	}
	if want := time.Date(2024, 3, 10, 9, 45, 0, 0, time.UTC); !got[0].FireAt.Equal(want) {
		t.Fatalf("fire at = %s, want %s", got[0].FireAt, want)
	}
	if want := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC); !got[0].DueAt.Equal(want) {
		t.Fatalf("due at = %s, want %s", got[0].DueAt, want)
	}
}
