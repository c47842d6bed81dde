package lifecycle

import (
	"testing"
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

var now = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func task(id, date string) model.Task {
	return model.Task{ID: id, Text: id, Priority: model.PriorityMedium, Date: date, CreatedAt: now}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestClassifyRules(t *testing.T) {
	completed := task("done", "")
	completed.SetCompleted(true, now)
	deleted := task("gone", "2024-03-20")
	deleted.SetDeleted(true, now)

	active := []model.Task{
		task("undated", ""),
		task("today", "2024-03-10"),
		task("yesterday", "2024-03-09"),
		completed,
		task("future", "2024-03-11"),
	}
	archived := []model.Task{deleted, task("bad-date", "someday")}

	gotActive, gotArchived := Classify(active, archived, now)
	wantActive := []string{"undated", "today", "future", "bad-date"}
	wantArchived := []string{"yesterday", "done", "gone"}
	if got := ids(gotActive); !equal(got, wantActive) {
		t.Fatalf("active = %v, want %v", got, wantActive)
	}
	if got := ids(gotArchived); !equal(got, wantArchived) {
		t.Fatalf("archived = %v, want %v", got, wantArchived)
	}
}

func TestClassifyPartitionIsExclusive(t *testing.T) {
	var all []model.Task
	for i, d := range []string{"", "2024-03-01", "2024-03-10", "2024-03-30", "2023-12-31"} {
		tk := task(string(rune('a'+i)), d)
		if i%2 == 0 {
			tk.SetCompleted(true, now)
		}
		all = append(all, tk)
	}
	active, archived := Classify(all[:2], all[2:], now)
	if len(active)+len(archived) != len(all) {
		t.Fatalf("partition lost tasks: %d + %d != %d", len(active), len(archived), len(all))
	}
	seen := make(map[string]int)
	for _, tk := range append(append([]model.Task{}, active...), archived...) {
		seen[tk.ID]++
	}
	for _, tk := range all {
		if seen[tk.ID] != 1 {
			t.Fatalf("task %s appears %d times", tk.ID, seen[tk.ID])
		}
	}
}

func TestYesterdayUncompletedIsArchived(t *testing.T) {
	if !IsArchived(task("y", "2024-03-09"), now) {
		t.Fatal("expected yesterday's task to be archived")
	}
	if IsArchived(task("t", "2024-03-10"), now) {
		t.Fatal("today's task must stay active")
	}
}

func TestRestoreNeedsReclassification(t *testing.T) {
	past := task("past", "2024-03-01")
	past.SetCompleted(true, now)
	undated := task("undated", "")
	undated.SetDeleted(true, now)

	_, archived := Classify(nil, []model.Task{past, undated}, now)
	for i := range archived {
		archived[i].SetCompleted(false, now)
		archived[i].SetDeleted(false, now)
	}
	active, archived := Classify(nil, archived, now)
	if got := ids(active); !equal(got, []string{"undated"}) {
		t.Fatalf("active after restore = %v", got)
	}
	if got := ids(archived); !equal(got, []string{"past"}) {
		t.Fatalf("archived after restore = %v", got)
	}
}

func TestIsOverdue(t *testing.T) {
	if !IsOverdue(task("y", "2024-03-09"), now) {
		t.Fatal("expected overdue")
	}
	done := task("d", "2024-03-09")
	done.SetCompleted(true, now)
	if IsOverdue(done, now) || IsOverdue(task("u", ""), now) {
		t.Fatal("completed or undated tasks are never overdue")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
