package scheduler

import (
	"fmt"
	"testing"
	"time"
)

func TestEngineEmitsInFireOrder(t *testing.T) {
	engine := NewEngine(8)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	if err := engine.Schedule(Reminder{TaskID: "later", FireAt: now.Add(80 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule later: %v", err)
	}
	if err := engine.Schedule(Reminder{TaskID: "sooner", FireAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("schedule sooner: %v", err)
	}

	first := waitReminder(t, engine.C(), time.Second)
	second := waitReminder(t, engine.C(), time.Second)
	if first.TaskID != "sooner" || second.TaskID != "later" {
		t.Fatalf("unexpected order: first=%s second=%s", first.TaskID, second.TaskID)
	}
}

func TestEngineDropsWhenConsumerIsSlow(t *testing.T) {
	engine := NewEngine(1)
	engine.Start()
	defer engine.Stop()

	at := time.Now().Add(20 * time.Millisecond)
	for i := 0; i < 25; i++ {
		if err := engine.Schedule(Reminder{TaskID: fmt.Sprintf("t%d", i), FireAt: at}); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	time.Sleep(120 * time.Millisecond)
	if engine.Dropped() == 0 {
		t.Fatalf("expected dropped reminders > 0, got %d", engine.Dropped())
	}
}

func TestEngineReplace(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	_ = engine.Schedule(Reminder{TaskID: "stale", FireAt: now.Add(30 * time.Millisecond)})
	if err := engine.Replace([]Reminder{{TaskID: "fresh", FireAt: now.Add(40 * time.Millisecond)}}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if engine.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", engine.Pending())
	}
	got := waitReminder(t, engine.C(), time.Second)
	if got.TaskID != "fresh" {
		t.Fatalf("unexpected reminder %q", got.TaskID)
	}
}

func TestScheduleMovesExistingTaskReminder(t *testing.T) {
	engine := NewEngine(4)
	engine.Start()
	defer engine.Stop()

	now := time.Now()
	_ = engine.Schedule(Reminder{TaskID: "a", Text: "old", FireAt: now.Add(time.Hour)})
	_ = engine.Schedule(Reminder{TaskID: "b", FireAt: now.Add(2 * time.Hour)})
	if err := engine.Schedule(Reminder{TaskID: "a", Text: "new", FireAt: now.Add(20 * time.Millisecond)}); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if engine.Pending() != 2 {
		t.Fatalf("pending = %d, want 2", engine.Pending())
	}
	got := waitReminder(t, engine.C(), time.Second)
	if got.TaskID != "a" || got.Text != "new" {
		t.Fatalf("unexpected reminder %+v", got)
	}
	if engine.Pending() != 1 {
		t.Fatalf("pending after delivery = %d, want 1", engine.Pending())
	}
}

func TestScheduleValidation(t *testing.T) {
	engine := NewEngine(1)
	if err := engine.Schedule(Reminder{TaskID: "bad"}); err != ErrInvalidFireTime {
		t.Fatalf("expected ErrInvalidFireTime, got %v", err)
	}
	engine.Start()
	engine.Stop()
	if err := engine.Schedule(Reminder{TaskID: "late", FireAt: time.Now()}); err != ErrStopped {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func waitReminder(t *testing.T, ch <-chan Reminder, timeout time.Duration) Reminder {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(timeout):
		t.Fatal("timed out waiting for reminder")
		return Reminder{}
	}
}
