package model

import (
	"strings"
	"time"
)

// ReminderAt returns when the reminder for t should fire: the task's date and
// time minus the lead minutes. ok is false when the task has no reminder, no
// date, or no time of day.
func (t Task) ReminderAt(loc *time.Location) (time.Time, bool) {
	if t.Reminder <= 0 || strings.TrimSpace(t.Time) == "" {
		return time.Time{}, false
	}
	day, ok := t.Day(loc)
	if !ok {
		return time.Time{}, false
	}
	clock, err := ParseClock(t.Time)
	if err != nil {
		return time.Time{}, false
	}
	due := day.Add(clock)
	return due.Add(-time.Duration(t.Reminder) * time.Minute), true
}
