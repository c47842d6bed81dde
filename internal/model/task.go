package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyText        = errors.New("model: task text is required")
	ErrNegativeReminder = errors.New("model: reminder must not be negative")
	ErrInvalidDate      = errors.New("model: invalid date")
	ErrInvalidTime      = errors.New("model: invalid time")
)

// ValidationError reports input rejected before any state change.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryStudy    Category = "study"
	CategoryOther    Category = "other"
)

// KnownCategories lists the categories in display order.
var KnownCategories = []Category{CategoryWork, CategoryPersonal, CategoryHealth, CategoryStudy}

func (c Category) IsKnown() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryHealth, CategoryStudy:
		return true
	default:
		return false
	}
}

// Display maps unrecognized categories to "other". The stored value is left untouched.
func (c Category) Display() Category {
	if c.IsKnown() {
		return c
	}
	return CategoryOther
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var KnownPriorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// Normalize returns medium for anything that is not a known priority.
func (p Priority) Normalize() Priority {
	if p.IsValid() {
		return p
	}
	return PriorityMedium
}

// Rank orders priorities for sorting: high=3, medium=2, everything else=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

type Task struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	Date        string     `json:"date,omitempty"`
	Time        string     `json:"time,omitempty"`
	Reminder    int        `json:"reminder"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func (t Task) HasDate() bool {
	return strings.TrimSpace(t.Date) != ""
}

// Day parses the task date in loc. ok is false for undated or malformed dates.
func (t Task) Day(loc *time.Location) (time.Time, bool) {
	if !t.HasDate() {
		return time.Time{}, false
	}
	d, err := ParseDate(t.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// SetCompleted keeps completedAt present iff completed.
func (t *Task) SetCompleted(done bool, at time.Time) {
	t.Completed = done
	if done {
		ts := at
		t.CompletedAt = &ts
		return
	}
	t.CompletedAt = nil
}

// SetDeleted keeps deletedAt present iff deleted.
func (t *Task) SetDeleted(deleted bool, at time.Time) {
	t.Deleted = deleted
	if deleted {
		ts := at
		t.DeletedAt = &ts
		return
	}
	t.DeletedAt = nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Text) == "" {
		return &ValidationError{Field: "text", Err: ErrEmptyText}
	}
	if t.Reminder < 0 {
		return &ValidationError{Field: "reminder", Err: ErrNegativeReminder}
	}
	if t.HasDate() {
		if _, err := ParseDate(t.Date, time.UTC); err != nil {
			return &ValidationError{Field: "date", Err: err}
		}
	}
	if strings.TrimSpace(t.Time) != "" {
		if _, err := ParseClock(t.Time); err != nil {
			return &ValidationError{Field: "time", Err: err}
		}
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	if t.Completed != (t.CompletedAt != nil) {
		return errors.New("model: completed_at must be set iff task is completed")
	}
	if t.Deleted != (t.DeletedAt != nil) {
		return errors.New("model: deleted_at must be set iff task is deleted")
	}
	return nil
}

// Draft is the user input for a new task.
type Draft struct {
	Text     string
	Category Category
	Priority Priority
	Date     string
	Time     string
	Reminder int
}

// NewTask builds a task from a draft, validating it first. Nothing is returned on
// validation failure.
func NewTask(id string, d Draft, now time.Time) (Task, error) {
	category := Category(strings.ToLower(strings.TrimSpace(string(d.Category))))
	if category == "" {
		category = CategoryPersonal
	}
	t := Task{
		ID:        id,
		Text:      strings.TrimSpace(d.Text),
		Category:  category,
		Priority:  Priority(strings.ToLower(strings.TrimSpace(string(d.Priority)))).Normalize(),
		Date:      strings.TrimSpace(d.Date),
		Time:      strings.TrimSpace(d.Time),
		Reminder:  d.Reminder,
		CreatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}
