package storage

import (
	"time"

	"github.com/sandeepkv93/daybook/internal/model"
)

type Task struct {
	UserID      string
	ID          string
	Text        string
	Category    string
	Priority    string
	Date        string
	Time        string
	Reminder    int
	Completed   bool
	CompletedAt *time.Time
	Deleted     bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

type TaskListFilter struct {
	UserID string
	Limit  int
	Offset int
}

func TaskFromModel(userID string, t model.Task) Task {
	return Task{
		UserID:      userID,
		ID:          t.ID,
		Text:        t.Text,
		Category:    string(t.Category),
		Priority:    string(t.Priority),
		Date:        t.Date,
		Time:        t.Time,
		Reminder:    t.Reminder,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Deleted:     t.Deleted,
		DeletedAt:   t.DeletedAt,
		CreatedAt:   t.CreatedAt,
	}
}

func (t Task) Model() model.Task {
	return model.Task{
		ID:          t.ID,
		Text:        t.Text,
		Category:    model.Category(t.Category),
		Priority:    model.Priority(t.Priority),
		Date:        t.Date,
		Time:        t.Time,
		Reminder:    t.Reminder,
		Completed:   t.Completed,
		CompletedAt: t.CompletedAt,
		Deleted:     t.Deleted,
		DeletedAt:   t.DeletedAt,
		CreatedAt:   t.CreatedAt,
	}
}
