package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

// Slot is a single durable key-value cell store. Write replaces the whole value.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
}

// TaskRepository keeps per-user task lists for the sync service.
type TaskRepository interface {
	UpsertTask(ctx context.Context, in Task) error
	GetTask(ctx context.Context, userID, id string) (Task, error)
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error)
}
