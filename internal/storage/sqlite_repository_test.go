package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "daybook-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func TestSlotReadWrite(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.Read(ctx, "state"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.Write(ctx, "state", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := repo.Write(ctx, "state", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := repo.Read(ctx, "state")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != `{"v":2}` {
		t.Fatalf("unexpected value: %s", got)
	}
}

func TestTaskUpsertAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")
	completed := parseRFC3339(t, "2026-02-09T15:00:00Z")

	first := Task{
		UserID:    "u1",
		ID:        "1",
		Text:      "Write schema",
		Category:  "work",
		Priority:  "high",
		Date:      "2026-02-10",
		Time:      "09:00",
		Reminder:  15,
		CreatedAt: created,
	}
	second := Task{
		UserID:    "u1",
		ID:        "2",
		Text:      "Gym",
		Category:  "health",
		Priority:  "low",
		CreatedAt: created.Add(time.Hour),
	}
	other := Task{UserID: "u2", ID: "1", Text: "Other user", Category: "work", Priority: "medium", CreatedAt: created}
	for _, in := range []Task{first, second, other} {
		if err := repo.UpsertTask(ctx, in); err != nil {
			t.Fatalf("upsert %s/%s: %v", in.UserID, in.ID, err)
		}
	}

	first.Completed = true
	first.CompletedAt = &completed
	if err := repo.UpsertTask(ctx, first); err != nil {
		t.Fatalf("update via upsert: %v", err)
	}

	got, err := repo.GetTask(ctx, "u1", "1")
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if !got.Completed || got.CompletedAt == nil || !got.CompletedAt.Equal(completed) {
		t.Fatalf("unexpected completion after upsert: %#v", got)
	}
	if got.Date != "2026-02-10" || got.Time != "09:00" || got.Reminder != 15 {
		t.Fatalf("unexpected schedule fields: %#v", got)
	}

	list, err := repo.ListTasks(ctx, TaskListFilter{UserID: "u1"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "2" || list[1].ID != "1" {
		t.Fatalf("expected newest first for u1, got %#v", list)
	}

	page, err := repo.ListTasks(ctx, TaskListFilter{UserID: "u1", Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(page) != 1 || page[0].ID != "1" {
		t.Fatalf("unexpected page: %#v", page)
	}

	if err := repo.DeleteTask(ctx, "u1", "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetTask(ctx, "u1", "1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
	if err := repo.DeleteTask(ctx, "u1", "1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got: %v", err)
	}
	if _, err := repo.GetTask(ctx, "u2", "1"); err != nil {
		t.Fatalf("other user's task must survive: %v", err)
	}
}

func TestTaskModelConversion(t *testing.T) {
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")
	row := Task{UserID: "u", ID: "7", Text: "x", Category: "study", Priority: "low", CreatedAt: created}
	back := TaskFromModel("u", row.Model())
	if back != row {
		t.Fatalf("conversion mismatch: %#v vs %#v", back, row)
	}
}
