package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/remote"
	"github.com/sandeepkv93/daybook/internal/storage"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupServer(t *testing.T) (*Server, *storage.SQLiteRepository) {
	t.Helper()
	repo, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "server.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, Options{Now: func() time.Time { return fixedNow }}), repo
}

func do(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t)
	rec := do(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id")
	}
}

func TestUpsertAndList(t *testing.T) {
	s, _ := setupServer(t)
	task := model.Task{ID: "1", Text: "write", Category: model.CategoryWork, Priority: "URGENT", CreatedAt: fixedNow}
	rec := do(t, s, http.MethodPost, "/api/tasks?user_id=u1", task)
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/tasks?user_id=u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var out listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Status != statusSuccess || len(out.Tasks) != 1 {
		t.Fatalf("unexpected list: %+v", out)
	}
	if out.Tasks[0].Priority != model.PriorityMedium {
		t.Fatalf("unknown priority should normalize to medium, got %q", out.Tasks[0].Priority)
	}

	rec = do(t, s, http.MethodGet, "/api/tasks?user_id=u2", nil)
	out = listResponse{}
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	if len(out.Tasks) != 0 || out.Tasks == nil {
		t.Fatalf("other user must see an empty, non-null list: %s", rec.Body.String())
	}
}

func TestRejectsBadRequests(t *testing.T) {
	s, _ := setupServer(t)
	if rec := do(t, s, http.MethodGet, "/api/tasks", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("missing user_id: expected 400, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodPost, "/api/tasks?user_id=u1", model.Task{ID: "1", Text: " ", CreatedAt: fixedNow}); rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank text: expected 422, got %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/tasks?user_id=u1", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body: expected 400, got %d", rec.Code)
	}
}

func TestDeleteTask(t *testing.T) {
	s, repo := setupServer(t)
	ctx := context.Background()
	if err := repo.UpsertTask(ctx, storage.Task{UserID: "u1", ID: "9", Text: "x", Category: "work", Priority: "low", CreatedAt: fixedNow}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if rec := do(t, s, http.MethodDelete, "/api/tasks/9?user_id=u1", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/tasks/9?user_id=u1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)
	do(t, s, http.MethodGet, "/health", nil)
	do(t, s, http.MethodPost, "/api/tasks?user_id=u1", model.Task{ID: "1", Text: "a", CreatedAt: fixedNow})

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`daybook_http_requests_total{method="GET",route="/health",status="200"} 1`,
		`daybook_tasks_written_total{op="upsert"} 1`,
		"daybook_http_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestRemoteClientRoundTrip(t *testing.T) {
	s, _ := setupServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	client, err := remote.NewClient(remote.Config{BaseURL: ts.URL}, nil)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	defer client.Close()
	ctx := context.Background()

	if !client.Health(ctx) {
		t.Fatal("expected healthy server")
	}
	done := model.Task{ID: "2", Text: "done", Category: model.CategoryStudy, Priority: model.PriorityLow, CreatedAt: fixedNow}
	done.SetCompleted(true, fixedNow)
	for _, task := range []model.Task{
		{ID: "1", Text: "open", Category: model.CategoryWork, Priority: model.PriorityHigh, Date: "2024-03-11", CreatedAt: fixedNow},
		done,
	} {
		if err := client.Push(ctx, "session-1", task); err != nil {
			t.Fatalf("push %s: %v", task.ID, err)
		}
	}

	pulled, err := client.Pull(ctx, "session-1")
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	active, archived := remote.Partition(pulled)
	if len(active) != 1 || len(archived) != 1 || archived[0].ID != "2" {
		t.Fatalf("unexpected partition: active=%+v archived=%+v", active, archived)
	}
	if archived[0].CompletedAt == nil || !archived[0].CompletedAt.Equal(fixedNow) {
		t.Fatalf("completion time lost in transit: %+v", archived[0])
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s, _ := setupServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}
