// Package remote talks to the task sync service over HTTP JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/model"
)

const (
	DefaultTimeout       = 5 * time.Second
	DefaultHealthTimeout = 2 * time.Second

	tasksPath  = "/api/tasks"
	healthPath = "/health"

	statusSuccess = "success"
)

// SyncError is the single failure shape for every remote call. Callers keep
// their local state when they see it.
type SyncError struct {
	Op  string
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

var (
	ErrBadStatus   = errors.New("remote: unexpected http status")
	ErrNotSuccess  = errors.New("remote: response status is not success")
	ErrMissingBase = errors.New("remote: base url is required")
)

// TaskList is the body of a pull response.
type TaskList struct {
	Status string       `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration
	HealthTimeout time.Duration
}

type Client struct {
	baseURL       string
	client        *http.Client
	healthTimeout time.Duration
	log           logrus.FieldLogger
}

func NewClient(cfg Config, logger logrus.FieldLogger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, ErrMissingBase
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("remote: parse base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout <= 0 {
		healthTimeout = DefaultHealthTimeout
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{
		baseURL:       base,
		client:        &http.Client{Timeout: timeout},
		healthTimeout: healthTimeout,
		log:           logger.WithField("component", "remote"),
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *Client) tasksURL(sessionID string) string {
	q := url.Values{}
	q.Set("user_id", sessionID)
	return c.baseURL + tasksPath + "?" + q.Encode()
}

func (c *Client) doRequest(ctx context.Context, method, target string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

// Pull fetches the authoritative task list for a session.
func (c *Client) Pull(ctx context.Context, sessionID string) ([]model.Task, error) {
	start := time.Now()
	resp, err := c.doRequest(ctx, http.MethodGet, c.tasksURL(sessionID), nil)
	if err != nil {
		return nil, &SyncError{Op: "pull", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &SyncError{Op: "pull", Err: fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)}
	}
	var out TaskList
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &SyncError{Op: "pull", Err: fmt.Errorf("decode body: %w", err)}
	}
	if out.Status != statusSuccess {
		return nil, &SyncError{Op: "pull", Err: fmt.Errorf("%w: %q", ErrNotSuccess, out.Status)}
	}
	for i := range out.Tasks {
		out.Tasks[i].Priority = out.Tasks[i].Priority.Normalize()
	}
	c.log.WithFields(logrus.Fields{
		"tasks":       len(out.Tasks),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("pulled tasks")
	return out.Tasks, nil
}

// Push sends one task. Any non-2xx response counts as not saved.
func (c *Client) Push(ctx context.Context, sessionID string, t model.Task) error {
	resp, err := c.doRequest(ctx, http.MethodPost, c.tasksURL(sessionID), t)
	if err != nil {
		return &SyncError{Op: "push", Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &SyncError{Op: "push", Err: fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)}
	}
	return nil
}

// Health probes the liveness path with the short health timeout.
func (c *Client) Health(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()
	resp, err := c.doRequest(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		c.log.WithError(err).Debug("health probe failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode <= 299
}

// Partition splits tasks by their own completed/deleted flags.
func Partition(tasks []model.Task) (active, archived []model.Task) {
	active = make([]model.Task, 0, len(tasks))
	archived = make([]model.Task, 0)
	for _, t := range tasks {
		if t.Completed || t.Deleted {
			archived = append(archived, t)
			continue
		}
		active = append(active, t)
	}
	return active, archived
}
