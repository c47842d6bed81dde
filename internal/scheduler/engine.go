// Package scheduler fires task reminders at their lead time.
package scheduler

import (
	"container/heap"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrInvalidFireTime = errors.New("scheduler: invalid fire time")
	ErrStopped         = errors.New("scheduler: engine stopped")
)

// Reminder is emitted once its FireAt passes.
type Reminder struct {
	TaskID string
	Text   string
	DueAt  time.Time
	FireAt time.Time
}

// queue is a min-heap on FireAt that also tracks each task's slot, so a task
// never has more than one pending reminder.
type queue struct {
	items []Reminder
	index map[string]int
}

func newQueue(rs []Reminder) *queue {
	q := &queue{items: make([]Reminder, 0, len(rs)), index: make(map[string]int, len(rs))}
	for _, r := range rs {
		q.upsert(r)
	}
	return q
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.FireAt.Equal(b.FireAt) {
		return a.TaskID < b.TaskID
	}
	return a.FireAt.Before(b.FireAt)
}

func (q *queue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.index[q.items[i].TaskID] = i
	q.index[q.items[j].TaskID] = j
}

func (q *queue) Push(x any) {
	r := x.(Reminder)
	q.index[r.TaskID] = len(q.items)
	q.items = append(q.items, r)
}

func (q *queue) Pop() any {
	last := len(q.items) - 1
	r := q.items[last]
	q.items = q.items[:last]
	delete(q.index, r.TaskID)
	return r
}

func (q *queue) upsert(r Reminder) {
	if i, ok := q.index[r.TaskID]; ok {
		q.items[i] = r
		heap.Fix(q, i)
		return
	}
	heap.Push(q, r)
}

func (q *queue) head() (Reminder, bool) {
	if len(q.items) == 0 {
		return Reminder{}, false
	}
	return q.items[0], true
}

// Engine delivers reminders on C once their FireAt passes. Scheduling a task
// that is already pending moves its reminder instead of adding a second one.
// Delivery never blocks: a full buffer drops the reminder and counts it.
type Engine struct {
	mu       sync.Mutex
	pending  *queue
	out      chan Reminder
	wake     chan struct{}
	quit     chan struct{}
	finished chan struct{}
	running  bool
	closed   bool
	dropped  atomic.Uint64
}

func NewEngine(bufferSize int) *Engine {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Engine{
		pending:  newQueue(nil),
		out:      make(chan Reminder, bufferSize),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// C yields due reminders. It is closed by Stop.
func (e *Engine) C() <-chan Reminder { return e.out }

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running || e.closed {
		return
	}
	e.running = true
	go e.run()
}

// Stop ends the loop and closes C. Calling it again is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running || e.closed {
		e.closed = true
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.quit)
	e.mu.Unlock()
	<-e.finished
}

func (e *Engine) Schedule(r Reminder) error {
	if r.FireAt.IsZero() {
		return ErrInvalidFireTime
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStopped
	}
	e.pending.upsert(r)
	e.poke()
	return nil
}

// Replace swaps the whole pending set, used after the task list changes.
func (e *Engine) Replace(rs []Reminder) error {
	for _, r := range rs {
		if r.FireAt.IsZero() {
			return ErrInvalidFireTime
		}
	}
	next := newQueue(rs)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrStopped
	}
	e.pending = next
	e.poke()
	return nil
}

func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending.Len()
}

func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

func (e *Engine) run() {
	defer close(e.finished)
	defer close(e.out)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		e.arm(timer)
		select {
		case <-e.quit:
			return
		case <-e.wake:
		case now := <-timer.C:
			e.deliver(e.takeDue(now))
		}
	}
}

// arm points the timer at the earliest pending reminder, or parks it when
// nothing is pending.
func (e *Engine) arm(timer *time.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	e.mu.Lock()
	next, ok := e.pending.head()
	e.mu.Unlock()
	if !ok {
		return
	}
	timer.Reset(max(time.Until(next.FireAt), 0))
}

func (e *Engine) deliver(due []Reminder) {
	for _, r := range due {
		select {
		case e.out <- r:
		default:
			e.dropped.Add(1)
		}
	}
}

func (e *Engine) poke() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) takeDue(now time.Time) []Reminder {
	e.mu.Lock()
	defer e.mu.Unlock()
	var due []Reminder
	for {
		next, ok := e.pending.head()
		if !ok || next.FireAt.After(now) {
			return due
		}
		due = append(due, heap.Pop(e.pending).(Reminder))
	}
}
