// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// QUEUE
// =============================================================================

// Queue holds conversation-list mutations in enqueue order. The runner
// drains it serially, so the order tasks enter is the order their
// effects land on the backend.
type Queue struct {
	// tasks holds queued and finished tasks in enqueue order.
	tasks []*Task

	// maxHistory caps retained finished tasks (0 = unlimited).
	maxHistory int

	// maxQueued caps waiting tasks (0 = unlimited).
	maxQueued int

	mu     sync.RWMutex
	logger *zap.Logger

	// notifyChan publishes terminal state changes.
	notifyChan chan Notification
}

// Notification reports a task reaching a terminal state.
type Notification struct {
	TaskID         string
	Description    string
	ConversationID string
	Status         Status
	Err            error
	Duration       time.Duration
}

// NewQueue creates a queue keeping at most maxHistory finished tasks
// (0 = unlimited).
func NewQueue(maxHistory int) *Queue {
	return &Queue{
		tasks:      make([]*Task, 0),
		maxHistory: maxHistory,
		logger:     zap.NewNop(),
		notifyChan: make(chan Notification, 100),
	}
}

// WithMaxQueued caps the number of waiting tasks.
func (q *Queue) WithMaxQueued(n int) *Queue {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maxQueued = n
	return q
}

// WithLogger sets the diagnostic logger.
func (q *Queue) WithLogger(l *zap.Logger) *Queue {
	if l != nil {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.logger = l
	}
	return q
}

// =============================================================================
// ENQUEUE AND LOOKUP
// =============================================================================

// Enqueue appends a task. Fails when the waiting cap is reached.
func (q *Queue) Enqueue(task *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.maxQueued > 0 {
		waiting := 0
		for _, t := range q.tasks {
			if t.Status() == StatusQueued {
				waiting++
			}
		}
		if waiting >= q.maxQueued {
			return fmt.Errorf("mutation queue is full: %d waiting (max %d)", waiting, q.maxQueued)
		}
	}

	q.tasks = append(q.tasks, task)
	q.logger.Debug("task enqueued",
		zap.String("id", task.ID),
		zap.String("description", task.Description))
	return nil
}

// Get returns a snapshot of the task with the given id, or nil.
func (q *Queue) Get(id string) *Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, task := range q.tasks {
		if task.ID == id {
			snap := task.snapshot()
			return &snap
		}
	}
	return nil
}

// Cancel cancels the task with the given id. Returns false when the
// task is unknown or already finished.
func (q *Queue) Cancel(id string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, task := range q.tasks {
		if task.ID == id {
			return task.Cancel()
		}
	}
	return false
}

// nextQueued returns the oldest waiting task, nil when none.
func (q *Queue) nextQueued() *Task {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, task := range q.tasks {
		if task.Status() == StatusQueued {
			return task
		}
	}
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

// All returns snapshots of every retained task in enqueue order.
func (q *Queue) All() []Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]Snapshot, len(q.tasks))
	for i, task := range q.tasks {
		result[i] = task.snapshot()
	}
	return result
}

// Pending counts tasks that have not reached an end state.
func (q *Queue) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	pending := 0
	for _, task := range q.tasks {
		if !task.IsTerminal() {
			pending++
		}
	}
	return pending
}

// Count returns the number of retained tasks.
func (q *Queue) Count() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tasks)
}

// Summary returns a one-line account of the queue.
func (q *Queue) Summary() string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	var waiting, running, complete, failed int
	for _, task := range q.tasks {
		switch task.Status() {
		case StatusQueued:
			waiting++
		case StatusRunning:
			running++
		case StatusComplete:
			complete++
		case StatusFailed:
			failed++
		}
	}
	return fmt.Sprintf("Running: %d | Queued: %d | Complete: %d | Failed: %d",
		running, waiting, complete, failed)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the channel on which terminal state changes
// are published.
func (q *Queue) Notifications() <-chan Notification {
	return q.notifyChan
}

// notifyDone publishes a task's terminal state and prunes history.
func (q *Queue) notifyDone(task *Task) {
	snap := task.snapshot()
	n := Notification{
		TaskID:         snap.ID,
		Description:    snap.Description,
		ConversationID: snap.ConversationID,
		Status:         snap.Status,
		Err:            snap.Err,
		Duration:       snap.Duration,
	}

	select {
	case q.notifyChan <- n:
	default:
		q.logger.Warn("notification channel full, dropping",
			zap.String("id", n.TaskID),
			zap.String("status", n.Status.String()))
	}

	q.mu.Lock()
	q.pruneLocked()
	q.mu.Unlock()
}

// =============================================================================
// HISTORY
// =============================================================================

// pruneLocked drops the oldest finished tasks beyond maxHistory. Must
// be called with the lock held.
func (q *Queue) pruneLocked() {
	if q.maxHistory <= 0 {
		return
	}

	finished := 0
	for _, task := range q.tasks {
		if task.IsTerminal() {
			finished++
		}
	}
	if finished <= q.maxHistory {
		return
	}

	toDrop := finished - q.maxHistory
	kept := make([]*Task, 0, len(q.tasks)-toDrop)
	for _, task := range q.tasks {
		if toDrop > 0 && task.IsTerminal() {
			toDrop--
			continue
		}
		kept = append(kept, task)
	}
	q.tasks = kept
}

// Clear drops all finished tasks.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := make([]*Task, 0, len(q.tasks))
	for _, task := range q.tasks {
		if !task.IsTerminal() {
			kept = append(kept, task)
		}
	}
	q.tasks = kept
}
