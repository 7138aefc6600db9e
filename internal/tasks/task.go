// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// Status is the lifecycle state of a queued mutation.
type Status string

const (
	// StatusQueued means the task is waiting its turn.
	StatusQueued Status = "Queued"

	// StatusRunning means the task is executing.
	StatusRunning Status = "Running"

	// StatusComplete means the task finished successfully.
	StatusComplete Status = "Complete"

	// StatusFailed means the task returned an error.
	StatusFailed Status = "Failed"

	// StatusCanceled means the task was canceled before or during
	// execution.
	StatusCanceled Status = "Canceled"
)

// String returns the status name.
func (s Status) String() string {
	return string(s)
}

// terminal reports whether the status is an end state.
func (s Status) terminal() bool {
	return s == StatusComplete || s == StatusFailed || s == StatusCanceled
}

// =============================================================================
// TASK
// =============================================================================

// Task is one conversation-list mutation: a delete, a rename, or the
// reload that follows one. Tasks execute strictly in enqueue order, so
// a reload enqueued after a rename always observes the rename.
type Task struct {
	// ID uniquely identifies the task.
	ID string

	// Description is the human-readable label shown in diagnostics.
	Description string

	// ConversationID is the conversation the mutation touches, empty
	// for whole-list operations such as reloads.
	ConversationID string

	// Run performs the mutation. The context carries the runner's
	// per-task deadline and is canceled by Cancel.
	Run func(ctx context.Context) error

	status     Status
	enqueuedAt time.Time
	startedAt  time.Time
	endedAt    time.Time
	err        error
	cancel     context.CancelFunc

	mu sync.RWMutex
}

// Snapshot is a read-only copy of a task's observable state.
type Snapshot struct {
	ID             string
	Description    string
	ConversationID string
	Status         Status
	Err            error
	Duration       time.Duration
}

// NewTask creates a queued task. conversationID may be empty for
// operations on the list as a whole.
func NewTask(description, conversationID string, run func(ctx context.Context) error) *Task {
	return &Task{
		ID:             uuid.New().String(),
		Description:    description,
		ConversationID: conversationID,
		Run:            run,
		status:         StatusQueued,
		enqueuedAt:     time.Now(),
	}
}

// Status returns the current lifecycle state.
func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Err returns the failure cause, nil unless the task failed.
func (t *Task) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Duration returns how long the task ran, or has been running.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.startedAt.IsZero() {
		return 0
	}
	if t.endedAt.IsZero() {
		return time.Since(t.startedAt)
	}
	return t.endedAt.Sub(t.startedAt)
}

// IsTerminal reports whether the task reached an end state.
func (t *Task) IsTerminal() bool {
	return t.Status().terminal()
}

// Cancel stops the task: a queued task is marked canceled in place, a
// running task has its context canceled. Returns false when the task
// already reached an end state.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.terminal() {
		return false
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.status = StatusCanceled
	t.endedAt = time.Now()
	return true
}

// snapshot copies the observable state. Must be called without the
// lock held.
func (t *Task) snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var d time.Duration
	if !t.startedAt.IsZero() {
		if t.endedAt.IsZero() {
			d = time.Since(t.startedAt)
		} else {
			d = t.endedAt.Sub(t.startedAt)
		}
	}
	return Snapshot{
		ID:             t.ID,
		Description:    t.Description,
		ConversationID: t.ConversationID,
		Status:         t.status,
		Err:            t.err,
		Duration:       d,
	}
}

// markStarted transitions the task to running.
func (t *Task) markStarted(cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = StatusRunning
	t.startedAt = time.Now()
	t.cancel = cancel
}

// markComplete transitions the task to its end state based on err.
func (t *Task) markComplete(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Cancel may have won the race while Run was returning.
	if t.status.terminal() {
		return
	}
	t.endedAt = time.Now()
	switch {
	case err == nil:
		t.status = StatusComplete
	case errors.Is(err, context.Canceled):
		t.status = StatusCanceled
		t.err = err
	default:
		t.status = StatusFailed
		t.err = err
	}
}
