// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// RUNNER
// =============================================================================

// DefaultTaskTimeout bounds a single mutation, covering the HTTP call
// it wraps plus scheduling slack.
const DefaultTaskTimeout = 2 * time.Minute

// Runner drains a queue one task at a time. Serial execution is the
// contract: the effects of queued mutations land on the backend in
// enqueue order, with no interleaving.
type Runner struct {
	queue       *Queue
	taskTimeout time.Duration
	logger      *zap.Logger

	wg      sync.WaitGroup
	stop    chan struct{}
	stopped atomic.Bool
}

// NewRunner creates a runner for the given queue with the default
// per-task timeout.
func NewRunner(queue *Queue) *Runner {
	return &Runner{
		queue:       queue,
		taskTimeout: DefaultTaskTimeout,
		logger:      zap.NewNop(),
		stop:        make(chan struct{}),
	}
}

// WithTaskTimeout sets the per-task deadline (0 = none).
func (r *Runner) WithTaskTimeout(d time.Duration) *Runner {
	r.taskTimeout = d
	return r
}

// WithLogger sets the diagnostic logger.
func (r *Runner) WithLogger(l *zap.Logger) *Runner {
	if l != nil {
		r.logger = l
	}
	return r
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start begins draining the queue.
func (r *Runner) Start() {
	r.wg.Add(1)
	go r.processLoop()
}

// Stop halts the runner after the task in flight, if any, finishes.
func (r *Runner) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		close(r.stop)
	}
	r.wg.Wait()
}

// =============================================================================
// PROCESSING
// =============================================================================

// processLoop drains queued tasks in order, polling for new work.
func (r *Runner) processLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			for {
				if r.stopped.Load() {
					return
				}
				task := r.queue.nextQueued()
				if task == nil {
					break
				}
				// Inline execution keeps ordering strict: the next
				// task cannot start until this one finishes.
				r.execute(task)
			}
		}
	}
}

// execute runs one task to a terminal state and publishes the outcome.
func (r *Runner) execute(task *Task) {
	var ctx context.Context
	var cancel context.CancelFunc
	if r.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), r.taskTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	task.markStarted(cancel)

	var err error
	if task.Run == nil {
		err = errors.New("task has no work function")
	} else {
		err = task.Run(ctx)
	}
	task.markComplete(err)

	snap := task.snapshot()
	if snap.Status == StatusFailed {
		r.logger.Warn("task failed",
			zap.String("id", snap.ID),
			zap.String("description", snap.Description),
			zap.Duration("duration", snap.Duration),
			zap.Error(snap.Err))
	} else {
		r.logger.Debug("task finished",
			zap.String("id", snap.ID),
			zap.String("description", snap.Description),
			zap.String("status", snap.Status.String()),
			zap.Duration("duration", snap.Duration))
	}

	r.queue.notifyDone(task)
}
