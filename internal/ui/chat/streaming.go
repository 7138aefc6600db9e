// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
)

// =============================================================================
// STREAMER
// =============================================================================

// Streamer drives one streaming reply at a time. It runs the agent
// call in its own goroutine and feeds chunks back into the Bubble Tea
// loop as messages, so the Update function stays single-threaded.
type Streamer struct {
	mu     sync.Mutex
	client agent.Backend
	send   func(tea.Msg)
	cancel context.CancelFunc
	active bool
	logger *zap.Logger
}

// NewStreamer creates a streamer for the given client. SetProgram
// must be called before the first Start.
func NewStreamer(client agent.Backend) *Streamer {
	return &Streamer{
		client: client,
		logger: zap.NewNop(),
	}
}

// WithLogger sets the diagnostic logger.
func (s *Streamer) WithLogger(l *zap.Logger) *Streamer {
	if l != nil {
		s.mu.Lock()
		s.logger = l
		s.mu.Unlock()
	}
	return s
}

// SetProgram wires the program the streamer reports into.
func (s *Streamer) SetProgram(p *tea.Program) {
	s.mu.Lock()
	s.send = p.Send
	s.mu.Unlock()
}

// setSendFunc replaces the message sink, for tests.
func (s *Streamer) setSendFunc(fn func(tea.Msg)) {
	s.mu.Lock()
	s.send = fn
	s.mu.Unlock()
}

// Active reports whether a stream is in flight.
func (s *Streamer) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Start begins streaming a reply. Returns false when a stream is
// already in flight; only one runs at a time.
func (s *Streamer) Start(conversationID, content string, opts agent.SendOptions, userLocalID, assistantLocalID string) bool {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.active = true
	s.mu.Unlock()

	go s.run(ctx, cancel, conversationID, content, opts, userLocalID, assistantLocalID)
	return true
}

// Interrupt cancels the in-flight stream. Returns false when nothing
// is streaming.
func (s *Streamer) Interrupt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || s.cancel == nil {
		return false
	}
	s.cancel()
	return true
}

// run performs the streaming call. The per-call deadline comes from
// the client's stream timeout; ctx only carries the interrupt.
func (s *Streamer) run(ctx context.Context, cancel context.CancelFunc, conversationID, content string, opts agent.SendOptions, userLocalID, assistantLocalID string) {
	defer func() {
		cancel()
		s.mu.Lock()
		s.active = false
		s.cancel = nil
		s.mu.Unlock()
	}()

	result, err := s.client.StreamMessage(ctx, conversationID, content, opts, func(chunk string) {
		s.emit(StreamChunkMsg{AssistantLocalID: assistantLocalID, Chunk: chunk})
	})

	if err != nil {
		kind := agent.KindOf(err)
		s.logger.Warn("stream ended early",
			zap.String("conversation_id", conversationID),
			zap.String("kind", kind.String()))
		s.emit(StreamFailedMsg{
			UserLocalID:      userLocalID,
			AssistantLocalID: assistantLocalID,
			Err:              err,
			Interrupted:      kind == agent.KindCanceled,
		})
		return
	}

	s.emit(StreamDoneMsg{
		UserLocalID:      userLocalID,
		AssistantLocalID: assistantLocalID,
		Result:           result,
	})
}

// emit delivers a message to the program, dropping it when no program
// is attached yet.
func (s *Streamer) emit(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	s.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
