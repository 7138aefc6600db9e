// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the foundry-tui.
package components

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestNewSpinner(t *testing.T) {
	s := NewSpinner()

	if s.style != SpinnerLine {
		t.Errorf("NewSpinner() style = %v, want %v", s.style, SpinnerLine)
	}

	if s.message != "Loading" {
		t.Errorf("NewSpinner() message = %q, want %q", s.message, "Loading")
	}

	if !s.showTimer {
		t.Error("NewSpinner() showTimer should be true")
	}

	if s.isActive {
		t.Error("NewSpinner() should not be active initially")
	}
}

func TestNewThinkingSpinner(t *testing.T) {
	s := NewThinkingSpinner()

	if s.message != "Thinking" {
		t.Errorf("NewThinkingSpinner() message = %q, want %q", s.message, "Thinking")
	}

	if !s.showTimer {
		t.Error("NewThinkingSpinner() showTimer should be true")
	}
}

func TestNewSendingSpinner(t *testing.T) {
	s := NewSendingSpinner()

	if s.message != "Sending" {
		t.Errorf("NewSendingSpinner() message = %q, want %q", s.message, "Sending")
	}

	if s.showTimer {
		t.Error("NewSendingSpinner() showTimer should be false")
	}
}

func TestSpinnerSetStyle(t *testing.T) {
	s := NewSpinner()

	spinnerStyles := []SpinnerStyle{
		SpinnerLine,
		SpinnerDots,
		SpinnerPulse,
		SpinnerBlock,
	}

	for _, style := range spinnerStyles {
		s.SetStyle(style)
		if s.style != style {
			t.Errorf("SetStyle(%v) did not set style correctly", style)
		}
	}
}

func TestSpinnerStartStop(t *testing.T) {
	s := NewSpinner()

	cmd := s.Start()
	if cmd == nil {
		t.Error("Start() should return a tick command")
	}
	if !s.IsActive() {
		t.Error("spinner should be active after Start()")
	}
	if s.startTime.IsZero() {
		t.Error("Start() should record the start time")
	}

	s.Stop()
	if s.IsActive() {
		t.Error("spinner should not be active after Stop()")
	}
}

func TestSpinnerViewInactive(t *testing.T) {
	s := NewSpinner()

	if got := s.View(); got != "" {
		t.Errorf("inactive spinner View() = %q, want empty", got)
	}
}

func TestSpinnerViewActive(t *testing.T) {
	s := NewSpinner()
	s.SetMessage("Contacting agent")
	s.Start()

	view := s.View()
	if !strings.Contains(view, "Contacting agent") {
		t.Errorf("View() should contain the message, got %q", view)
	}
}

func TestSpinnerViewDetail(t *testing.T) {
	s := NewSpinner()
	s.SetDetail("Generating image")
	s.Start()

	view := s.View()
	if !strings.Contains(view, "Generating image") {
		t.Errorf("View() should contain the detail text, got %q", view)
	}
}

func TestSpinnerGetElapsed(t *testing.T) {
	s := NewSpinner()

	if s.GetElapsed() != 0 {
		t.Error("GetElapsed() should be 0 before Start()")
	}

	s.Start()
	time.Sleep(10 * time.Millisecond)

	if s.GetElapsed() <= 0 {
		t.Error("GetElapsed() should be positive after Start()")
	}
}

// =============================================================================
// THINKING INDICATOR TESTS
// =============================================================================

func TestThinkingIndicator(t *testing.T) {
	ti := NewThinkingIndicator()

	if ti.IsActive() {
		t.Error("new indicator should not be active")
	}

	cmd := ti.Start()
	if cmd == nil {
		t.Error("Start() should return a tick command")
	}
	if !ti.IsActive() {
		t.Error("indicator should be active after Start()")
	}

	view := ti.View()
	if !strings.Contains(view, "Thinking") {
		t.Errorf("View() should contain Thinking, got %q", view)
	}

	ti.Stop()
	if ti.IsActive() {
		t.Error("indicator should not be active after Stop()")
	}
}

// =============================================================================
// INLINE SPINNER TESTS
// =============================================================================

func TestInlineSpinner(t *testing.T) {
	is := NewInlineSpinner()

	if got := is.View(); got != "" {
		t.Errorf("inactive inline spinner View() = %q, want empty", got)
	}

	is.Start()
	if got := is.View(); got == "" {
		t.Error("active inline spinner View() should not be empty")
	}

	is.Stop()
	if got := is.View(); got != "" {
		t.Errorf("stopped inline spinner View() = %q, want empty", got)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{"seconds", 5 * time.Second, "5s"},
		{"under a minute", 59 * time.Second, "59s"},
		{"exactly a minute", 60 * time.Second, "1m 0s"},
		{"minutes and seconds", 125 * time.Second, "2m 5s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatElapsed(tt.d); got != tt.want {
				t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestFmtNumber(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}

	for _, tt := range tests {
		if got := fmtNumber(tt.n); got != tt.want {
			t.Errorf("fmtNumber(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
