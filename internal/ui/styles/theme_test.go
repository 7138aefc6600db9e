// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for foundry-tui.
package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Verify styles are initialized by rendering a test string
	renderedApp := theme.App.Render("test")
	if renderedApp == "" {
		t.Error("NewTheme() should initialize App style")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"UserBubble", theme.UserBubble},
		{"AssistantBubble", theme.AssistantBubble},
		{"FailedBubble", theme.FailedBubble},
		{"PendingBubble", theme.PendingBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"ConversationList", theme.ConversationList},
		{"ErrorBox", theme.ErrorBox},
		{"CodeBlock", theme.CodeBlock},
		{"WelcomeBox", theme.WelcomeBox},
	}

	for _, s := range styles {
		// An uninitialized style would just return the input unchanged
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tt := range tests {
		theme.SetSize(tt.width, tt.height)

		if theme.Width != tt.width {
			t.Errorf("SetSize(%d, %d): Width = %d, want %d",
				tt.width, tt.height, theme.Width, tt.width)
		}
		if theme.Height != tt.height {
			t.Errorf("SetSize(%d, %d): Height = %d, want %d",
				tt.width, tt.height, theme.Height, tt.height)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		name  string
		width int
		want  LayoutMode
	}{
		{"very narrow", 40, LayoutNarrow},
		{"narrow boundary", 59, LayoutNarrow},
		{"medium lower", 60, LayoutMedium},
		{"medium typical", 80, LayoutMedium},
		{"medium boundary", 99, LayoutMedium},
		{"wide lower", 100, LayoutWide},
		{"very wide", 200, LayoutWide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme.SetSize(tt.width, 24)

			got := theme.GetLayoutMode()
			if got != tt.want {
				t.Errorf("GetLayoutMode() at width %d = %v, want %v",
					tt.width, got, tt.want)
			}
		})
	}
}

// =============================================================================
// STATUS HELPER TESTS
// =============================================================================

func TestRenderHelpers(t *testing.T) {
	tests := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.rendered, tt.indicator) {
				t.Errorf("rendered output %q should contain indicator %q",
					tt.rendered, tt.indicator)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	ok := RenderStatus(true, "done")
	if !strings.Contains(ok, StatusIndicators.Success) {
		t.Errorf("RenderStatus(true) should use success indicator, got %q", ok)
	}

	bad := RenderStatus(false, "broken")
	if !strings.Contains(bad, StatusIndicators.Error) {
		t.Errorf("RenderStatus(false) should use error indicator, got %q", bad)
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	indicators := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	}

	for _, ind := range indicators {
		for _, r := range ind {
			if r > 127 {
				t.Errorf("indicator %q contains non-ASCII rune %q", ind, r)
			}
		}
	}
}
