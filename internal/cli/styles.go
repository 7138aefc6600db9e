// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Shared lipgloss styles for CLI output.
//
// All commands draw from one palette so status, health, and conversations
// render consistently. The color profile follows terminal.go: non-TTY and
// NO_COLOR invocations degrade to plain text automatically.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/foundry-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	// TitleStyle renders command headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan)

	// LabelStyle renders field labels at a fixed width so values align.
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(16)

	// ValueStyle renders field values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// SuccessStyle renders success markers.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	// ErrorStyle renders failure markers.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	// WarningStyle renders warnings.
	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	// DimStyle renders secondary hints.
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// SeparatorStyle renders horizontal rules.
	SeparatorStyle = lipgloss.NewStyle().
			Foreground(styles.Overlay)
)

// =============================================================================
// HELPERS
// =============================================================================

// RenderStatus renders a bracketed status marker with semantic color.
func RenderStatus(status string) string {
	switch strings.ToLower(status) {
	case "ok", "healthy", "up", "pass":
		return SuccessStyle.Render("[OK]")
	case "error", "fail", "down", "unreachable":
		return ErrorStyle.Render("[FAIL]")
	case "warn", "warning", "degraded", "expired":
		return WarningStyle.Render("[WARN]")
	default:
		return DimStyle.Render("[" + strings.ToUpper(status) + "]")
	}
}

// RenderSeparator renders a horizontal rule of the given width, 45 cells
// when unspecified.
func RenderSeparator(width ...int) string {
	w := 45
	if len(width) > 0 && width[0] > 0 {
		w = width[0]
	}
	return SeparatorStyle.Render(strings.Repeat("─", w))
}
