// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the foundry-tui.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/foundry-tui/internal/ui/styles"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusSending
	StatusStreaming
	StatusThinking
	StatusLoading
	StatusError
	StatusOffline
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusSending:
		return "Sending..."
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	case StatusOffline:
		return "Offline"
	default:
		return "Unknown"
	}
}

// Icon returns a shape indicator for the status.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusSending, StatusStreaming:
		return "~"
	case StatusThinking, StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	case StatusOffline:
		return styles.StatusIndicators.Warning
	default:
		return "?"
	}
}

// StatusBar renders the bottom status bar: agent variant, conversation
// context, delivery counters, and keyboard shortcuts.
type StatusBar struct {
	Variant           string // "foundry" or "local"
	ConversationTitle string // Active conversation title
	Authenticated     bool   // Bearer token present
	MessageCount      int    // Entries in the active thread
	TokenCount        int    // Tokens used in the active thread
	PendingCount      int    // Deliveries still in flight
	FailedCount       int    // Deliveries that failed
	Status            Status // Current status
	Width             int    // Available width
	ShowShortcuts     bool   // Show keyboard shortcuts
	theme             *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Variant:       "foundry",
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetVariant updates the agent variant display.
func (s *StatusBar) SetVariant(variant string) {
	s.Variant = variant
}

// SetConversation updates the active conversation context.
func (s *StatusBar) SetConversation(title string, messages, tokens int) {
	s.ConversationTitle = title
	s.MessageCount = messages
	s.TokenCount = tokens
}

// SetDeliveryCounts updates the pending/failed delivery counters.
func (s *StatusBar) SetDeliveryCounts(pending, failed int) {
	s.PendingCount = pending
	s.FailedCount = failed
}

// SetAuthenticated updates the credential indicator.
func (s *StatusBar) SetAuthenticated(authenticated bool) {
	s.Authenticated = authenticated
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [F] title [X]2 icon
func (s *StatusBar) viewNarrow() string {
	parts := []string{}

	// Variant indicator, first letter only
	variantStyle := s.getVariantStyle()
	variantChar := "?"
	if s.Variant != "" {
		variantChar = strings.ToUpper(string([]rune(s.Variant)[0]))
	}
	parts = append(parts, "["+variantStyle.Render(variantChar)+"]")

	// Truncated title
	if s.ConversationTitle != "" {
		title := util.TruncateCells(s.ConversationTitle, 16)
		titleStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		parts = append(parts, titleStyle.Render(title))
	}

	// Failed counter
	if s.FailedCount > 0 {
		failStyle := lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true)
		parts = append(parts, failStyle.Render(styles.StatusIndicators.Error+toStr(s.FailedCount)))
	}

	// Status icon
	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.Icon()))

	result := strings.Join(parts, " ")

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Width(s.Width).
		Render(result)
}

// viewMedium renders a medium-width status bar.
// Format: FOUNDRY | title | 12 msgs | [X]2 failed | Status
func (s *StatusBar) viewMedium() string {
	separator := lipgloss.NewStyle().
		Foreground(styles.Overlay).
		Render(" | ")

	parts := []string{}

	// Variant
	variantStyle := s.getVariantStyle()
	parts = append(parts, variantStyle.Render(strings.ToUpper(s.Variant)))

	// Title (truncated if needed)
	if s.ConversationTitle != "" {
		title := util.TruncateCells(s.ConversationTitle, 20)
		titleStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		parts = append(parts, titleStyle.Render(title))
	}

	// Message count
	if s.MessageCount > 0 {
		countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		parts = append(parts, countStyle.Render(toStr(s.MessageCount)+" msgs"))
	}

	// Delivery counters
	if counters := s.renderDeliveryCounters(); counters != "" {
		parts = append(parts, counters)
	}

	// Status
	statusStyle := s.getStatusStyle()
	parts = append(parts, statusStyle.Render(s.Status.String()))

	result := strings.Join(parts, separator)

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// viewWide renders a full-featured status bar for wide terminals.
// Format: FOUNDRY | title | 12 msgs | 1,234 tok ... [!]1 [X]2 ... Status shortcuts
func (s *StatusBar) viewWide() string {
	// Left section: variant, auth, conversation context
	leftParts := []string{}

	variantStyle := s.getVariantStyle()
	leftParts = append(leftParts, variantStyle.Render(strings.ToUpper(s.Variant)))

	if !s.Authenticated {
		anonStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
		leftParts = append(leftParts, anonStyle.Render("anonymous"))
	}

	if s.ConversationTitle != "" {
		titleStyle := lipgloss.NewStyle().Foreground(styles.TextSecondary)
		leftParts = append(leftParts, titleStyle.Render(s.ConversationTitle))
	}

	if s.MessageCount > 0 {
		countStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		leftParts = append(leftParts, countStyle.Render(toStr(s.MessageCount)+" msgs"))
	}

	if s.TokenCount > 0 {
		tokenStyle := lipgloss.NewStyle().Foreground(styles.TextMuted)
		leftParts = append(leftParts, tokenStyle.Render(fmtNumber(s.TokenCount)+" tok"))
	}

	leftSep := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")
	leftSection := strings.Join(leftParts, leftSep)

	// Center section: delivery counters
	centerSection := s.renderDeliveryCounters()

	// Right section: status and shortcuts
	rightParts := []string{}

	statusStyle := s.getStatusStyle()
	rightParts = append(rightParts, statusStyle.Render(s.Status.String()))

	if s.ShowShortcuts {
		rightParts = append(rightParts, s.renderShortcuts())
	}

	rightSection := strings.Join(rightParts, " ")

	// Calculate spacing
	leftWidth := lipgloss.Width(leftSection)
	centerWidth := lipgloss.Width(centerSection)
	rightWidth := lipgloss.Width(rightSection)
	totalContent := leftWidth + centerWidth + rightWidth

	spacing := s.Width - totalContent - 4
	if spacing < 4 {
		spacing = 4
	}

	leftSpace := strings.Repeat(" ", spacing/2)
	rightSpace := strings.Repeat(" ", spacing-spacing/2)

	result := leftSection + leftSpace + centerSection + rightSpace + rightSection

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(styles.Overlay).
		Background(styles.SurfaceDim).
		Foreground(styles.TextSecondary).
		Padding(0, 1).
		Width(s.Width).
		Render(result)
}

// ==========================================================================
// HELPER RENDER METHODS
// ==========================================================================

// renderDeliveryCounters renders the pending/failed badges, or "" when
// every entry is confirmed.
func (s *StatusBar) renderDeliveryCounters() string {
	parts := []string{}

	if s.PendingCount > 0 {
		pendingStyle := lipgloss.NewStyle().
			Foreground(styles.WarningHighContrast).
			Bold(true)
		parts = append(parts, pendingStyle.Render(
			styles.StatusIndicators.Warning+" "+toStr(s.PendingCount)+" sending"))
	}

	if s.FailedCount > 0 {
		failStyle := lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true)
		parts = append(parts, failStyle.Render(
			styles.StatusIndicators.Error+" "+toStr(s.FailedCount)+" failed"))
	}

	return strings.Join(parts, " ")
}

// renderShortcuts renders keyboard shortcut hints.
func (s *StatusBar) renderShortcuts() string {
	keyStyle := lipgloss.NewStyle().
		Foreground(styles.Cyan).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted)

	shortcuts := []string{
		keyStyle.Render("^N") + descStyle.Render("new"),
		keyStyle.Render("^R") + descStyle.Render("retry"),
		keyStyle.Render("^E") + descStyle.Render("export"),
		keyStyle.Render("^C") + descStyle.Render("quit"),
	}

	return strings.Join(shortcuts, " ")
}

// getVariantStyle returns the style for the current agent variant.
func (s *StatusBar) getVariantStyle() lipgloss.Style {
	switch s.Variant {
	case "local":
		return lipgloss.NewStyle().
			Foreground(styles.VariantLocal).
			Bold(true)
	case "foundry":
		return lipgloss.NewStyle().
			Foreground(styles.VariantFoundry).
			Bold(true)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.TextMuted)
	}
}

// getStatusStyle returns the style for the current status.
func (s *StatusBar) getStatusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Bold(true)
	case StatusSending, StatusStreaming, StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true)
	case StatusLoading:
		return lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true)
	case StatusOffline:
		return lipgloss.NewStyle().Foreground(styles.WarningHighContrast).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(styles.TextMuted)
	}
}
