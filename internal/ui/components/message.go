// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the foundry-tui.
package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/model"
	"github.com/jeranaias/foundry-tui/internal/ui/styles"
)

// =============================================================================
// ENTRY BUBBLE COMPONENT
// =============================================================================

// EntryBubble renders a single thread entry as a styled bubble.
// The bubble reflects the entry's delivery state: entries still in
// flight get an amber border, failed entries get rose styling with a
// retry hint, confirmed entries render normally.
type EntryBubble struct {
	Entry         *model.Entry
	Width         int
	IsLatest      bool
	ShowTimestamp bool
	theme         *styles.Theme
}

// NewEntryBubble creates a new EntryBubble.
func NewEntryBubble(entry *model.Entry, theme *styles.Theme) *EntryBubble {
	if entry == nil {
		entry = &model.Entry{Role: agent.RoleUser}
	}
	return &EntryBubble{
		Entry:         entry,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *EntryBubble) SetWidth(width int) {
	b.Width = width
}

// SetIsLatest marks this as the latest entry.
func (b *EntryBubble) SetIsLatest(latest bool) {
	b.IsLatest = latest
}

// View renders the entry bubble.
func (b *EntryBubble) View() string {
	if b.Entry.Role == agent.RoleAssistant {
		return b.renderAssistantBubble()
	}
	return b.renderUserBubble()
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned, delivery-state aware
// ==========================================================================

func (b *EntryBubble) renderUserBubble() string {
	content := b.Entry.DisplayContent()
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := b.userBubbleStyle().Width(contentWidth)
	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("you")

	stateMark := b.renderStateMark()

	timestamp := ""
	if b.ShowTimestamp {
		timestamp = b.renderTimestamp()
	}

	headerParts := []string{roleIndicator}
	if stateMark != "" {
		headerParts = append(headerParts, stateMark)
	}
	if timestamp != "" {
		headerParts = append(headerParts, timestamp)
	}
	header := strings.Join(headerParts, " ")

	// Right-align the bubble with left margin
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	headerLine := marginStyle.Render(header)
	bubbleLine := marginStyle.Render(bubble)

	result := lipgloss.JoinVertical(lipgloss.Right, headerLine, bubbleLine)

	// Failed entries carry a note explaining how to retry
	if note := b.renderDeliveryNote(); note != "" {
		result = lipgloss.JoinVertical(lipgloss.Right, result, marginStyle.Render(note))
	}

	return result
}

// userBubbleStyle picks the bubble style matching the delivery state.
func (b *EntryBubble) userBubbleStyle() lipgloss.Style {
	switch b.Entry.State {
	case model.StateFailed:
		return lipgloss.NewStyle().
			Foreground(styles.FailedBubbleFg).
			Background(styles.FailedBubbleBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.FailedBubbleBorder).
			Padding(0, 2)
	case model.StatePending:
		return lipgloss.NewStyle().
			Foreground(styles.UserBubbleFg).
			Background(styles.UserBubbleBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.PendingBubbleBorder).
			Padding(0, 2)
	default:
		return lipgloss.NewStyle().
			Foreground(styles.UserBubbleFg).
			Background(styles.UserBubbleBg).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(styles.UserBubbleBorder).
			Padding(0, 2)
	}
}

// renderStateMark renders the delivery-state marker shown in the header.
func (b *EntryBubble) renderStateMark() string {
	switch b.Entry.State {
	case model.StatePending:
		return lipgloss.NewStyle().
			Foreground(styles.Amber).
			Render(styles.StatusIndicators.Pending)
	case model.StateFailed:
		return lipgloss.NewStyle().
			Foreground(styles.ErrorHighContrast).
			Bold(true).
			Render(styles.StatusIndicators.Error)
	default:
		return ""
	}
}

// renderDeliveryNote renders the failure annotation under a failed bubble.
func (b *EntryBubble) renderDeliveryNote() string {
	if b.Entry.State != model.StateFailed {
		return ""
	}

	detail := b.Entry.FailureDetail
	if detail == "" {
		detail = "not delivered"
	}

	noteStyle := lipgloss.NewStyle().
		Foreground(styles.ErrorHighContrast).
		Italic(true)
	note := noteStyle.Render(detail)

	if b.Entry.CanRetry() {
		hintStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true)
		note += " " + hintStyle.Render("(ctrl+r to retry)")
	}

	return note
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple tones, left-aligned
// ==========================================================================

func (b *EntryBubble) renderAssistantBubble() string {
	content := b.Entry.DisplayContent()

	if b.Entry.IsStreaming {
		content += b.renderStreamingCursor()
	}

	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}

	// Finished replies get fenced code highlighted. The highlighted
	// text carries ANSI sequences, so it skips wordWrap (which counts
	// escape bytes) and relies on lipgloss to reflow the prose.
	var wrappedContent string
	var contentWidth int
	if !b.Entry.IsStreaming && strings.Contains(content, "```") {
		wrappedContent = ParseCodeBlocks(content, maxContentWidth)
		contentWidth = maxContentWidth + 4
	} else {
		wrappedContent = wordWrap(content, maxContentWidth)
		contentWidth = minInt(maxLineWidth(wrappedContent)+4, b.Width-8)
	}
	if contentWidth < 20 {
		contentWidth = 20
	}

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	roleIndicator := roleStyle.Render("assistant")

	timestamp := ""
	if b.ShowTimestamp {
		timestamp = b.renderTimestamp()
	}

	headerParts := []string{roleIndicator}
	if timestamp != "" {
		headerParts = append(headerParts, timestamp)
	}
	header := strings.Join(headerParts, " ")

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	// Generated image reference
	if b.Entry.ImageURL != "" {
		imgStyle := lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Underline(true).
			PaddingLeft(2)
		result = lipgloss.JoinVertical(lipgloss.Left, result,
			imgStyle.Render("image: "+b.Entry.ImageURL))
	}

	// Interrupted streams keep the partial text with an annotation
	if b.Entry.Interrupted {
		interruptStyle := lipgloss.NewStyle().
			Foreground(styles.Amber).
			Italic(true).
			PaddingLeft(2)
		result = lipgloss.JoinVertical(lipgloss.Left, result,
			interruptStyle.Render("response interrupted"))
	}

	// Token stats for completed responses
	if !b.Entry.IsStreaming && b.Entry.TokensUsed > 0 {
		statsStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			PaddingLeft(2)
		result = lipgloss.JoinVertical(lipgloss.Left, result,
			statsStyle.Render(fmtNumber(b.Entry.TokensUsed)+" tokens"))
	}

	return result
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp.
func (b *EntryBubble) renderTimestamp() string {
	timestampStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	ts := b.Entry.CreatedAt
	if ts.IsZero() {
		return ""
	}

	// Same day shows just the time, otherwise date and time
	now := time.Now()
	var formatted string

	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		formatted = formatClock(ts)
	} else {
		formatted = formatDay(ts) + ", " + formatClock(ts)
	}

	return timestampStyle.Render(formatted)
}

// renderStreamingCursor renders the streaming cursor animation.
func (b *EntryBubble) renderStreamingCursor() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true)

	return cursorStyle.Render("_")
}

// ==========================================================================
// UTILITY FUNCTIONS
// ==========================================================================

// wordWrap wraps text to fit within the specified width.
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")

	for lineIdx, line := range lines {
		if lineIdx > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLine := words[0]

		for _, word := range words[1:] {
			if runeLen(currentLine)+1+runeLen(word) <= width {
				currentLine += " " + word
			} else {
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			}
		}

		result.WriteString(currentLine)
	}

	return result.String()
}

// maxLineWidth returns the width of the longest line in runes.
func maxLineWidth(text string) int {
	maxWidth := 0
	for _, line := range strings.Split(text, "\n") {
		lineWidth := runeLen(line)
		if lineWidth > maxWidth {
			maxWidth = lineWidth
		}
	}
	return maxWidth
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// runeLen returns the number of runes in a string.
func runeLen(s string) int {
	return len([]rune(s))
}

// formatClock formats a time as "3:04 PM".
func formatClock(t time.Time) string {
	hour := t.Hour()
	minute := t.Minute()
	ampm := "AM"

	if hour >= 12 {
		ampm = "PM"
		if hour > 12 {
			hour -= 12
		}
	}
	if hour == 0 {
		hour = 12
	}

	minuteStr := toStr(minute)
	if minute < 10 {
		minuteStr = "0" + minuteStr
	}

	return toStr(hour) + ":" + minuteStr + " " + ampm
}

// formatDay formats a date as "Jan 5".
func formatDay(t time.Time) string {
	months := []string{
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	}

	return months[t.Month()-1] + " " + toStr(t.Day())
}

// =============================================================================
// ENTRY LIST COMPONENT
// =============================================================================

// EntryList renders all entries of a thread as stacked bubbles.
type EntryList struct {
	Entries        []*model.Entry
	Width          int
	ShowTimestamps bool
	theme          *styles.Theme
}

// NewEntryList creates a new EntryList.
func NewEntryList(theme *styles.Theme) *EntryList {
	return &EntryList{
		Entries:        []*model.Entry{},
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
	}
}

// SetEntries sets the entries to display.
func (el *EntryList) SetEntries(entries []*model.Entry) {
	el.Entries = entries
}

// SetWidth sets the list width.
func (el *EntryList) SetWidth(width int) {
	el.Width = width
}

// View renders all entries.
func (el *EntryList) View() string {
	if len(el.Entries) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(el.Width).
			Align(lipgloss.Center).
			Padding(2, 0)

		return emptyStyle.Render("No messages yet. Start a conversation!")
	}

	var bubbles []string

	for i, entry := range el.Entries {
		bubble := NewEntryBubble(entry, el.theme)
		bubble.SetWidth(el.Width)
		bubble.ShowTimestamp = el.ShowTimestamps
		bubble.SetIsLatest(i == len(el.Entries)-1)

		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
