// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/foundry-tui/internal/ui/styles"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// Fixed component heights. handleResize sizes the viewport from
// these, so a change here must be mirrored there.
const (
	headerHeight    = 1
	inputHeight     = 3
	statusBarHeight = 1
	sidebarWidth    = 30
)

// sidebarVisible reports whether the conversation list gets its own
// column. Narrower layouts show the list full-screen while it has
// focus instead.
func (m Model) sidebarVisible() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderChat renders the normal screen: header, optional sidebar,
// message viewport, input block, and status bar. Heights add up to
// m.height exactly.
func (m Model) renderChat() string {
	header := m.renderHeader()
	status := m.statusBar.View()

	if m.focus == FocusSidebar && !m.sidebarVisible() {
		list := m.renderConversationList(m.width, m.height-headerHeight-statusBarHeight)
		return lipgloss.JoinVertical(lipgloss.Left, header, list, status)
	}

	var body string
	if m.thread.Len() == 0 && m.state == StateReady {
		body = m.renderWelcome()
	} else {
		body = m.viewport.View()
	}

	column := lipgloss.JoinVertical(lipgloss.Left, body, m.renderInput())

	if m.sidebarVisible() {
		sidebar := m.renderConversationList(sidebarWidth, m.height-headerHeight-statusBarHeight)
		column = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, column)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, column, status)
}

// =============================================================================
// HEADER
// =============================================================================

// renderHeader renders the one-line title bar.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	brand := m.theme.HeaderBrand.Render("foundry")

	var variantBadge string
	if m.variant == "local" {
		variantBadge = m.theme.ModeLocal.Render(" local")
	} else {
		variantBadge = m.theme.ModeFoundry.Render(" hosted")
	}

	title := ""
	if m.thread.ConversationID != "" || m.thread.Len() > 0 {
		title = m.theme.HeaderSubtitle.Render("  " + util.TruncateCells(m.thread.DisplayTitle(), 40))
	}

	var offlineBadge string
	if m.offline {
		offlineBadge = m.theme.ModeOffline.Render("OFFLINE ")
	}

	left := brand + variantBadge + title
	spacing := width - lipgloss.Width(left) - lipgloss.Width(offlineBadge)
	if spacing < 1 {
		spacing = 1
	}

	return m.theme.Header.Width(width).Render(left + strings.Repeat(" ", spacing) + offlineBadge)
}

// =============================================================================
// SIDEBAR
// =============================================================================

// renderConversationList renders the sidebar (or the full-screen list
// on narrow layouts).
func (m Model) renderConversationList(width, height int) string {
	var sb strings.Builder

	heading := m.theme.ConversationTitle.Render("Conversations")
	if m.focus == FocusSidebar {
		heading += m.theme.ConversationMeta.Render("  enter opens, d deletes, r renames")
	}
	sb.WriteString(heading)
	sb.WriteString("\n\n")

	if len(m.conversations) == 0 {
		sb.WriteString(m.theme.ConversationMeta.Render("No conversations yet"))
	}

	titleWidth := width - 6
	if titleWidth < 8 {
		titleWidth = 8
	}

	// Keep the cursor visible when the list outgrows the pane. The
	// frame eats four rows, the heading two, the meta line one.
	visible := height - 7
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}

	for i := start; i < len(m.conversations) && i-start < visible; i++ {
		conv := m.conversations[i]

		marker := "  "
		if conv.ID == m.thread.ConversationID {
			marker = styles.StatusIndicators.Active + " "
		}

		line := marker + util.TruncateCells(conv.Title, titleWidth)
		if i == m.selected && m.focus == FocusSidebar {
			line = m.theme.ConversationSelected.Render("> " + line)
		} else {
			line = m.theme.ConversationItem.Render("  " + line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")

		if i == m.selected {
			meta := "    " + util.RelativeTime(conv.UpdatedAt.Time, time.Now())
			if conv.MessageCount > 0 {
				meta += ", " + toStr(conv.MessageCount) + " messages"
			}
			sb.WriteString(m.theme.ConversationMeta.Render(meta))
			sb.WriteString("\n")
		}
	}

	return m.theme.ConversationList.
		Width(width - 2).
		Height(height - 2).
		Render(sb.String())
}

// toStr converts an int for display without fmt.
func toStr(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

// =============================================================================
// INPUT BLOCK
// =============================================================================

// renderInput renders the three-line input block: focus border, the
// input line, and the footer carrying the spinner, a notice, or the
// character count.
func (m Model) renderInput() string {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	borderColor := styles.FocusRing
	if m.focus != FocusInput {
		borderColor = styles.OverlayDim
	}
	border := lipgloss.NewStyle().
		Foreground(borderColor).
		Render(strings.Repeat("─", width))

	inputLine := m.input.View()

	return lipgloss.JoinVertical(lipgloss.Left, border, inputLine, m.renderFooterLine(width))
}

// renderFooterLine fills the line under the input: activity first,
// then transient notices, then the character count.
func (m Model) renderFooterLine(width int) string {
	var left string
	switch {
	case m.spin.IsActive():
		left = m.spin.View()
	case m.notice != "":
		left = m.theme.ConversationMeta.Render(m.notice)
	case m.renaming:
		left = m.theme.ConversationMeta.Render("enter saves, esc cancels")
	default:
		left = m.theme.ShortcutDesc.Render("enter sends, f1 help")
	}

	count := m.renderCharCount()
	spacing := width - lipgloss.Width(left) - lipgloss.Width(count)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + count
}

// renderCharCount shows how close the input is to its limit, turning
// amber at 80% and rose at 95%.
func (m Model) renderCharCount() string {
	used := len([]rune(m.input.Value()))
	limit := m.input.CharLimit
	if limit <= 0 || used == 0 {
		return ""
	}

	text := toStr(used) + "/" + toStr(limit)
	switch {
	case used*100 >= limit*95:
		return m.theme.CharCountDanger.Render(text)
	case used*100 >= limit*80:
		return m.theme.CharCountWarning.Render(text)
	default:
		return m.theme.CharCount.Render(text)
	}
}

// =============================================================================
// WELCOME
// =============================================================================

// renderWelcome fills the empty message area on a fresh thread.
func (m Model) renderWelcome() string {
	var sb strings.Builder

	sb.WriteString(m.theme.WelcomeLogo.Render("foundry"))
	sb.WriteString("\n")

	variantLine := "hosted agent"
	if m.variant == "local" {
		variantLine = "local agent"
	}
	sb.WriteString(m.theme.WelcomeVersion.Render(variantLine))
	sb.WriteString("\n\n")

	sb.WriteString(m.theme.WelcomeInfo.Render("Type a message below to start a conversation."))
	sb.WriteString("\n\n")

	tips := []struct {
		key  string
		desc string
	}{
		{"tab", "browse conversations"},
		{"/image <prompt>", "generate an image"},
		{"/upload <path>", "attach a file"},
		{"f1", "all shortcuts"},
	}
	for _, tip := range tips {
		pad := 18 - len(tip.key)
		if pad < 1 {
			pad = 1
		}
		sb.WriteString(m.theme.WelcomeKey.Render(tip.key))
		sb.WriteString(strings.Repeat(" ", pad))
		sb.WriteString(m.theme.WelcomeInfo.Render(tip.desc))
		sb.WriteString("\n")
	}

	box := m.theme.WelcomeBox.Render(sb.String())
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// OVERLAYS
// =============================================================================

// renderErrorOverlay renders a blocking error box centered on the
// screen.
func (m Model) renderErrorOverlay() string {
	e := m.lastError

	var sb strings.Builder
	sb.WriteString(m.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + e.Title))
	sb.WriteString("\n\n")
	sb.WriteString(m.theme.ErrorMessage.Render(e.Message))

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n")
		for _, s := range e.Suggestions {
			sb.WriteString("\n")
			sb.WriteString(m.theme.ErrorSuggestion.Render("- " + s))
		}
	}

	if e.Dismissible {
		sb.WriteString("\n\n")
		sb.WriteString(m.theme.ErrorTip.Render("press any key to dismiss"))
	}

	box := m.theme.ErrorBox.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderHelpOverlay renders the keyboard reference.
func (m Model) renderHelpOverlay() string {
	var sb strings.Builder

	sb.WriteString(m.theme.HeaderTitle.Render("Keyboard Shortcuts"))
	sb.WriteString("\n")

	for _, section := range HelpSections() {
		sb.WriteString("\n")
		sb.WriteString(m.theme.ConversationTitle.Render(section.Title))
		sb.WriteString("\n")
		for _, entry := range section.Entries {
			pad := 18 - len(entry.Key)
			if pad < 1 {
				pad = 1
			}
			sb.WriteString("  ")
			sb.WriteString(m.theme.WelcomeKey.Render(entry.Key))
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString(m.theme.WelcomeInfo.Render(entry.Desc))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.theme.WelcomePressKey.Render("press any key to close"))

	box := m.theme.Container.Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
