// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// TruncateRunes truncates a string to a maximum number of runes. Counting
// runes rather than bytes keeps multi-byte UTF-8 characters intact. When the
// string is truncated, "..." is appended within the limit.
func TruncateRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// TruncateCells truncates a string to a maximum display width in terminal
// cells. Wide characters occupy two cells, so cell counting is what keeps
// fixed-width layout slots from overflowing where rune counting would.
func TruncateCells(s string, maxCells int) string {
	if maxCells <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxCells {
		return s
	}
	if maxCells <= 3 {
		return runewidth.Truncate(s, maxCells, "")
	}
	return runewidth.Truncate(s, maxCells, "...")
}

// FirstLine returns the first line of s with surrounding whitespace removed.
// Used when a multi-line message has to fit a single-row display slot.
func FirstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// RelativeTime renders t relative to now in compact form: "now", "5m ago",
// "3h ago", "2d ago". Anything older than a week falls back to a date.
func RelativeTime(t time.Time, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
