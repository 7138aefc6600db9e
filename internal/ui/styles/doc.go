// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the foundry-tui
application.

This package defines the complete color palette and theme used throughout
the application. All colors use Lip Gloss AdaptiveColor for automatic
light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant messages and the hosted agent
  - Cyan - Brand color for info, commands, and user highlights
  - Emerald - Success states and the local agent indicator
  - Amber - Warnings and in-flight deliveries
  - Rose - Errors and failed deliveries

## Semantic Colors

Message bubbles use semantic color tokens, including delivery-state
variants for messages shown before the server confirms them:

	UserBubbleBg        - Background for user messages
	AssistantBubbleBg   - Background for assistant messages
	FailedBubbleBg      - Background for messages that could not be delivered
	PendingBubbleBorder - Border while a delivery is in flight

## Status Indicators

StatusIndicators carries ASCII shape markers ([OK], [X], [!], [i]) that
accompany colored status output so states remain distinguishable without
color.

# Theme (theme.go)

Theme aggregates every lipgloss style the UI renders with, detects the
terminal color profile via termenv, and exposes responsive layout modes:

	LayoutNarrow - < 60 columns
	LayoutMedium - 60-100 columns
	LayoutWide   - > 100 columns

Construct one Theme at startup with NewTheme and share it across
components; call SetSize on terminal resize.
*/
package styles
