// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI components for the foundry-tui
application.

This package contains styled components built on top of the Bubble Tea
and Lip Gloss libraries, consistent with the foundry-tui design language.

# Display Components

EntryBubble (message.go) - Styled bubbles for thread entries. The bubble
reflects each entry's delivery state: in-flight entries get an amber
border, failed entries get rose styling plus a retry hint, confirmed
entries render normally. Streaming assistant entries show a blinking
cursor; interrupted ones carry an annotation.

EntryList (message.go) - Stacks EntryBubbles for a whole thread.

CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma,
with ParseCodeBlocks for replacing fenced blocks inside assistant
responses.

StatusBar (statusbar.go) - Bottom status bar with agent variant,
conversation context, delivery counters, and shortcuts. Adapts its
layout to narrow, medium, and wide terminals.

# Progress and Feedback

Spinner (spinner.go) - Animated ASCII spinner with customizable styles.
ThinkingIndicator (spinner.go) - Spinner variant for the waiting-on-agent
state with elapsed time.
InlineSpinner (spinner.go) - Minimal single-character spinner.

# Theme Integration

Components accept a *styles.Theme for consistent styling:

	theme := styles.NewTheme()
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	bar.SetVariant("local")
	view := bar.View()
*/
package components
