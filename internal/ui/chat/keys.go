// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY BINDINGS
// =============================================================================

// KeyMap defines the keyboard bindings for the chat view. The input
// field owns plain characters, so global actions live on control keys
// and list actions on plain letters that only apply while the sidebar
// has focus.
type KeyMap struct {
	// Global actions
	Submit          key.Binding
	Interrupt       key.Binding
	Retry           key.Binding
	NewConversation key.Binding
	Export          key.Binding
	ResetContext    key.Binding
	Refresh         key.Binding
	ToggleSidebar   key.Binding
	Help            key.Binding
	Quit            key.Binding

	// Viewport scrolling
	ScrollUp   key.Binding
	ScrollDown key.Binding

	// Sidebar actions, active only while the sidebar has focus
	ListUp     key.Binding
	ListDown   key.Binding
	ListOpen   key.Binding
	ListDelete key.Binding
	ListRename key.Binding
}

// DefaultKeyMap returns the standard chat key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send message"),
		),
		Interrupt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop response / dismiss"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "retry failed message"),
		),
		NewConversation: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "new conversation"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("ctrl+e", "export conversation"),
		),
		ResetContext: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "reset agent context"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("f5"),
			key.WithHelp("f5", "refresh conversations"),
		),
		ToggleSidebar: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch focus"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll down"),
		),
		ListUp: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous conversation"),
		),
		ListDown: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next conversation"),
		),
		ListOpen: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open conversation"),
		),
		ListDelete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete conversation"),
		),
		ListRename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename conversation"),
		),
	}
}

// ShortHelp returns the bindings shown in the compact help line.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.NewConversation, k.Retry, k.Help, k.Quit}
}

// FullHelp returns the bindings for the expanded help view, grouped
// by column.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Interrupt, k.Retry, k.NewConversation},
		{k.ToggleSidebar, k.ListOpen, k.ListDelete, k.ListRename, k.Refresh},
		{k.ScrollUp, k.ScrollDown, k.Export, k.ResetContext, k.Help, k.Quit},
	}
}

// =============================================================================
// HELP ENTRIES
// =============================================================================

// HelpEntry is one row of the help overlay.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpSection groups help entries under a heading.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpSections returns the full help content, grouped the way the
// overlay renders it.
func HelpSections() []HelpSection {
	return []HelpSection{
		{
			Title: "Messages",
			Entries: []HelpEntry{
				{"enter", "Send the typed message"},
				{"esc", "Stop the streaming response"},
				{"ctrl+r", "Retry the last failed message"},
				{"/image <prompt>", "Generate an image"},
				{"/upload <path>", "Upload a file attachment"},
			},
		},
		{
			Title: "Conversations",
			Entries: []HelpEntry{
				{"ctrl+n", "Start a new conversation"},
				{"tab", "Focus the conversation list"},
				{"enter", "Open the selected conversation"},
				{"d", "Delete the selected conversation"},
				{"r", "Rename the selected conversation"},
				{"f5", "Refresh the conversation list"},
			},
		},
		{
			Title: "Other",
			Entries: []HelpEntry{
				{"pgup/pgdn", "Scroll the message history"},
				{"ctrl+e", "Export the conversation"},
				{"ctrl+x", "Reset the agent's working context"},
				{"f1", "Toggle this help"},
				{"ctrl+c", "Quit"},
			},
		},
	}
}
