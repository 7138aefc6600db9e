// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation view: the
// message thread, the input line, the conversation sidebar, and the
// delivery state machine that keeps optimistic local entries in sync
// with the backend.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/model"
	"github.com/jeranaias/foundry-tui/internal/storage"
	"github.com/jeranaias/foundry-tui/internal/tasks"
	"github.com/jeranaias/foundry-tui/internal/ui/components"
	"github.com/jeranaias/foundry-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the delivery state machine of the chat view.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateSending has a request in flight with no partial reply yet.
	StateSending
	// StateStreaming is receiving reply chunks.
	StateStreaming
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Focus identifies which pane receives key input.
type Focus int

const (
	// FocusInput routes typing to the message input.
	FocusInput Focus = iota
	// FocusSidebar routes navigation keys to the conversation list.
	FocusSidebar
)

// =============================================================================
// MUTATION TRACKING
// =============================================================================

// mutationKind names a queued conversation list operation.
type mutationKind int

const (
	mutationCreate mutationKind = iota
	mutationDelete
	mutationRename
	mutationRefresh
)

// pendingMutation correlates a queued task with the follow-up the
// model owes when it finishes. The created and loaded pointers are
// written by the task closure before the queue publishes the
// completion, so reading them from the completion handler is ordered.
type pendingMutation struct {
	kind           mutationKind
	conversationID string
	title          string
	created        *agent.Conversation

	// loaded carries a mutationRefresh result: the replacement list,
	// fetched after every mutation queued ahead of it.
	loaded *ConversationsLoadedMsg

	// A send waiting on mutationCreate: the optimistic entry and the
	// payload to dispatch once the conversation exists.
	sendLocalID string
	sendKind    model.PayloadKind
	sendContent string
	sendPath    string
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a chat model. The zero value works for tests;
// real wiring injects the pieces built in cmd.
type Options struct {
	// Variant labels the backend, "foundry" or "local".
	Variant string

	// Theme renders the view. A nil theme gets constructed.
	Theme *styles.Theme

	// Cache is the offline read cache, may be nil.
	Cache *storage.ThreadCache

	// Queue orders conversation list mutations. When nil the model
	// owns a private queue and runner.
	Queue *tasks.Queue

	// Logger receives diagnostics, never user output.
	Logger *zap.Logger

	// Streaming selects chunked replies for plain text sends.
	Streaming bool

	// IncludeContext asks the backend to enrich prompts with the
	// user's workspace data.
	IncludeContext bool

	// Authenticated toggles the anonymous badge in the status bar.
	Authenticated bool

	// ExportDir receives exported transcripts. Empty means the
	// current directory.
	ExportDir string

	// ExportFormat is one of markdown, html, json, text.
	ExportFormat string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Injected collaborators
	client   agent.Backend
	streamer *Streamer
	queue    *tasks.Queue
	runner   *tasks.Runner
	cache    *storage.ThreadCache
	logger   *zap.Logger

	// Configuration
	variant          string
	streamingEnabled bool
	includeContext   bool
	authenticated    bool
	exportDir        string
	exportFormat     string

	// UI state
	theme  *styles.Theme
	keys   KeyMap
	width  int
	height int
	ready  bool

	state State
	focus Focus

	// Conversation state
	thread        *model.Thread
	conversations []agent.Conversation
	selected      int
	offline       bool

	// pending maps task IDs to the follow-up owed on completion.
	pending map[string]*pendingMutation

	// Components
	viewport  viewport.Model
	input     textinput.Model
	spin      components.Spinner
	statusBar *components.StatusBar

	// Rename flow: the input is temporarily repurposed.
	renaming bool
	renameID string

	// confirmDelete holds the conversation id armed by the first
	// delete press; the second press commits it.
	confirmDelete string

	// Overlays and transient notes
	lastError *ErrorMsg
	showHelp  bool
	notice    string
}

// New creates a chat model for the given backend client. Variant extras
// (context reset, thread inspection) are discovered by capability
// assertion on the client, so passing a bare *agent.Client simply
// disables them.
func New(client agent.Backend, opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	variant := opts.Variant
	if variant == "" {
		variant = "foundry"
	}
	exportFormat := opts.ExportFormat
	if exportFormat == "" {
		exportFormat = "markdown"
	}

	queue := opts.Queue
	var runner *tasks.Runner
	if queue == nil {
		queue = tasks.NewQueue(50).WithLogger(logger)
		runner = tasks.NewRunner(queue).WithLogger(logger)
	}

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = 4096
	input.Focus()

	vp := viewport.New(80, 20)

	statusBar := components.NewStatusBar(theme)
	statusBar.SetVariant(variant)
	statusBar.SetAuthenticated(opts.Authenticated)

	return Model{
		client:   client,
		streamer: NewStreamer(client).WithLogger(logger),
		queue:    queue,
		runner:   runner,
		cache:    opts.Cache,
		logger:   logger,

		variant:          variant,
		streamingEnabled: opts.Streaming,
		includeContext:   opts.IncludeContext,
		authenticated:    opts.Authenticated,
		exportDir:        opts.ExportDir,
		exportFormat:     exportFormat,

		theme: theme,
		keys:  DefaultKeyMap(),

		state:   StateReady,
		focus:   FocusInput,
		thread:  model.NewThread("", ""),
		pending: make(map[string]*pendingMutation),

		viewport:  vp,
		input:     input,
		spin:      components.NewThinkingSpinner(),
		statusBar: statusBar,
	}
}

// SetProgram hands the streamer its program handle. Must be called
// after tea.NewProgram and before the first send.
func (m *Model) SetProgram(p *tea.Program) {
	m.streamer.SetProgram(p)
}

// Thread exposes the active thread for export and tests.
func (m Model) Thread() *model.Thread {
	return m.thread
}

// State exposes the delivery state for tests.
func (m Model) State() State {
	return m.state
}

// =============================================================================
// INIT
// =============================================================================

// Init starts the owned mutation runner and fires the initial loads.
// The first list fetch rides the queue like every later one; it is
// simply the first task in.
func (m Model) Init() tea.Cmd {
	if m.runner != nil {
		m.runner.Start()
	}
	m.enqueueListRefresh()
	return tea.Batch(
		textinput.Blink,
		m.healthCheckCmd(),
		m.listenTasksCmd(),
	)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update dispatches messages to their handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ConversationsLoadedMsg:
		return m.handleConversationsLoaded(msg)
	case ThreadLoadedMsg:
		return m.handleThreadLoaded(msg)

	case SendDoneMsg:
		return m.handleSendDone(msg)
	case ImageDoneMsg:
		return m.handleImageDone(msg)
	case UploadDoneMsg:
		return m.handleUploadDone(msg)

	case StreamChunkMsg:
		return m.handleStreamChunk(msg)
	case StreamDoneMsg:
		return m.handleStreamDone(msg)
	case StreamFailedMsg:
		return m.handleStreamFailed(msg)

	case TaskDoneMsg:
		return m.handleTaskDone(msg)
	case ExportDoneMsg:
		return m.handleExportDone(msg)
	case ContextResetMsg:
		return m.handleContextReset(msg)

	case HealthMsg:
		return m.handleHealth(msg)
	case healthTickMsg:
		return m, m.healthCheckCmd()
	case noticeExpiredMsg:
		m.notice = ""
		return m, nil

	case SettingsChangedMsg:
		m.streamingEnabled = msg.Streaming
		m.includeContext = msg.IncludeContext
		return m, m.setNotice("config reloaded")

	case ErrorMsg:
		m.lastError = &msg
		return m, nil
	}

	// Spinner ticks and everything else flow through the components.
	return m.updateComponents(msg)
}

// updateComponents forwards unhandled messages to the input, the
// viewport, and the spinner.
func (m Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.focus == FocusInput && m.state == StateReady {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}

	var spinCmd tea.Cmd
	m.spin, spinCmd = m.spin.Update(msg)
	if spinCmd != nil {
		cmds = append(cmds, spinCmd)
	}

	return m, tea.Batch(cmds...)
}

// handleResize recomputes the layout. The viewport height leaves room
// for the header (1), the input block (3), and the status bar (1).
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	m.theme.SetSize(msg.Width, msg.Height)
	m.statusBar.SetWidth(msg.Width)

	contentWidth := msg.Width
	if m.sidebarVisible() {
		contentWidth -= sidebarWidth
	}
	m.viewport.Width = contentWidth
	m.viewport.Height = m.viewportHeight()
	m.input.Width = contentWidth - 6

	m.refreshViewport(false)
	return m, nil
}

// viewportHeight returns the rows left for the message area.
func (m Model) viewportHeight() int {
	h := m.height - headerHeight - inputHeight - statusBarHeight
	if h < 1 {
		h = 1
	}
	return h
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	if m.lastError != nil {
		return m.renderErrorOverlay()
	}
	return m.renderChat()
}

// =============================================================================
// SHARED STATE HELPERS
// =============================================================================

// syncStatusBar pushes the current thread and delivery counts into
// the status bar.
func (m *Model) syncStatusBar() {
	pending := 0
	failed := 0
	for _, e := range m.thread.Entries {
		switch e.State {
		case model.StatePending:
			pending++
		case model.StateFailed:
			failed++
		}
	}
	m.statusBar.SetDeliveryCounts(pending, failed)
	m.statusBar.SetConversation(m.thread.DisplayTitle(), m.thread.Len(), m.thread.TotalTokens())
	m.statusBar.SetAuthenticated(m.authenticated)

	switch {
	case m.offline:
		m.statusBar.SetStatus(components.StatusOffline)
	case m.state == StateStreaming:
		m.statusBar.SetStatus(components.StatusStreaming)
	case m.state == StateSending:
		m.statusBar.SetStatus(components.StatusSending)
	default:
		m.statusBar.SetStatus(components.StatusReady)
	}
}

// refreshViewport re-renders the thread into the viewport. With
// follow set, the view snaps to the newest entry unless the user has
// scrolled away from the bottom.
func (m *Model) refreshViewport(follow bool) {
	wasAtBottom := m.viewport.AtBottom()

	list := components.NewEntryList(m.theme)
	list.SetWidth(m.viewport.Width)
	list.ShowTimestamps = m.theme.GetLayoutMode() != styles.LayoutNarrow
	list.SetEntries(m.thread.Entries)

	m.viewport.SetContent(list.View())
	if follow && wasAtBottom {
		m.viewport.GotoBottom()
	}
	m.syncStatusBar()
}

// setNotice shows a transient line in the footer and returns the
// command that clears it.
func (m *Model) setNotice(text string) tea.Cmd {
	m.notice = text
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return noticeExpiredMsg{}
	})
}
