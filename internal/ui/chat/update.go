// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/foundry-tui/internal/agent"
	"github.com/jeranaias/foundry-tui/internal/export"
	"github.com/jeranaias/foundry-tui/internal/model"
	"github.com/jeranaias/foundry-tui/internal/tasks"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// titleRunes caps the conversation title derived from the first
// message.
const titleRunes = 48

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey routes key presses. Overlays swallow input first, then
// global bindings, then the focused pane.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.lastError != nil {
		if m.lastError.Dismissible {
			m.lastError = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Interrupt):
		return m.handleInterrupt()

	case key.Matches(msg, m.keys.ToggleSidebar):
		return m.handleToggleFocus()

	case key.Matches(msg, m.keys.Retry):
		return m.handleRetry()

	case key.Matches(msg, m.keys.NewConversation):
		return m.handleNewConversation()

	case key.Matches(msg, m.keys.Export):
		return m.handleExport()

	case key.Matches(msg, m.keys.ResetContext):
		return m.handleResetContext()

	case key.Matches(msg, m.keys.Refresh):
		return m.handleRefresh()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == FocusSidebar {
		return m.handleSidebarKey(msg)
	}

	if key.Matches(msg, m.keys.Submit) {
		return m.handleSubmit()
	}

	return m.updateComponents(msg)
}

// handleToggleFocus moves focus between the input and the sidebar.
func (m Model) handleToggleFocus() (tea.Model, tea.Cmd) {
	if m.renaming {
		return m, nil
	}
	m.confirmDelete = ""
	if m.focus == FocusInput {
		m.focus = FocusSidebar
		m.input.Blur()
	} else {
		m.focus = FocusInput
		m.input.Focus()
	}
	return m, nil
}

// handleInterrupt stops whatever is in flight: a rename prompt, a
// streaming reply, or sidebar focus, in that order.
func (m Model) handleInterrupt() (tea.Model, tea.Cmd) {
	if m.renaming {
		m = m.endRename()
		return m, nil
	}
	if m.state == StateStreaming && m.streamer.Active() {
		m.streamer.Interrupt()
		return m, nil
	}
	if m.focus == FocusSidebar {
		m.focus = FocusInput
		m.input.Focus()
	}
	return m, nil
}

// handleSidebarKey drives the conversation list. Any key other than
// delete disarms a pending delete confirmation.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.ListDelete) {
		m.confirmDelete = ""
	}
	switch {
	case key.Matches(msg, m.keys.ListUp):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.ListDown):
		if m.selected < len(m.conversations)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.ListOpen):
		return m.openSelected()

	case key.Matches(msg, m.keys.ListDelete):
		return m.deleteSelected()

	case key.Matches(msg, m.keys.ListRename):
		return m.beginRename()
	}
	return m, nil
}

// openSelected switches to the selected conversation. The thread is
// cleared before the fetch starts so stale messages never show under
// the new title.
func (m Model) openSelected() (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(m.conversations) {
		return m, nil
	}
	conv := m.conversations[m.selected]

	m.focus = FocusInput
	m.input.Focus()

	if conv.ID == m.thread.ConversationID {
		return m, nil
	}
	if m.state == StateStreaming && m.streamer.Active() {
		m.streamer.Interrupt()
	}

	m.thread = model.NewThread(conv.ID, conv.Title)
	m.state = StateReady
	m.spin.Stop()
	m.refreshViewport(false)

	return m, m.loadThreadCmd(conv.ID, conv.Title)
}

// deleteSelected queues a delete for the selected conversation. The
// first press arms a confirmation; only a second press on the same
// conversation commits it.
func (m Model) deleteSelected() (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(m.conversations) {
		return m, nil
	}
	conv := m.conversations[m.selected]

	if m.confirmDelete != conv.ID {
		m.confirmDelete = conv.ID
		return m, m.setNotice("Press d again to delete \"" + util.TruncateRunes(conv.Title, 24) + "\"")
	}
	m.confirmDelete = ""
	client := m.client

	task := tasks.NewTask("delete "+conv.Title, conv.ID, func(ctx context.Context) error {
		return client.DeleteConversation(ctx, conv.ID)
	})
	m.pending[task.ID] = &pendingMutation{
		kind:           mutationDelete,
		conversationID: conv.ID,
		title:          conv.Title,
	}
	if err := m.queue.Enqueue(task); err != nil {
		delete(m.pending, task.ID)
		e := NewErrorMsg("Delete failed", err.Error())
		m.lastError = &e
		return m, nil
	}

	return m, m.setNotice("Deleting \"" + util.TruncateRunes(conv.Title, 24) + "\"...")
}

// beginRename repurposes the input line as a rename prompt for the
// selected conversation.
func (m Model) beginRename() (tea.Model, tea.Cmd) {
	if m.selected < 0 || m.selected >= len(m.conversations) {
		return m, nil
	}
	conv := m.conversations[m.selected]

	m.renaming = true
	m.renameID = conv.ID
	m.focus = FocusInput
	m.input.Prompt = "rename> "
	m.input.SetValue(conv.Title)
	m.input.CursorEnd()
	m.input.Focus()
	return m, nil
}

// endRename restores the input line to message mode.
func (m Model) endRename() Model {
	m.renaming = false
	m.renameID = ""
	m.input.Prompt = "> "
	m.input.Reset()
	return m
}

// commitRename queues the rename typed into the prompt.
func (m Model) commitRename() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.input.Value())
	renameID := m.renameID
	m = m.endRename()

	if title == "" || renameID == "" {
		return m, nil
	}

	client := m.client
	task := tasks.NewTask("rename to "+title, renameID, func(ctx context.Context) error {
		return client.RenameConversation(ctx, renameID, title)
	})
	m.pending[task.ID] = &pendingMutation{
		kind:           mutationRename,
		conversationID: renameID,
		title:          title,
	}
	if err := m.queue.Enqueue(task); err != nil {
		delete(m.pending, task.ID)
		e := NewErrorMsg("Rename failed", err.Error())
		m.lastError = &e
		return m, nil
	}
	return m, nil
}

// =============================================================================
// SUBMIT
// =============================================================================

// handleSubmit sends what the input holds: a rename commit, a slash
// command, or a chat message.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	if m.renaming {
		return m.commitRename()
	}
	if m.state != StateReady {
		return m, nil
	}

	raw := strings.TrimSpace(m.input.Value())
	if raw == "" {
		return m, nil
	}

	if strings.HasPrefix(raw, "/") {
		return m.handleSlashCommand(raw)
	}

	entry := model.NewUserEntry(raw)
	m.thread.Append(entry)
	m.input.Reset()

	if m.thread.ConversationID == "" {
		return m.createThenDispatch(entry)
	}
	return m.dispatchEntry(entry)
}

// handleSlashCommand runs input commands of the form /name args.
func (m Model) handleSlashCommand(raw string) (tea.Model, tea.Cmd) {
	name := raw
	args := ""
	if i := strings.IndexByte(raw, ' '); i > 0 {
		name, args = raw[:i], strings.TrimSpace(raw[i+1:])
	}

	switch strings.ToLower(name) {
	case "/image":
		if args == "" {
			e := NewErrorMsg("Missing prompt", "Usage: /image <description of the image>")
			m.lastError = &e
			return m, nil
		}
		entry := model.NewImageEntry(args)
		m.thread.Append(entry)
		m.input.Reset()
		if m.thread.ConversationID == "" {
			return m.createThenDispatch(entry)
		}
		return m.dispatchEntry(entry)

	case "/upload":
		if args == "" {
			e := NewErrorMsg("Missing path", "Usage: /upload <path to file>")
			m.lastError = &e
			return m, nil
		}
		entry := model.NewUploadEntry(args)
		m.thread.Append(entry)
		m.input.Reset()
		if m.thread.ConversationID == "" {
			return m.createThenDispatch(entry)
		}
		return m.dispatchEntry(entry)

	case "/new":
		m.input.Reset()
		return m.handleNewConversation()

	case "/export":
		m.input.Reset()
		return m.handleExport()

	case "/help":
		m.input.Reset()
		m.showHelp = true
		return m, nil

	default:
		e := ErrorMsg{
			Title:   "Unknown command",
			Message: name + " is not a command.",
			Suggestions: []string{
				"/image <prompt> generates an image",
				"/upload <path> attaches a file",
				"/new starts a conversation",
				"/export saves the transcript",
			},
			Dismissible: true,
		}
		m.lastError = &e
		return m, nil
	}
}

// =============================================================================
// DISPATCH
// =============================================================================

// dispatchEntry sends a pending entry to the backend using the
// operation its payload names. The conversation must already exist.
func (m Model) dispatchEntry(entry *model.Entry) (tea.Model, tea.Cmd) {
	convID := m.thread.ConversationID
	payload := entry.Payload
	if payload == nil {
		payload = &model.Payload{Kind: model.PayloadSend, Content: entry.Content}
	}

	switch payload.Kind {
	case model.PayloadGenerateImage:
		m.state = StateSending
		m.spin.SetDetail("Generating image")
		m.refreshViewport(true)
		return m, tea.Batch(m.spin.Start(), m.generateImageCmd(convID, payload.Content, entry.LocalID))

	case model.PayloadUpload:
		m.state = StateSending
		m.spin.SetDetail("Uploading " + filepath.Base(payload.Path))
		m.refreshViewport(true)
		return m, tea.Batch(m.spin.Start(), m.uploadFileCmd(convID, payload.Path, entry.LocalID))

	default:
		if m.streamingEnabled {
			assistant := model.NewStreamingEntry()
			m.thread.Append(assistant)
			m.state = StateStreaming

			opts := agent.SendOptions{IncludeContext: m.includeContext}
			if !m.streamer.Start(convID, payload.Content, opts, entry.LocalID, assistant.LocalID) {
				m.thread.RemoveEntry(assistant.LocalID)
				entry.MarkFailed("another reply is still streaming")
				m.state = StateReady
			}
			m.refreshViewport(true)
			return m, nil
		}

		m.state = StateSending
		m.spin.SetDetail("")
		m.refreshViewport(true)
		return m, tea.Batch(m.spin.Start(), m.sendMessageCmd(convID, payload.Content, entry.LocalID))
	}
}

// createThenDispatch queues the conversation create that must precede
// the entry's first send. The entry waits in pending state; the task
// completion dispatches it.
func (m Model) createThenDispatch(entry *model.Entry) (tea.Model, tea.Cmd) {
	payload := entry.Payload
	if payload == nil {
		payload = &model.Payload{Kind: model.PayloadSend, Content: entry.Content}
	}

	title := deriveTitle(payload)
	client := m.client

	pm := &pendingMutation{
		kind:        mutationCreate,
		title:       title,
		sendLocalID: entry.LocalID,
		sendKind:    payload.Kind,
		sendContent: payload.Content,
		sendPath:    payload.Path,
	}
	task := tasks.NewTask("create conversation", "", func(ctx context.Context) error {
		conv, err := client.CreateConversation(ctx, title)
		if err != nil {
			return err
		}
		pm.created = conv
		return nil
	})

	m.pending[task.ID] = pm
	if err := m.queue.Enqueue(task); err != nil {
		delete(m.pending, task.ID)
		entry.MarkFailed("could not queue the request")
		m.refreshViewport(true)
		return m, nil
	}

	m.state = StateSending
	m.spin.SetDetail("")
	m.refreshViewport(true)
	return m, m.spin.Start()
}

// deriveTitle names a new conversation after its first message.
func deriveTitle(payload *model.Payload) string {
	switch payload.Kind {
	case model.PayloadUpload:
		return filepath.Base(payload.Path)
	default:
		return util.TruncateRunes(util.FirstLine(payload.Content), titleRunes)
	}
}

// =============================================================================
// RETRY AND NEW CONVERSATION
// =============================================================================

// handleRetry re-dispatches the most recent failed entry using the
// payload it carried the first time.
func (m Model) handleRetry() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}

	var entry *model.Entry
	for i := len(m.thread.Entries) - 1; i >= 0; i-- {
		if m.thread.Entries[i].CanRetry() {
			entry = m.thread.Entries[i]
			break
		}
	}
	if entry == nil {
		return m, m.setNotice("Nothing to retry")
	}

	entry.MarkRetrying()
	if m.thread.ConversationID == "" {
		return m.createThenDispatch(entry)
	}
	return m.dispatchEntry(entry)
}

// handleNewConversation switches to an empty draft thread. The
// backend conversation is created by the first send.
func (m Model) handleNewConversation() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}
	if m.thread.ConversationID == "" && m.thread.Len() == 0 {
		return m, nil
	}

	m.thread = model.NewThread("", "")
	m.focus = FocusInput
	m.input.Focus()
	m.refreshViewport(false)
	return m, nil
}

// =============================================================================
// EXPORT
// =============================================================================

// handleExport snapshots the thread and writes it in the configured
// format.
func (m Model) handleExport() (tea.Model, tea.Cmd) {
	if m.thread.Len() == 0 {
		return m, m.setNotice("Nothing to export yet")
	}
	doc := export.FromThread(m.thread, m.variant)
	return m, exportDocumentCmd(doc, m.exportFormat, m.exportDir)
}

// handleExportDone reports the written path or the failure.
func (m Model) handleExportDone(msg ExportDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		e := NewErrorMsg("Export failed", msg.Err.Error())
		m.lastError = &e
		return m, nil
	}
	return m, m.setNotice("Exported to " + msg.Path)
}

// =============================================================================
// AGENT CONTEXT
// =============================================================================

// handleResetContext asks the backend to discard the agent's working
// context. Stored conversations are untouched, so the thread on screen
// stays as it is.
func (m Model) handleResetContext() (tea.Model, tea.Cmd) {
	if m.state != StateReady {
		return m, nil
	}
	return m, tea.Batch(m.resetContextCmd(), m.setNotice("Resetting agent context..."))
}

// handleContextReset reports the outcome of the reset.
func (m Model) handleContextReset(msg ContextResetMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.logger.Warn("agent context reset failed", zap.Error(msg.Err))
		e := errorFromAgent("Context reset failed", msg.Err)
		m.lastError = &e
		return m, nil
	}
	return m, m.setNotice("Agent context reset")
}

// =============================================================================
// LOAD RESULTS
// =============================================================================

// handleRefresh reloads the conversation list. The fetch goes through
// the mutation queue, so a refresh pressed while a create or delete is
// queued returns a list that already includes it.
func (m Model) handleRefresh() (tea.Model, tea.Cmd) {
	m.enqueueListRefresh()
	return m, m.setNotice("Refreshing conversations...")
}

// enqueueListRefresh submits a list fetch behind everything already
// queued. The result lands as a TaskDoneMsg carrying the replacement
// list in the pending entry.
func (m Model) enqueueListRefresh() {
	client := m.client
	cache := m.cache
	variant := m.variant
	logger := m.logger

	pm := &pendingMutation{kind: mutationRefresh}
	task := tasks.NewTask("refresh conversations", "", func(ctx context.Context) error {
		msg := fetchConversations(ctx, client, cache, variant, logger)
		pm.loaded = &msg
		return msg.Err
	})
	m.pending[task.ID] = pm
	if err := m.queue.Enqueue(task); err != nil {
		delete(m.pending, task.ID)
		m.logger.Warn("list refresh not queued", zap.Error(err))
	}
}

// handleConversationsLoaded installs the fetched list.
func (m Model) handleConversationsLoaded(msg ConversationsLoadedMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch {
	case msg.Err != nil && len(msg.Conversations) == 0:
		m.offline = true
		m.logger.Warn("conversation list unavailable", zap.Error(msg.Err))
	case msg.FromCache:
		m.offline = true
		m.conversations = msg.Conversations
		cmd = m.setNotice("Offline: showing cached conversations")
	default:
		m.offline = false
		m.conversations = msg.Conversations
	}

	if m.selected >= len(m.conversations) {
		m.selected = len(m.conversations) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}

	m.syncStatusBar()
	return m, cmd
}

// handleThreadLoaded installs a conversation's history. Loads that
// finish after the user switched away are dropped.
func (m Model) handleThreadLoaded(msg ThreadLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.ConversationID != m.thread.ConversationID {
		return m, nil
	}

	if msg.Err != nil && len(msg.Messages) == 0 {
		e := errorFromAgent("Could not open the conversation", msg.Err)
		m.lastError = &e
		return m, nil
	}

	m.thread.Replace(msg.Messages)
	if msg.Title != "" {
		m.thread.Title = msg.Title
	}

	var cmd tea.Cmd
	if msg.FromCache {
		m.offline = true
		cmd = m.setNotice("Offline: showing cached messages")
	}

	m.refreshViewport(false)
	m.viewport.GotoBottom()
	return m, cmd
}

// =============================================================================
// DELIVERY RESULTS
// =============================================================================

// handleSendDone reconciles a non-streaming send with its optimistic
// entry and appends the reply.
func (m Model) handleSendDone(msg SendDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.spin.Stop()

	entry := m.thread.EntryByLocalID(msg.LocalID)
	if entry == nil {
		// The user switched threads while the call was in flight.
		m.syncStatusBar()
		return m, nil
	}

	if msg.Err != nil {
		m.logger.Warn("message send failed",
			zap.String("conversation_id", m.thread.ConversationID), zap.Error(msg.Err))
		entry.MarkFailed(friendlyDetail(msg.Err))
		m.refreshViewport(true)
		return m, m.authOverlay(msg.Err)
	}

	entry.MarkSent("")
	reply := model.FromMessage(msg.Result.Message)
	if reply.TokensUsed == 0 && msg.Result.Tokens.Total > 0 {
		reply.TokensUsed = msg.Result.Tokens.Total
	}
	m.thread.Append(reply)
	m.refreshViewport(true)
	return m, nil
}

// handleImageDone reconciles an image request.
func (m Model) handleImageDone(msg ImageDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.spin.Stop()
	m.spin.SetDetail("")

	entry := m.thread.EntryByLocalID(msg.LocalID)
	if entry == nil {
		m.syncStatusBar()
		return m, nil
	}

	if msg.Err != nil {
		m.logger.Warn("image generation failed",
			zap.String("conversation_id", m.thread.ConversationID), zap.Error(msg.Err))
		entry.MarkFailed(friendlyDetail(msg.Err))
		m.refreshViewport(true)
		return m, m.authOverlay(msg.Err)
	}

	entry.MarkSent("")
	m.thread.Append(model.FromMessage(*msg.Message))
	m.refreshViewport(true)
	return m, nil
}

// handleUploadDone reconciles an upload. A successful upload reloads
// the thread so the server-extracted attachment and any assistant
// acknowledgement replace the local echo.
func (m Model) handleUploadDone(msg UploadDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.spin.Stop()
	m.spin.SetDetail("")

	entry := m.thread.EntryByLocalID(msg.LocalID)
	if entry == nil {
		m.syncStatusBar()
		return m, nil
	}

	if msg.Err != nil {
		m.logger.Warn("file upload failed",
			zap.String("conversation_id", m.thread.ConversationID), zap.Error(msg.Err))
		entry.MarkFailed(friendlyDetail(msg.Err))
		m.refreshViewport(true)
		return m, m.authOverlay(msg.Err)
	}

	entry.MarkSent(msg.Result.MessageID)
	m.refreshViewport(true)

	cmds := []tea.Cmd{m.loadThreadCmd(m.thread.ConversationID, m.thread.Title)}
	if msg.Result.Status != "" {
		cmds = append(cmds, m.setNotice(msg.Result.Status))
	}
	return m, tea.Batch(cmds...)
}

// authOverlay raises the blocking overlay for failures the user must
// act on outside the chat, currently expired or missing logins.
func (m *Model) authOverlay(err error) tea.Cmd {
	var agentErr *agent.Error
	if !errors.As(err, &agentErr) {
		return nil
	}
	if agentErr.Status != 401 && agentErr.Status != 403 {
		return nil
	}
	e := errorFromAgent("Message not delivered", err)
	m.lastError = &e
	return nil
}

// =============================================================================
// STREAMING RESULTS
// =============================================================================

// handleStreamChunk appends one chunk to the accumulating reply.
func (m Model) handleStreamChunk(msg StreamChunkMsg) (tea.Model, tea.Cmd) {
	entry := m.thread.EntryByLocalID(msg.AssistantLocalID)
	if entry == nil {
		return m, nil
	}
	entry.AppendChunk(msg.Chunk)
	if m.state == StateSending {
		m.state = StateStreaming
	}
	m.refreshViewport(true)
	return m, nil
}

// handleStreamDone finalizes a completed stream: the user entry is
// confirmed delivered and the assistant entry freezes its content.
func (m Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.spin.Stop()

	if user := m.thread.EntryByLocalID(msg.UserLocalID); user != nil {
		user.MarkSent("")
	}
	if assistant := m.thread.EntryByLocalID(msg.AssistantLocalID); assistant != nil && msg.Result != nil {
		assistant.FinalizeStream(msg.Result.Message.ID)
		if assistant.TokensUsed == 0 {
			assistant.TokensUsed = msg.Result.Message.TokensUsed
		}
	}

	m.refreshViewport(true)
	return m, nil
}

// handleStreamFailed applies the failure policy: an interrupt keeps
// the partial reply and counts the user message as delivered, any
// other failure marks the user entry failed for retry and keeps or
// drops the partial depending on whether content arrived.
func (m Model) handleStreamFailed(msg StreamFailedMsg) (tea.Model, tea.Cmd) {
	m.state = StateReady
	m.spin.Stop()

	if assistant := m.thread.EntryByLocalID(msg.AssistantLocalID); assistant != nil {
		if kept := assistant.InterruptStream(); !kept {
			m.thread.RemoveEntry(assistant.LocalID)
		}
	}

	user := m.thread.EntryByLocalID(msg.UserLocalID)
	if user != nil {
		if msg.Interrupted {
			user.MarkSent("")
		} else {
			m.logger.Warn("stream failed",
				zap.String("conversation_id", m.thread.ConversationID), zap.Error(msg.Err))
			user.MarkFailed(friendlyDetail(msg.Err))
		}
	}

	m.refreshViewport(true)
	if !msg.Interrupted {
		return m, m.authOverlay(msg.Err)
	}
	return m, nil
}

// =============================================================================
// MUTATION RESULTS
// =============================================================================

// handleTaskDone resolves a finished queue task: creates dispatch
// their waiting send, deletes and renames update the list. Every
// successful mutation triggers a full list reload so the sidebar
// matches the backend.
func (m Model) handleTaskDone(msg TaskDoneMsg) (tea.Model, tea.Cmd) {
	listen := m.listenTasksCmd()

	pm, ok := m.pending[msg.Notification.TaskID]
	if !ok {
		return m, listen
	}
	delete(m.pending, msg.Notification.TaskID)

	switch pm.kind {
	case mutationCreate:
		return m.finishCreate(pm, msg.Notification, listen)
	case mutationDelete:
		return m.finishDelete(pm, msg.Notification, listen)
	case mutationRename:
		return m.finishRename(pm, msg.Notification, listen)
	case mutationRefresh:
		return m.finishRefresh(pm, listen)
	}
	return m, listen
}

// finishRefresh installs the replacement list a queued refresh
// fetched. The queue ran it after every mutation enqueued before it,
// so the list already reflects them.
func (m Model) finishRefresh(pm *pendingMutation, listen tea.Cmd) (tea.Model, tea.Cmd) {
	if pm.loaded == nil {
		return m, listen
	}
	mm, cmd := m.handleConversationsLoaded(*pm.loaded)
	return mm, tea.Batch(listen, cmd)
}

// finishCreate binds the new conversation to the draft thread and
// dispatches the send that was waiting on it.
func (m Model) finishCreate(pm *pendingMutation, n tasks.Notification, listen tea.Cmd) (tea.Model, tea.Cmd) {
	if n.Err != nil || pm.created == nil {
		m.state = StateReady
		m.spin.Stop()
		if entry := m.thread.EntryByLocalID(pm.sendLocalID); entry != nil {
			entry.MarkFailed(friendlyDetail(n.Err))
		}
		m.refreshViewport(true)
		return m, tea.Batch(listen, m.authOverlay(n.Err))
	}

	conv := *pm.created
	m.thread.ConversationID = conv.ID
	m.thread.Title = conv.Title
	m.conversations = append([]agent.Conversation{conv}, m.conversations...)
	m.selected = 0

	entry := m.thread.EntryByLocalID(pm.sendLocalID)
	if entry == nil {
		// The draft was abandoned before the create finished.
		m.state = StateReady
		m.spin.Stop()
		m.enqueueListRefresh()
		return m, listen
	}

	m.spin.Stop()
	m.enqueueListRefresh()
	mm, dispatch := m.dispatchEntry(entry)
	return mm, tea.Batch(listen, dispatch)
}

// finishDelete removes the conversation locally and clears the
// thread when the active conversation was deleted.
func (m Model) finishDelete(pm *pendingMutation, n tasks.Notification, listen tea.Cmd) (tea.Model, tea.Cmd) {
	if n.Err != nil {
		e := errorFromAgent("Delete failed", n.Err)
		m.lastError = &e
		return m, listen
	}

	kept := m.conversations[:0:0]
	for _, c := range m.conversations {
		if c.ID != pm.conversationID {
			kept = append(kept, c)
		}
	}
	m.conversations = kept
	if m.selected >= len(m.conversations) {
		m.selected = len(m.conversations) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}

	m.enqueueListRefresh()

	if pm.conversationID == m.thread.ConversationID {
		m.thread = model.NewThread("", "")
		m.focus = FocusInput
		m.input.Focus()
	}

	m.refreshViewport(false)
	return m, tea.Batch(listen, m.setNotice("Deleted \""+util.TruncateRunes(pm.title, 24)+"\""))
}

// finishRename applies the new title locally and reloads the list.
func (m Model) finishRename(pm *pendingMutation, n tasks.Notification, listen tea.Cmd) (tea.Model, tea.Cmd) {
	if n.Err != nil {
		e := errorFromAgent("Rename failed", n.Err)
		m.lastError = &e
		return m, listen
	}

	for i := range m.conversations {
		if m.conversations[i].ID == pm.conversationID {
			m.conversations[i].Title = pm.title
		}
	}
	if pm.conversationID == m.thread.ConversationID {
		m.thread.Title = pm.title
	}

	m.enqueueListRefresh()
	m.syncStatusBar()
	return m, listen
}

// =============================================================================
// HEALTH
// =============================================================================

// handleHealth flips the offline indicator and reloads the list when
// the backend comes back.
func (m Model) handleHealth(msg HealthMsg) (tea.Model, tea.Cmd) {
	wasOffline := m.offline
	m.offline = !msg.Healthy

	m.syncStatusBar()

	if wasOffline && !m.offline {
		m.enqueueListRefresh()
	}
	return m, healthTickCmd()
}
