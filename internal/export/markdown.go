// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders documents to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a document to Markdown.
func (e *MarkdownExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(doc.Title)))
		if doc.Variant != "" {
			sb.WriteString(fmt.Sprintf("agent: %s\n", doc.Variant))
		}
		if doc.ConversationID != "" {
			sb.WriteString(fmt.Sprintf("conversation: %s\n", doc.ConversationID))
		}
		sb.WriteString(fmt.Sprintf("date: %s\n", doc.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("updated: %s\n", doc.UpdatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(doc.Messages)))
		if doc.TotalTokens > 0 {
			sb.WriteString(fmt.Sprintf("tokens: %d\n", doc.TotalTokens))
		}
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: foundry-tui\n")
		sb.WriteString("---\n\n")
	}

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(doc.Title)))

	// Metadata section
	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		if doc.Variant != "" {
			sb.WriteString(fmt.Sprintf("- **Agent**: %s\n", doc.Variant))
		}
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(doc.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(doc.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(doc.Messages)))
		if doc.TotalTokens > 0 {
			sb.WriteString(fmt.Sprintf("- **Tokens Used**: %d\n", doc.TotalTokens))
		}
		sb.WriteString("\n---\n\n")
	}

	// Conversation messages
	sb.WriteString("## Conversation\n\n")

	for i, msg := range doc.Messages {
		roleLabel := roleLabel(msg.Role)
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				roleLabel,
				formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", roleLabel))
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")

		if msg.ImageURL != "" {
			sb.WriteString(fmt.Sprintf("![generated image](%s)\n\n", msg.ImageURL))
		}
		if len(msg.Attachments) > 0 {
			sb.WriteString(fmt.Sprintf("Attachments: `%s`\n\n", strings.Join(msg.Attachments, "`, `")))
		}
		if msg.Failed {
			detail := msg.FailureDetail
			if detail == "" {
				detail = "not delivered"
			}
			sb.WriteString(fmt.Sprintf("> Delivery failed: %s\n\n", detail))
		}
		if msg.Interrupted {
			sb.WriteString("> Response interrupted before completion.\n\n")
		}
		if msg.Role == "assistant" && e.options.IncludeMetadata && msg.TokensUsed > 0 {
			sb.WriteString(fmt.Sprintf("<sub>Tokens: %d</sub>\n\n", msg.TokensUsed))
		}

		if i < len(doc.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from foundry-tui on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// FORMATTING HELPERS
// =============================================================================

// roleLabel returns a formatted label for the message role.
func roleLabel(role string) string {
	switch role {
	case "user":
		return "[User]"
	case "assistant":
		return "[Assistant]"
	case "":
		return "Unknown"
	default:
		runes := []rune(role)
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
