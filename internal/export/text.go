// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
)

// =============================================================================
// TEXT EXPORTER
// =============================================================================

// TextExporter renders documents to a plain transcript, suited to
// piping and pasting.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a new plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a document to plain text.
func (e *TextExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString(doc.Title + "\n")
	sb.WriteString(strings.Repeat("=", len([]rune(doc.Title))) + "\n")
	if e.options.IncludeMetadata {
		if doc.Variant != "" {
			sb.WriteString(fmt.Sprintf("Agent: %s\n", doc.Variant))
		}
		sb.WriteString(fmt.Sprintf("Created: %s\n", formatTimestamp(doc.CreatedAt)))
		sb.WriteString(fmt.Sprintf("Messages: %d\n", len(doc.Messages)))
	}
	sb.WriteString("\n")

	for _, msg := range doc.Messages {
		if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
			sb.WriteString(fmt.Sprintf("%s %s\n", roleLabel(msg.Role), formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(roleLabel(msg.Role) + "\n")
		}

		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n")

		if msg.ImageURL != "" {
			sb.WriteString(fmt.Sprintf("(image: %s)\n", msg.ImageURL))
		}
		if len(msg.Attachments) > 0 {
			sb.WriteString(fmt.Sprintf("(attachments: %s)\n", strings.Join(msg.Attachments, ", ")))
		}
		if msg.Failed {
			detail := msg.FailureDetail
			if detail == "" {
				detail = "not delivered"
			}
			sb.WriteString(fmt.Sprintf("(delivery failed: %s)\n", detail))
		}
		if msg.Interrupted {
			sb.WriteString("(response interrupted)\n")
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
