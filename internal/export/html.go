// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders documents to a standalone HTML page with
// embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a document to HTML.
func (e *HTMLExporter) Export(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}
	if len(doc.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(doc.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"foundry-tui\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", doc.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(doc))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for i := range doc.Messages {
		sb.WriteString(e.renderMessage(&doc.Messages[i]))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>foundry-tui</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString(e.getScript())
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(doc *Document) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(doc.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	if doc.Variant != "" {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Agent:</strong> %s</span>\n", html.EscapeString(doc.Variant)))
	}
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(doc.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(doc.Messages)))
	if doc.TotalTokens > 0 {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tokens:</strong> %d</span>\n", doc.TotalTokens))
	}
	sb.WriteString("                <button class=\"theme-toggle\" onclick=\"toggleTheme()\" title=\"Toggle theme\">[Theme]</button>\n")
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg *DocMessage) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role)
	if roleClass == "" {
		roleClass = "unknown"
	}
	classes := fmt.Sprintf("message %s-message", roleClass)
	if msg.Failed {
		classes += " failed-message"
	}
	sb.WriteString(fmt.Sprintf("            <div class=\"%s\">\n", classes))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", roleLabel(msg.Role)))
	if e.options.IncludeTimestamps && !msg.Timestamp.IsZero() {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("\n                </div>\n")

	if msg.ImageURL != "" {
		sb.WriteString(fmt.Sprintf("                <img class=\"generated-image\" src=\"%s\" alt=\"generated image\">\n",
			html.EscapeString(msg.ImageURL)))
	}
	if len(msg.Attachments) > 0 {
		sb.WriteString("                <div class=\"attachments\">Attachments: ")
		for i, a := range msg.Attachments {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(fmt.Sprintf("<code>%s</code>", html.EscapeString(a)))
		}
		sb.WriteString("</div>\n")
	}
	if msg.Failed {
		detail := msg.FailureDetail
		if detail == "" {
			detail = "not delivered"
		}
		sb.WriteString(fmt.Sprintf("                <div class=\"failure\">Delivery failed: %s</div>\n",
			html.EscapeString(detail)))
	}
	if msg.Interrupted {
		sb.WriteString("                <div class=\"failure\">Response interrupted before completion.</div>\n")
	}
	if msg.Role == "assistant" && e.options.IncludeMetadata && msg.TokensUsed > 0 {
		sb.WriteString(fmt.Sprintf("                <div class=\"message-stats\"><span class=\"stat\">Tokens: %d</span></div>\n", msg.TokensUsed))
	}

	sb.WriteString("            </div>\n")

	return sb.String()
}

// =============================================================================
// CONTENT FORMATTING
// =============================================================================

var (
	codeBlockRegex  = regexp.MustCompile("```([a-zA-Z0-9_+-]*)\n([\\s\\S]*?)```")
	inlineCodeRegex = regexp.MustCompile("`([^`]+)`")
)

// formatContent converts markdown-ish content to HTML: fenced code
// blocks, inline code, paragraph breaks. Content is escaped first.
func (e *HTMLExporter) formatContent(content string) string {
	content = html.EscapeString(content)

	content = codeBlockRegex.ReplaceAllStringFunc(content, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		lang := parts[1]
		code := parts[2]

		langLabel := ""
		if lang != "" {
			langLabel = fmt.Sprintf("<div class=\"code-lang\">%s</div>", html.EscapeString(lang))
		}

		return fmt.Sprintf("<div class=\"code-block\">%s<pre><code class=\"language-%s\">%s</code></pre></div>",
			langLabel, html.EscapeString(lang), strings.TrimSpace(code))
	})

	content = inlineCodeRegex.ReplaceAllString(content, "<code class=\"inline-code\">$1</code>")

	lines := strings.Split(content, "\n")
	var formatted []string
	inParagraph := false

	for i, line := range lines {
		line = strings.TrimSpace(line)

		if strings.Contains(line, "<div class=\"code-block\">") ||
			strings.Contains(line, "</div>") ||
			strings.Contains(line, "<pre>") ||
			strings.Contains(line, "</pre>") {
			formatted = append(formatted, lines[i])
			inParagraph = false
			continue
		}

		if line == "" {
			if inParagraph {
				formatted = append(formatted, "</p>")
				inParagraph = false
			}
			formatted = append(formatted, "")
		} else {
			if !inParagraph && !strings.HasPrefix(line, "<") {
				formatted = append(formatted, "<p>"+line)
				inParagraph = true
			} else {
				formatted = append(formatted, line)
			}
		}
	}

	if inParagraph {
		formatted = append(formatted, "</p>")
	}

	return strings.Join(formatted, "\n")
}

// =============================================================================
// EMBEDDED CSS
// =============================================================================

// getCSS returns the embedded CSS for the HTML export.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Source Code Pro", monospace;
        }

        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --assistant-bg: #24283b;
            --code-bg: #16161e;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-red: #f7768e;
        }

        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --assistant-bg: #ffffff;
            --code-bg: #f6f8fa;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-red: #d73a49;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
            transition: background 0.3s ease, color 0.3s ease;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            overflow: hidden;
        }

        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 { font-size: 28px; margin-bottom: 16px; }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            align-items: center;
            color: var(--text-secondary);
            font-size: 14px;
        }

        .theme-toggle {
            margin-left: auto;
            background: var(--bg-secondary);
            color: var(--text-primary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 4px 12px;
            cursor: pointer;
            font-size: 13px;
        }

        .conversation { padding: 24px 32px; }

        .message {
            margin-bottom: 20px;
            padding: 16px 20px;
            border-radius: 8px;
            border: 1px solid var(--border-color);
        }

        .user-message { background: var(--user-bg); border-left: 3px solid var(--accent-blue); }
        .assistant-message { background: var(--assistant-bg); border-left: 3px solid var(--accent-green); }
        .failed-message { border-left: 3px solid var(--accent-red); }

        .message-header {
            display: flex;
            justify-content: space-between;
            margin-bottom: 8px;
            font-size: 13px;
        }

        .role-label { font-weight: 600; color: var(--text-secondary); }
        .timestamp { color: var(--text-muted); }

        .message-content { word-wrap: break-word; }
        .message-content p { margin-bottom: 8px; }

        .generated-image {
            max-width: 100%;
            border-radius: 6px;
            margin-top: 12px;
        }

        .attachments {
            margin-top: 8px;
            font-size: 13px;
            color: var(--text-muted);
        }

        .failure {
            margin-top: 8px;
            font-size: 13px;
            color: var(--accent-red);
        }

        .message-stats {
            margin-top: 8px;
            font-size: 12px;
            color: var(--text-muted);
        }

        .code-block {
            margin: 12px 0;
            border-radius: 6px;
            overflow: hidden;
            border: 1px solid var(--border-color);
        }

        .code-lang {
            padding: 4px 12px;
            background: var(--bg-tertiary);
            font-family: var(--font-mono);
            font-size: 12px;
            color: var(--text-muted);
        }

        .code-block pre {
            padding: 12px;
            background: var(--code-bg);
            overflow-x: auto;
        }

        .code-block code, .inline-code {
            font-family: var(--font-mono);
            font-size: 14px;
        }

        .inline-code {
            padding: 2px 6px;
            background: var(--code-bg);
            border-radius: 4px;
        }

        .footer {
            padding: 20px 32px;
            border-top: 1px solid var(--border-color);
            color: var(--text-muted);
            font-size: 13px;
            text-align: center;
        }
    </style>
`
}

// getScript returns the theme toggle script.
func (e *HTMLExporter) getScript() string {
	return `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.replace('dark-theme', 'light-theme');
            } else {
                body.classList.replace('light-theme', 'dark-theme');
            }
        }
    </script>
`
}
