// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides UI components for the foundry-tui.
package components

import (
	"strings"
	"testing"
)

// =============================================================================
// CODE BLOCK TESTS
// =============================================================================

func TestNewCodeBlock(t *testing.T) {
	cb := NewCodeBlock("go", "package main")

	if cb.Language != "go" {
		t.Errorf("Language = %q, want go", cb.Language)
	}
	if cb.Code != "package main" {
		t.Errorf("Code = %q, want package main", cb.Code)
	}
	if cb.MaxWidth != 80 {
		t.Errorf("MaxWidth = %d, want 80", cb.MaxWidth)
	}
}

func TestCodeBlockRender(t *testing.T) {
	cb := NewCodeBlock("go", "package main\n\nfunc main() {}\n")
	rendered := cb.Render()

	if rendered == "" {
		t.Fatal("Render() returned empty output")
	}

	// Line numbers for all three lines
	for _, num := range []string{"1", "2", "3"} {
		if !strings.Contains(rendered, num) {
			t.Errorf("rendered block should contain line number %s", num)
		}
	}

	// Language badge
	if !strings.Contains(rendered, "go") {
		t.Error("rendered block should contain the language badge")
	}
}

func TestCodeBlockRenderNoLanguage(t *testing.T) {
	cb := NewCodeBlock("", "just some text without an obvious language")

	// Must not panic; highlighting falls back to plain text
	if rendered := cb.Render(); rendered == "" {
		t.Error("Render() without language should still produce output")
	}
}

// =============================================================================
// MARKDOWN PARSER TESTS
// =============================================================================

func TestParseCodeBlocks(t *testing.T) {
	text := "Before\n```go\nfmt.Println(\"hi\")\n```\nAfter"

	result := ParseCodeBlocks(text, 80)

	if !strings.Contains(result, "Before") {
		t.Error("prose before the fence should survive")
	}
	if !strings.Contains(result, "After") {
		t.Error("prose after the fence should survive")
	}
	if strings.Contains(result, "```") {
		t.Error("fences should be replaced by the rendered block")
	}
	if !strings.Contains(result, "Println") {
		t.Error("code content should survive rendering")
	}
}

func TestParseCodeBlocksUnclosedFence(t *testing.T) {
	text := "Intro\n```python\nprint('hi')"

	result := ParseCodeBlocks(text, 80)

	if !strings.Contains(result, "Intro") {
		t.Error("prose should survive an unclosed fence")
	}
	if !strings.Contains(result, "print") {
		t.Error("unclosed fence content should still render")
	}
}

func TestParseCodeBlocksNoCode(t *testing.T) {
	text := "Just plain prose.\nTwo lines of it."

	if got := ParseCodeBlocks(text, 80); got != text {
		t.Errorf("text without fences should pass through unchanged, got %q", got)
	}
}

// =============================================================================
// INLINE CODE TESTS
// =============================================================================

func TestParseInlineCode(t *testing.T) {
	result := ParseInlineCode("run `go test` to check")

	if strings.Contains(result, "`") {
		t.Errorf("backticks should be consumed, got %q", result)
	}
	if !strings.Contains(result, "go test") {
		t.Errorf("inline code content should survive, got %q", result)
	}
}

func TestParseInlineCodeUnclosed(t *testing.T) {
	result := ParseInlineCode("an unclosed `span")

	if !strings.Contains(result, "`span") {
		t.Errorf("unclosed backtick should be emitted literally, got %q", result)
	}
}

func TestDetectLanguage(t *testing.T) {
	code := "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"x\")\n}\n"

	// Chroma's analyser should recognize Go source; an empty result
	// would make Render fall back to plain text, which is also safe.
	lang := detectLanguage(code)
	if lang != "" && !strings.Contains(strings.ToLower(lang), "go") {
		t.Logf("detectLanguage() = %q (analyser picked a different lexer)", lang)
	}
}
