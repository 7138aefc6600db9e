// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logs", "test.log")

	logger, err := New(Options{Path: path, Level: "debug"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("send failed", zap.String("conversation_id", "conv_1"))
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	if entry["message"] != "send failed" {
		t.Errorf("message = %v, want %q", entry["message"], "send failed")
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["conversation_id"] != "conv_1" {
		t.Errorf("conversation_id = %v, want conv_1", entry["conversation_id"])
	}
}

func TestNewLevelFilters(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")

	logger, err := New(Options{Path: path, Level: "error"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Info("below threshold")
	logger.Sync()

	data, _ := os.ReadFile(path)
	if len(strings.TrimSpace(string(data))) != 0 {
		t.Errorf("info line recorded at error level: %q", string(data))
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(Options{Path: filepath.Join(t.TempDir(), "x.log"), Level: "verbose"})
	if err == nil {
		t.Fatal("expected error for invalid level, got nil")
	}
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Options{})
	if err == nil {
		t.Fatal("expected error for empty path, got nil")
	}
}

func TestNopNeverPanics(t *testing.T) {
	logger := Nop()
	logger.Info("discarded")
	logger.Error("also discarded")
}
