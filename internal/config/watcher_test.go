// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// WATCHER
// =============================================================================

// startWatcher redirects the state dir to a temp dir, primes the global
// config, and returns a running watcher plus the channel its reloads land on.
func startWatcher(t *testing.T) (string, <-chan *Config) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("FOUNDRY_STATE_DIR", dir)
	ResetGlobalForTesting()
	t.Cleanup(ResetGlobalForTesting)

	require.Equal(t, "dark", Global().UI.Theme, "fresh state dir should load defaults")

	reloads := make(chan *Config, 1)
	w, err := NewWatcher(func(cfg *Config) {
		select {
		case reloads <- cfg:
		default:
		}
	})
	require.NoError(t, err, "NewWatcher should succeed")
	t.Cleanup(func() { w.Close() })

	require.NoError(t, w.Watch(), "Watch should start on an existing state dir")
	return dir, reloads
}

func awaitReload(t *testing.T, reloads <-chan *Config) *Config {
	t.Helper()
	select {
	case cfg := <-reloads:
		return cfg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a config reload")
		return nil
	}
}

func TestWatcherReloadsOnConfigWrite(t *testing.T) {
	dir, reloads := startWatcher(t)

	content := "[ui]\ntheme = \"light\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	cfg := awaitReload(t, reloads)
	require.Equal(t, "light", cfg.UI.Theme, "callback should see the edited theme")
	require.Equal(t, "light", Global().UI.Theme, "global config should be replaced by the reload")
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir, reloads := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("scratch"), 0600))

	select {
	case <-reloads:
		t.Fatal("reload fired for a file that is not the config")
	case <-time.After(800 * time.Millisecond):
	}
	require.Equal(t, "dark", Global().UI.Theme, "global config should be untouched")
}

func TestWatcherKeepsRunningConfigOnBrokenEdit(t *testing.T) {
	dir, reloads := startWatcher(t)
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte("[ui\ntheme = ???"), 0600))

	// Long enough for the debounce to fire the failed reload attempt.
	select {
	case <-reloads:
		t.Fatal("reload fired for a config that does not parse")
	case <-time.After(800 * time.Millisecond):
	}
	require.Equal(t, "dark", Global().UI.Theme, "broken edit must not tear down the running config")

	// A corrected save afterwards still goes through.
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600))
	cfg := awaitReload(t, reloads)
	require.Equal(t, "light", cfg.UI.Theme, "watcher should recover once the file parses again")
}
