// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// =============================================================================
// PROVIDER
// =============================================================================

func TestKeyIsIdempotent(t *testing.T) {
	p := NewProvider(NewMemStore())

	first, err := p.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if first == "" {
		t.Fatal("Key returned empty string")
	}

	second, err := p.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if first != second {
		t.Errorf("repeated Key calls differ: %q vs %q", first, second)
	}
}

func TestKeySurvivesNewProvider(t *testing.T) {
	store := NewMemStore()

	p1 := NewProvider(store)
	first, err := p1.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	// A new provider over the same store models a process restart.
	p2 := NewProvider(store)
	second, err := p2.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if first != second {
		t.Errorf("key changed across providers: %q vs %q", first, second)
	}
}

func TestResetYieldsFreshKey(t *testing.T) {
	p := NewProvider(NewMemStore())

	first, err := p.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}

	if err := p.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	second, err := p.Key()
	if err != nil {
		t.Fatalf("Key after Reset failed: %v", err)
	}
	if second == "" {
		t.Fatal("Key after Reset returned empty string")
	}
	if first == second {
		t.Errorf("key after Reset unchanged: %q", first)
	}
}

func TestKeyConcurrentAccess(t *testing.T) {
	p := NewProvider(NewMemStore())

	const goroutines = 16
	keys := make([]string, goroutines)
	var wg sync.WaitGroup

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := p.Key()
			if err != nil {
				t.Errorf("Key failed: %v", err)
				return
			}
			keys[i] = key
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if keys[i] != keys[0] {
			t.Fatalf("concurrent Key calls diverged: %q vs %q", keys[i], keys[0])
		}
	}
}

// =============================================================================
// FILE STORE
// =============================================================================

func TestFileStorePersistsKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	if key, err := store.Load(); err != nil || key != "" {
		t.Fatalf("Load on missing file = (%q, %v), want (\"\", nil)", key, err)
	}

	if err := store.Save("key-123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}

	key, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if key != "key-123" {
		t.Errorf("Load = %q, want key-123", key)
	}

	if store.CreatedAt().IsZero() {
		t.Error("CreatedAt is zero after Save")
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewFileStore(path)

	// Clearing a store that never saved is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear on missing file failed: %v", err)
	}

	if err := store.Save("key-123"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	key, err := store.Load()
	if err != nil {
		t.Fatalf("Load after Clear failed: %v", err)
	}
	if key != "" {
		t.Errorf("Load after Clear = %q, want empty", key)
	}
}

func TestFileStoreCorruptFileTreatedAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	store := NewFileStore(path)
	key, err := store.Load()
	if err != nil {
		t.Fatalf("Load on corrupt file failed: %v", err)
	}
	if key != "" {
		t.Errorf("Load on corrupt file = %q, want empty", key)
	}

	// A provider over the corrupt store recovers by generating fresh.
	p := NewProvider(store)
	fresh, err := p.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if fresh == "" {
		t.Error("Key returned empty string over corrupt store")
	}
}
