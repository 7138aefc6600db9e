// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestStore(t *testing.T) (*Store, string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	keyPath := filepath.Join(dir, "credentials.key")
	return NewStore(path, keyPath), path, keyPath
}

// =============================================================================
// STORE
// =============================================================================

func TestSaveAndToken(t *testing.T) {
	store, path, keyPath := newTestStore(t)
	const token = "eyJhbGciOiJIUzI1NiJ9.test-token-body.sig"

	if err := store.Save(token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	for _, p := range []string{path, keyPath} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Stat %s failed: %v", p, err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("%s mode = %v, want 0600", p, info.Mode().Perm())
		}
	}

	got, err := store.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if got != token {
		t.Errorf("Token = %q, want %q", got, token)
	}

	if store.SavedAt().IsZero() {
		t.Error("SavedAt is zero after Save")
	}
}

func TestTokenSealedAtRest(t *testing.T) {
	store, path, _ := newTestStore(t)
	const token = "super-secret-bearer-token"

	if err := store.Save(token); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if strings.Contains(string(data), token) {
		t.Error("credentials file contains the raw token")
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !strings.HasPrefix(rec.Token, sealedPrefix) {
		t.Errorf("stored token = %q, want %s prefix", rec.Token, sealedPrefix)
	}
}

func TestTokenMissingFile(t *testing.T) {
	store, _, _ := newTestStore(t)

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token on missing file failed: %v", err)
	}
	if token != "" {
		t.Errorf("Token = %q, want empty", token)
	}
}

func TestSaveRejectsEmptyToken(t *testing.T) {
	store, _, _ := newTestStore(t)
	if err := store.Save(""); err == nil {
		t.Fatal("Save with empty token succeeded, want error")
	}
}

func TestClearRemovesBothFiles(t *testing.T) {
	store, path, keyPath := newTestStore(t)

	if err := store.Save("token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	for _, p := range []string{path, keyPath} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after Clear", p)
		}
	}

	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token after Clear failed: %v", err)
	}
	if token != "" {
		t.Errorf("Token after Clear = %q, want empty", token)
	}

	// Clearing an already-empty store is fine.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}

func TestTamperedCredentialFails(t *testing.T) {
	store, path, _ := newTestStore(t)

	if err := store.Save("token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(rec.Token, sealedPrefix))
	if err != nil {
		t.Fatalf("DecodeString failed: %v", err)
	}
	raw[len(raw)-1] ^= 0xFF
	rec.Token = sealedPrefix + base64.StdEncoding.EncodeToString(raw)

	tampered, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if err := os.WriteFile(path, tampered, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := store.Token(); !errors.Is(err, ErrUnsealFailed) {
		t.Errorf("Token on tampered file = %v, want ErrUnsealFailed", err)
	}
}

func TestLostKeyfileFailsClosed(t *testing.T) {
	store, path, keyPath := newTestStore(t)

	if err := store.Save("token"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.Remove(keyPath); err != nil {
		t.Fatalf("Remove keyfile failed: %v", err)
	}

	// A fresh store regenerates key material that cannot unseal the
	// old credential. The error surfaces instead of an empty token.
	fresh := NewStore(path, keyPath)
	if _, err := fresh.Token(); !errors.Is(err, ErrUnsealFailed) {
		t.Errorf("Token after keyfile loss = %v, want ErrUnsealFailed", err)
	}
}

func TestStaticToken(t *testing.T) {
	src := StaticToken("fixed")
	token, err := src.Token()
	if err != nil {
		t.Fatalf("Token failed: %v", err)
	}
	if token != "fixed" {
		t.Errorf("Token = %q, want fixed", token)
	}
}

// =============================================================================
// SEALER
// =============================================================================

func TestSealUnsealRoundTrip(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "credentials.key")
	sl, err := newSealer(keyPath)
	if err != nil {
		t.Fatalf("newSealer failed: %v", err)
	}

	sealed, err := sl.Seal("plaintext value")
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) {
		t.Errorf("sealed = %q, want %s prefix", sealed, sealedPrefix)
	}

	got, err := sl.Unseal(sealed)
	if err != nil {
		t.Fatalf("Unseal failed: %v", err)
	}
	if got != "plaintext value" {
		t.Errorf("Unseal = %q, want original plaintext", got)
	}
}

func TestUnsealRejectsMalformed(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "credentials.key")
	sl, err := newSealer(keyPath)
	if err != nil {
		t.Fatalf("newSealer failed: %v", err)
	}

	cases := []string{
		"no-prefix",
		sealedPrefix + "!!!not-base64!!!",
		sealedPrefix + base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for _, c := range cases {
		if _, err := sl.Unseal(c); !errors.Is(err, ErrMalformedSealed) {
			t.Errorf("Unseal(%q) = %v, want ErrMalformedSealed", c, err)
		}
	}
}

// =============================================================================
// CLAIMS
// =============================================================================

func TestPeekClaims(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user_42",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := tok.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	claims, err := PeekClaims(signed)
	if err != nil {
		t.Fatalf("PeekClaims failed: %v", err)
	}
	if claims.Subject != "user_42" {
		t.Errorf("Subject = %q, want user_42", claims.Subject)
	}
	if !claims.IssuedAt.Equal(issued) {
		t.Errorf("IssuedAt = %v, want %v", claims.IssuedAt, issued)
	}
	if !claims.ExpiresAt.Equal(expires) {
		t.Errorf("ExpiresAt = %v, want %v", claims.ExpiresAt, expires)
	}
	if claims.Expired(time.Now()) {
		t.Error("Expired = true for a token valid another hour")
	}
	if !claims.Expired(expires.Add(time.Second)) {
		t.Error("Expired = false past the exp claim")
	}
}

func TestPeekClaimsNoExpiry(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user_42",
	})
	signed, err := tok.SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}

	claims, err := PeekClaims(signed)
	if err != nil {
		t.Fatalf("PeekClaims failed: %v", err)
	}
	if claims.Expired(time.Now().Add(1000 * time.Hour)) {
		t.Error("token without exp claim reported expired")
	}
}

func TestPeekClaimsRejectsGarbage(t *testing.T) {
	if _, err := PeekClaims("not-a-jwt"); err == nil {
		t.Fatal("PeekClaims on garbage succeeded, want error")
	}
}
