// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// sealedPrefix marks a sealed value (format: ENC:base64(nonce|ciphertext|tag)).
const sealedPrefix = "ENC:"

// nonceSize is the AES-GCM nonce size in bytes.
const nonceSize = 12

// keySize is the AES-256 key size in bytes.
const keySize = 32

// saltSize is the PBKDF2 salt size in bytes.
const saltSize = 32

// kdfIterations is the PBKDF2-SHA-256 iteration count for deriving the
// sealing key from the machine-local secret.
const kdfIterations = 600000

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMalformedSealed indicates a sealed value or keyfile is not in the
	// expected format.
	ErrMalformedSealed = errors.New("malformed sealed value")
	// ErrUnsealFailed indicates unsealing failed (wrong key or tampered data).
	ErrUnsealFailed = errors.New("unseal failed: authentication tag mismatch")
)

// =============================================================================
// KEY MATERIAL
// =============================================================================

// keyMaterial is the machine-local secret the sealing key derives from.
// It lives beside the credentials file with 0600 permissions.
type keyMaterial struct {
	Salt   []byte `json:"salt"`
	Secret []byte `json:"secret"`
}

// zeroBytes zeros sensitive byte slices after use.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// loadOrCreateKeyMaterial reads the keyfile at path, generating and
// persisting fresh material on first use.
func loadOrCreateKeyMaterial(path string) (*keyMaterial, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var km keyMaterial
		if jerr := json.Unmarshal(data, &km); jerr != nil {
			return nil, fmt.Errorf("parse keyfile %s: %w", path, jerr)
		}
		if len(km.Salt) != saltSize || len(km.Secret) != keySize {
			return nil, fmt.Errorf("keyfile %s: %w", path, ErrMalformedSealed)
		}
		return &km, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read keyfile %s: %w", path, err)
	}

	km := &keyMaterial{
		Salt:   make([]byte, saltSize),
		Secret: make([]byte, keySize),
	}
	if _, err := io.ReadFull(rand.Reader, km.Salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, km.Secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	encoded, err := json.Marshal(km)
	if err != nil {
		return nil, fmt.Errorf("encode keyfile: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, encoded, 0600, 0700); err != nil {
		return nil, fmt.Errorf("write keyfile %s: %w", path, err)
	}
	return km, nil
}

// =============================================================================
// SEALER
// =============================================================================

// sealer seals and unseals short string values with AES-256-GCM under a
// key derived from the machine-local keyfile via PBKDF2-SHA-256.
type sealer struct {
	aead cipher.AEAD
}

// newSealer derives the sealing key from the keyfile at keyPath,
// creating the keyfile on first use.
func newSealer(keyPath string) (*sealer, error) {
	km, err := loadOrCreateKeyMaterial(keyPath)
	if err != nil {
		return nil, err
	}

	key := pbkdf2.Key(km.Secret, km.Salt, kdfIterations, keySize, sha256.New)
	defer zeroBytes(key)
	zeroBytes(km.Secret)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init GCM: %w", err)
	}
	return &sealer{aead: aead}, nil
}

// Seal encrypts plaintext and returns ENC:base64(nonce|ciphertext|tag).
func (s *sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// Unseal decrypts a value produced by Seal.
func (s *sealer) Unseal(value string) (string, error) {
	if !strings.HasPrefix(value, sealedPrefix) {
		return "", ErrMalformedSealed
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedSealed, err)
	}
	if len(raw) < nonceSize {
		return "", ErrMalformedSealed
	}
	plaintext, err := s.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrUnsealFailed
	}
	return string(plaintext), nil
}
