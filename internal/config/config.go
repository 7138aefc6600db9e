// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// foundry-tui.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - <state dir>/config.toml
//   - <state dir>/config.json
//   - Built-in defaults
//
// The state directory is ~/.foundry-tui, overridable with FOUNDRY_STATE_DIR.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/foundry-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Agent variant names. The hosted variant talks to the Foundry agent, the
// local variant to the on-premise agent; both sit behind the same contract.
const (
	VariantFoundry = "foundry"
	VariantLocal   = "local"
)

// Config represents the complete foundry-tui configuration.
type Config struct {
	// Version of the config schema, used for migrations.
	Version string `toml:"version" json:"version"`

	// Agent backend configuration.
	Agent AgentConfig `toml:"agent" json:"agent"`

	// UI configuration.
	UI UIConfig `toml:"ui" json:"ui"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging"`

	// Cache configuration (local thread cache).
	Cache CacheConfig `toml:"cache" json:"cache"`
}

// AgentConfig selects and parameterizes the backend agent variant.
type AgentConfig struct {
	// Variant is the active agent: "foundry" (hosted) or "local".
	Variant string `toml:"variant" json:"variant"`

	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string `toml:"base_url" json:"base_url"`

	// FoundryPath and LocalPath are the per-variant API prefixes under
	// BaseURL. They normally never change; they exist so a reverse proxy
	// that remounts the API stays usable.
	FoundryPath string `toml:"foundry_path" json:"foundry_path"`
	LocalPath   string `toml:"local_path" json:"local_path"`

	// TimeoutSecs bounds every non-upload call. A request that exceeds it
	// fails with a timeout error instead of hanging the thinking state.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// UploadTimeoutSecs bounds uploads, which carry file bodies and an
	// extraction step on the backend.
	UploadTimeoutSecs int `toml:"upload_timeout_secs" json:"upload_timeout_secs"`

	// Stream selects the server-sent-events send path when true.
	Stream bool `toml:"stream" json:"stream"`

	// IncludeUserContext is forwarded on every send; the backend decides
	// what it means.
	IncludeUserContext bool `toml:"include_user_context" json:"include_user_context"`

	// ListRefreshPerMin caps background conversation-list reloads.
	ListRefreshPerMin int `toml:"list_refresh_per_min" json:"list_refresh_per_min"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`

	// Markdown renders assistant messages through the markdown renderer
	// when true; plain text when false.
	Markdown bool `toml:"markdown" json:"markdown"`

	// SidebarWidth is the conversation list pane width in cells.
	SidebarWidth int `toml:"sidebar_width" json:"sidebar_width"`

	// CompactMode collapses message padding for small terminals.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// LoggingConfig controls the diagnostic log file.
type LoggingConfig struct {
	// Level is the minimum level recorded: debug, info, warn, error.
	Level string `toml:"level" json:"level"`

	// File is the log path. Empty means <state dir>/logs/foundry-tui.log.
	File string `toml:"file" json:"file"`

	// Rotation caps.
	MaxSizeMB  int  `toml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int  `toml:"max_backups" json:"max_backups"`
	MaxAgeDays int  `toml:"max_age_days" json:"max_age_days"`
	Compress   bool `toml:"compress" json:"compress"`
}

// CacheConfig controls the local thread cache.
type CacheConfig struct {
	// Enabled turns write-through caching of fetched threads on or off.
	Enabled bool `toml:"enabled" json:"enabled"`

	// Path is the SQLite database path. Empty means <state dir>/cache.db.
	Path string `toml:"path" json:"path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Agent: AgentConfig{
			Variant:            VariantFoundry,
			BaseURL:            "http://127.0.0.1:8000",
			FoundryPath:        "/api/foundry-agent",
			LocalPath:          "/api/local-agent",
			TimeoutSecs:        60,
			UploadTimeoutSecs:  180,
			Stream:             false,
			IncludeUserContext: true,
			ListRefreshPerMin:  30,
		},

		UI: UIConfig{
			Theme:        "dark",
			Markdown:     true,
			SidebarWidth: 32,
			CompactMode:  false,
		},

		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 30,
			Compress:   false,
		},

		Cache: CacheConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// =============================================================================
// STATE DIRECTORY AND PATH HELPERS
// =============================================================================

// StateDir returns the foundry-tui state directory. FOUNDRY_STATE_DIR
// overrides the default ~/.foundry-tui; pointing different terminal panes at
// different state dirs gives each its own session key.
func StateDir() (string, error) {
	if dir := os.Getenv("FOUNDRY_STATE_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".foundry-tui"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionPath returns the session key file path.
func SessionPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// CredentialsPath returns the credential file path.
func CredentialsPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.json"), nil
}

// CredentialsKeyPath returns the sealing keyfile path, kept beside the
// credential file.
func CredentialsKeyPath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials.key"), nil
}

// EnsureStateDir ensures the state directory exists. Owner-only: the
// directory holds the credential and session files.
func EnsureStateDir() error {
	dir, err := StateDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// LogPath resolves the effective log file path for this config.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs", "foundry-tui.log"), nil
}

// CachePath resolves the effective cache database path for this config.
func (c *Config) CachePath() (string, error) {
	if c.Cache.Path != "" {
		return c.Cache.Path, nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}

// VariantPath returns the API prefix for the configured variant.
func (c *Config) VariantPath() string {
	if c.Agent.Variant == VariantLocal {
		return c.Agent.LocalPath
	}
	return c.Agent.FoundryPath
}

// ensureSecurePermissions fixes permissions on config files. Config may hold
// nothing secret today, but the state dir convention is owner-only files.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Mode().Perm() != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", info.Mode().Perm(), err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// finishLoad applies env overrides, migration, defaults, and validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	if err := fillDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file into cfg. Keys missing from
// the file keep whatever cfg already holds.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by --config.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Agent
	if cfg.Agent.Variant == "" {
		cfg.Agent.Variant = defaults.Agent.Variant
	}
	if cfg.Agent.BaseURL == "" {
		cfg.Agent.BaseURL = defaults.Agent.BaseURL
	}
	if cfg.Agent.FoundryPath == "" {
		cfg.Agent.FoundryPath = defaults.Agent.FoundryPath
	}
	if cfg.Agent.LocalPath == "" {
		cfg.Agent.LocalPath = defaults.Agent.LocalPath
	}
	if cfg.Agent.TimeoutSecs <= 0 {
		cfg.Agent.TimeoutSecs = defaults.Agent.TimeoutSecs
	}
	if cfg.Agent.UploadTimeoutSecs <= 0 {
		cfg.Agent.UploadTimeoutSecs = defaults.Agent.UploadTimeoutSecs
	}
	if cfg.Agent.ListRefreshPerMin <= 0 {
		cfg.Agent.ListRefreshPerMin = defaults.Agent.ListRefreshPerMin
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.SidebarWidth <= 0 {
		cfg.UI.SidebarWidth = defaults.UI.SidebarWidth
	}

	// Logging
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = defaults.Logging.MaxSizeMB
	}
	if cfg.Logging.MaxBackups <= 0 {
		cfg.Logging.MaxBackups = defaults.Logging.MaxBackups
	}
	if cfg.Logging.MaxAgeDays <= 0 {
		cfg.Logging.MaxAgeDays = defaults.Logging.MaxAgeDays
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# foundry-tui configuration file")
	fmt.Fprintln(file, "# Generated by foundry-tui - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// SaveJSON saves the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	if err := EnsureStateDir(); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Agent
	switch c.Agent.Variant {
	case VariantFoundry, VariantLocal:
	default:
		errs = append(errs, ValidationError{
			Field:   "agent.variant",
			Message: fmt.Sprintf("invalid variant %q, must be one of: foundry, local", c.Agent.Variant),
		})
	}

	if u, err := url.Parse(c.Agent.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "agent.base_url",
			Message: fmt.Sprintf("invalid URL %q, must include scheme and host", c.Agent.BaseURL),
		})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{
			Field:   "agent.base_url",
			Message: fmt.Sprintf("unsupported scheme %q, must be http or https", u.Scheme),
		})
	}

	if !strings.HasPrefix(c.Agent.FoundryPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "agent.foundry_path",
			Message: "must start with /",
		})
	}
	if !strings.HasPrefix(c.Agent.LocalPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "agent.local_path",
			Message: "must start with /",
		})
	}

	if c.Agent.TimeoutSecs < 1 || c.Agent.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "agent.timeout_secs",
			Message: fmt.Sprintf("%d out of range, must be 1-600", c.Agent.TimeoutSecs),
		})
	}
	if c.Agent.UploadTimeoutSecs < 1 || c.Agent.UploadTimeoutSecs > 1800 {
		errs = append(errs, ValidationError{
			Field:   "agent.upload_timeout_secs",
			Message: fmt.Sprintf("%d out of range, must be 1-1800", c.Agent.UploadTimeoutSecs),
		})
	}
	if c.Agent.ListRefreshPerMin < 1 || c.Agent.ListRefreshPerMin > 600 {
		errs = append(errs, ValidationError{
			Field:   "agent.list_refresh_per_min",
			Message: fmt.Sprintf("%d out of range, must be 1-600", c.Agent.ListRefreshPerMin),
		})
	}

	// UI
	switch c.UI.Theme {
	case "dark", "light":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme %q, must be one of: dark, light", c.UI.Theme),
		})
	}
	if c.UI.SidebarWidth < 20 || c.UI.SidebarWidth > 80 {
		errs = append(errs, ValidationError{
			Field:   "ui.sidebar_width",
			Message: fmt.Sprintf("%d out of range, must be 20-80", c.UI.SidebarWidth),
		})
	}

	// Logging
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q, must be one of: debug, info, warn, error", c.Logging.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// MIGRATION
// =============================================================================

// Migrate upgrades configuration values written by earlier releases.
func (c *Config) Migrate() error {
	// The hosted variant was called "azure" before the backend renamed it.
	if c.Agent.Variant == "azure" {
		c.Agent.Variant = VariantFoundry
	}
	if c.Agent.FoundryPath == "/api/azure-agent" {
		c.Agent.FoundryPath = "/api/foundry-agent"
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies FOUNDRY_* environment variables over the loaded
// configuration. The bearer token is NOT configured here; it lives in the
// credential store.
func (c *Config) ApplyEnvOverrides() {
	if variant := os.Getenv("FOUNDRY_VARIANT"); variant != "" {
		c.Agent.Variant = strings.ToLower(variant)
	}

	if base := os.Getenv("FOUNDRY_BASE_URL"); base != "" {
		c.Agent.BaseURL = base
	}

	if timeout := os.Getenv("FOUNDRY_TIMEOUT_SECS"); timeout != "" {
		if n, err := strconv.Atoi(timeout); err == nil {
			c.Agent.TimeoutSecs = n
		}
	}

	if stream := os.Getenv("FOUNDRY_STREAM"); stream != "" {
		c.Agent.Stream = stream == "1" || strings.ToLower(stream) == "true"
	}

	if include := os.Getenv("FOUNDRY_INCLUDE_CONTEXT"); include != "" {
		c.Agent.IncludeUserContext = include == "1" || strings.ToLower(include) == "true"
	}

	if theme := os.Getenv("FOUNDRY_THEME"); theme != "" {
		c.UI.Theme = strings.ToLower(theme)
	}

	if level := os.Getenv("FOUNDRY_LOG_LEVEL"); level != "" {
		c.Logging.Level = strings.ToLower(level)
	}

	if cache := os.Getenv("FOUNDRY_CACHE"); cache != "" {
		c.Cache.Enabled = cache == "1" || strings.ToLower(cache) == "true"
	}
}

// =============================================================================
// GLOBAL SINGLETON (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
