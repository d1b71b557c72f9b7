// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/herder-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete herder configuration.
type Config struct {
	// Server connection
	Server ServerConfig `toml:"server" json:"server"`

	// UI behaviour
	UI UIConfig `toml:"ui" json:"ui"`

	// Capabilities switch optional features on or off
	Capabilities CapabilitiesConfig `toml:"capabilities" json:"capabilities"`

	// Log output
	Log LogConfig `toml:"log" json:"log"`
}

// ServerConfig describes how to reach the herder server.
type ServerConfig struct {
	// URL is the server base URL, without the /api/v1 prefix
	URL string `toml:"url" json:"url"`
	// Token is the bearer token. Prefer HERDER_TOKEN over storing it here.
	Token string `toml:"token" json:"token"`
	// RequestTimeoutSecs bounds a single request (0 = no client timeout).
	// Inference can take minutes, so keep this generous.
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs"`
	// RateLimitRPS caps requests per second (0 = unlimited)
	RateLimitRPS float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "default" or "plain" (no colour)
	Theme string `toml:"theme" json:"theme"`
	// DefaultTab is the tab activated after permissions load
	DefaultTab string `toml:"default_tab" json:"default_tab"`
	// Retention is the number of conversation entries kept
	Retention int `toml:"retention" json:"retention"`
	// MaxQueued is how many submissions may wait behind the one in flight
	MaxQueued int `toml:"max_queued" json:"max_queued"`
	// TemplateDir holds *.tmpl overrides, reloaded on change (empty = built-in only)
	TemplateDir string `toml:"template_dir" json:"template_dir"`
	// Markdown renders assistant messages as markdown
	Markdown bool `toml:"markdown" json:"markdown"`
}

// CapabilitiesConfig gates optional features.
type CapabilitiesConfig struct {
	// PromptForms enables per-variable prompt forms and param overrides
	PromptForms bool `toml:"prompt_forms" json:"prompt_forms"`
	// WorkerControl enables the start-workers action on the Nodes tab
	WorkerControl bool `toml:"worker_control" json:"worker_control"`
	// PermissionedTabs fetches allowed tabs from the server; when false every tab is shown
	PermissionedTabs bool `toml:"permissioned_tabs" json:"permissioned_tabs"`
}

// LogConfig contains log file settings.
type LogConfig struct {
	// Path is the JSON log file (empty = logging disabled)
	Path string `toml:"path" json:"path"`
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
}

// Tab ids accepted by ui.default_tab.
var validTabs = []string{"Nodes", "Prompts", "History", "OwnHistory"}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config with default values.
func Default() *Config {
	logPath := ""
	if dir, err := ConfigDir(); err == nil {
		logPath = filepath.Join(dir, "herder.log")
	}

	return &Config{
		Server: ServerConfig{
			URL:                "http://127.0.0.1:8000",
			RequestTimeoutSecs: 300,
			RateLimitRPS:       10,
		},
		UI: UIConfig{
			Theme:      "default",
			DefaultTab: "Prompts",
			Retention:  200,
			MaxQueued:  4,
			Markdown:   true,
		},
		Capabilities: CapabilitiesConfig{
			PromptForms:      true,
			WorkerControl:    true,
			PermissionedTabs: true,
		},
		Log: LogConfig{
			Path:  logPath,
			Level: "info",
		},
	}
}

// RequestTimeout returns the request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the herder configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".herder"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens a config file to 0600; it may hold a token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=value pairs from path into the environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// A .env file in the working directory is read before environment
// overrides are applied.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	return finish(cfg)
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on every filesystem.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		fmt.Fprintf(os.Stderr, "Warning: unknown config keys in %s: %s\n", path, strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
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

// LoadFromPath loads configuration from a specific file with full
// validation. Values missing from the file keep their defaults.
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

	return finish(cfg)
}

// finish applies env overrides, fills defaults and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills zero values that have no meaningful zero setting.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Server.URL == "" {
		c.Server.URL = defaults.Server.URL
	}
	c.Server.URL = strings.TrimRight(c.Server.URL, "/")

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.DefaultTab == "" {
		c.UI.DefaultTab = defaults.UI.DefaultTab
	}
	if c.UI.Retention == 0 {
		c.UI.Retention = defaults.UI.Retention
	}
	if c.UI.MaxQueued == 0 {
		c.UI.MaxQueued = defaults.UI.MaxQueued
	}

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration as TOML, atomically, with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	err := util.WriteFileAtomic(path, 0600, func(w io.Writer) error {
		fmt.Fprintln(w, "# herder configuration file")
		fmt.Fprintln(w, "# Generated by herder - edit with care")
		fmt.Fprintln(w)
		return toml.NewEncoder(w).Encode(cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	err := util.WriteFileAtomic(path, 0600, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	})
	if err != nil {
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns ValidateErrors when any
// setting is unusable.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Server
	if u, err := url.Parse(c.Server.URL); err != nil {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("invalid URL: %v", err),
		})
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "server.url",
			Message: fmt.Sprintf("'%s' must be an absolute http or https URL", c.Server.URL),
		})
	}
	if c.Server.RequestTimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.request_timeout_secs",
			Message: "cannot be negative",
		})
	}
	if c.Server.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{
			Field:   "server.rate_limit_rps",
			Message: "cannot be negative",
		})
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "default", "plain":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: default, plain", c.UI.Theme),
		})
	}
	if !containsTab(c.UI.DefaultTab) {
		errs = append(errs, ValidationError{
			Field:   "ui.default_tab",
			Message: fmt.Sprintf("invalid tab '%s', must be one of: %s", c.UI.DefaultTab, strings.Join(validTabs, ", ")),
		})
	}
	if c.UI.Retention < 1 {
		errs = append(errs, ValidationError{
			Field:   "ui.retention",
			Message: "must be at least 1",
		})
	}
	if c.UI.MaxQueued < 0 {
		errs = append(errs, ValidationError{
			Field:   "ui.max_queued",
			Message: "cannot be negative",
		})
	}
	if c.UI.TemplateDir != "" {
		if info, err := os.Stat(c.UI.TemplateDir); err != nil || !info.IsDir() {
			errs = append(errs, ValidationError{
				Field:   "ui.template_dir",
				Message: fmt.Sprintf("'%s' is not a directory", c.UI.TemplateDir),
			})
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func containsTab(id string) bool {
	for _, t := range validTabs {
		if t == id {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HERDER_URL: overrides server.url
//   - HERDER_TOKEN: overrides server.token
//   - HERDER_DEFAULT_TAB: overrides ui.default_tab
//   - HERDER_LOG_LEVEL: overrides log.level
//   - HERDER_TEMPLATE_DIR: overrides ui.template_dir
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HERDER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("HERDER_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := os.Getenv("HERDER_DEFAULT_TAB"); v != "" {
		c.UI.DefaultTab = v
	}
	if v := os.Getenv("HERDER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HERDER_TEMPLATE_DIR"); v != "" {
		c.UI.TemplateDir = v
	}
}

// =============================================================================
// GET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.default_tab").
func (c *Config) Get(key string) (interface{}, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field.Interface(), nil
		}
		if field.Kind() != reflect.Struct {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// GetAllKeys returns every dot-notation key accepted by Get.
func GetAllKeys() []string {
	return []string{
		"server.url",
		"server.token",
		"server.request_timeout_secs",
		"server.rate_limit_rps",
		"ui.theme",
		"ui.default_tab",
		"ui.retention",
		"ui.max_queued",
		"ui.template_dir",
		"ui.markdown",
		"capabilities.prompt_forms",
		"capabilities.worker_control",
		"capabilities.permissioned_tabs",
		"log.path",
		"log.level",
	}
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy safe to print, with the token masked.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Server.Token != "" {
		safe.Server.Token = "[REDACTED]"
	}
	return safe
}

// String renders the configuration as TOML with secrets masked.
func (c *Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c.Redacted()); err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return buf.String()
}
