// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for toonchat.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/jeranaias/toonchat/internal/util"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TOONCHAT_"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete toonchat configuration.
type Config struct {
	Backend BackendConfig `toml:"backend" json:"backend" envPrefix:"BACKEND_"`
	Storage StorageConfig `toml:"storage" json:"storage" envPrefix:"STORAGE_"`
	UI      UIConfig      `toml:"ui" json:"ui" envPrefix:"UI_"`
	Log     LogConfig     `toml:"log" json:"log" envPrefix:"LOG_"`
}

// BackendConfig locates the ask service.
type BackendConfig struct {
	// BaseURL of the service, without the ask path.
	BaseURL string `toml:"base_url" json:"base_url" env:"BASE_URL"`
	// AskPath is "/ask" on the bare service and "/chatbot/ask" behind the gateway.
	AskPath    string `toml:"ask_path" json:"ask_path" env:"ASK_PATH"`
	HealthPath string `toml:"health_path" json:"health_path" env:"HEALTH_PATH"`
	// TimeoutSecs bounds a single request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" env:"TIMEOUT_SECS"`
	// RateLimit caps requests per second (0 = unlimited).
	RateLimit float64 `toml:"rate_limit" json:"rate_limit" env:"RATE_LIMIT"`
	// Stub answers locally instead of calling the service.
	Stub bool `toml:"stub" json:"stub" env:"STUB"`
}

// Timeout returns TimeoutSecs as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSecs) * time.Second
}

// StorageConfig selects where threads are kept.
type StorageConfig struct {
	// Driver is one of: file, memory, sqlite, redis, dynamodb
	Driver string `toml:"driver" json:"driver" env:"DRIVER"`
	// Key is the name the thread record is stored under.
	Key string `toml:"key" json:"key" env:"KEY"`
	// Path is the data directory for file and the database file for sqlite.
	// Empty selects a location under the config directory.
	Path        string `toml:"path" json:"path" env:"PATH"`
	RedisURL    string `toml:"redis_url" json:"redis_url" env:"REDIS_URL"`
	RedisPrefix string `toml:"redis_prefix" json:"redis_prefix" env:"REDIS_PREFIX"`

	DynamoDBTable    string `toml:"dynamodb_table" json:"dynamodb_table" env:"DYNAMODB_TABLE"`
	DynamoDBRegion   string `toml:"dynamodb_region" json:"dynamodb_region" env:"DYNAMODB_REGION"`
	DynamoDBEndpoint string `toml:"dynamodb_endpoint" json:"dynamodb_endpoint" env:"DYNAMODB_ENDPOINT"`
}

// UIConfig contains terminal interface preferences.
type UIConfig struct {
	// Theme is one of: auto, dark, light
	Theme        string `toml:"theme" json:"theme" env:"THEME"`
	ShowChunks   bool   `toml:"show_chunks" json:"show_chunks" env:"SHOW_CHUNKS"`
	ChunkLimit   int    `toml:"chunk_limit" json:"chunk_limit" env:"CHUNK_LIMIT"`
	SidebarWidth int    `toml:"sidebar_width" json:"sidebar_width" env:"SIDEBAR_WIDTH"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `toml:"level" json:"level" env:"LEVEL"`
	// Format is "console" or "json".
	Format string `toml:"format" json:"format" env:"FORMAT"`
	// File receives the log. Empty selects toonchat.log in the config directory.
	File string `toml:"file" json:"file" env:"FILE"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://127.0.0.1:8083",
			AskPath:     "/ask",
			HealthPath:  "/health",
			TimeoutSecs: 20,
		},
		Storage: StorageConfig{
			Driver:         "file",
			Key:            "chatgpt-ui-threads-v1",
			RedisPrefix:    "toonchat:",
			DynamoDBRegion: "ap-northeast-2",
		},
		UI: UIConfig{
			Theme:        "auto",
			ShowChunks:   true,
			ChunkLimit:   300,
			SidebarWidth: 28,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the toonchat configuration directory path.
// TOONCHAT_HOME overrides the default ~/.toonchat.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".toonchat"), nil
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

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// StoragePath returns the configured storage path, or the default location
// for the driver under the config directory.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if c.Storage.Driver == "sqlite" {
		return filepath.Join(dir, "threads.db"), nil
	}
	return filepath.Join(dir, "data"), nil
}

// LogPath returns the configured log file, or toonchat.log in the config
// directory.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "toonchat.log"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// Load loads configuration from the config file, trying TOML first and then
// JSON, and falls back to defaults. Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(path); err == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are decoded as JSON, anything else as
// TOML. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TOONCHAT_* environment variables to the config.
// Only variables that are set override; the variable name is the prefix,
// the section and the key, e.g. TOONCHAT_BACKEND_BASE_URL or
// TOONCHAT_STORAGE_DRIVER.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# toonchat configuration file\n")
	buf.WriteString("# Generated by toonchat - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
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
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validDrivers = []string{"file", "memory", "sqlite", "redis", "dynamodb"}
	validThemes  = []string{"auto", "dark", "light"}
	validFormats = []string{"console", "json"}
)

// Validate validates the configuration and returns ValidateErrors listing
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Backend
	if u, err := url.Parse(c.Backend.BaseURL); err != nil {
		add("backend.base_url", "invalid URL: %v", err)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("backend.base_url", "scheme must be http or https, got %q", u.Scheme)
	} else if u.Host == "" {
		add("backend.base_url", "missing host")
	}
	if !strings.HasPrefix(c.Backend.AskPath, "/") {
		add("backend.ask_path", "must start with '/'")
	}
	if !strings.HasPrefix(c.Backend.HealthPath, "/") {
		add("backend.health_path", "must start with '/'")
	}
	if c.Backend.TimeoutSecs <= 0 || c.Backend.TimeoutSecs > 600 {
		add("backend.timeout_secs", "must be between 1 and 600, got %d", c.Backend.TimeoutSecs)
	}
	if c.Backend.RateLimit < 0 {
		add("backend.rate_limit", "cannot be negative")
	}

	// Storage
	if !oneOf(c.Storage.Driver, validDrivers) {
		add("storage.driver", "invalid driver '%s', must be one of: %s", c.Storage.Driver, strings.Join(validDrivers, ", "))
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		add("storage.key", "cannot be empty")
	}
	switch c.Storage.Driver {
	case "redis":
		if c.Storage.RedisURL == "" {
			add("storage.redis_url", "required for the redis driver")
		}
	case "dynamodb":
		if c.Storage.DynamoDBTable == "" {
			add("storage.dynamodb_table", "required for the dynamodb driver")
		}
	}

	// UI
	if !oneOf(c.UI.Theme, validThemes) {
		add("ui.theme", "invalid theme '%s', must be one of: %s", c.UI.Theme, strings.Join(validThemes, ", "))
	}
	if c.UI.ChunkLimit < 0 {
		add("ui.chunk_limit", "cannot be negative")
	}
	if c.UI.SidebarWidth < 16 || c.UI.SidebarWidth > 60 {
		add("ui.sidebar_width", "must be between 16 and 60, got %d", c.UI.SidebarWidth)
	}

	// Log
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil || c.Log.Level == "" {
		add("log.level", "invalid level '%s'", c.Log.Level)
	}
	if !oneOf(c.Log.Format, validFormats) {
		add("log.format", "invalid format '%s', must be one of: %s", c.Log.Format, strings.Join(validFormats, ", "))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

// lookup resolves a "section.key" path by TOML tag name.
func (c *Config) lookup(key string) (reflect.Value, error) {
	parts := strings.Split(strings.TrimSpace(key), ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return reflect.Value{}, fmt.Errorf("invalid key %q, expected section.name", key)
	}

	section, ok := fieldByTag(reflect.ValueOf(c).Elem(), parts[0])
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown section: %s", parts[0])
	}
	field, ok := fieldByTag(section, parts[1])
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown field: %s", key)
	}
	return field, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	name = strings.ToLower(strings.ReplaceAll(name, "-", "_"))
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("toml") == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes") || strings.EqualFold(strVal, "on")
				if !boolVal && !strings.EqualFold(strVal, "no") && !strings.EqualFold(strVal, "off") {
					return fmt.Errorf("invalid boolean value: %q", strVal)
				}
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	if value == nil {
		return errors.New("cannot assign nil")
	}
	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	root := reflect.TypeOf(Config{})
	for i := 0; i < root.NumField(); i++ {
		section := root.Field(i)
		prefix := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	return keys
}

// Clone returns a copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON with credentials in the Redis
// URL redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Storage.RedisURL != "" {
		if u, err := url.Parse(safe.Storage.RedisURL); err == nil {
			safe.Storage.RedisURL = u.Redacted()
		}
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
