// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for toonchat.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: Ask service address, paths and timeout
//   - StorageConfig: Thread storage driver and its connection settings
//   - UIConfig: Terminal interface preferences
//   - LogConfig: Log level, format and destination
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TOONCHAT_*), including values from ./.env
//   - ~/.toonchat/config.toml
//   - ~/.toonchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	config.LoadDotEnv()
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Backend.BaseURL)
package config
