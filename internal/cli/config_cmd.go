// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jeranaias/toonchat/internal/config"
)

// HandleConfig runs the config subcommands. It needs no storage or
// network, so it works on a configuration that cannot open its backend.
func HandleConfig(w io.Writer, cfg *config.Config, args Args) error {
	switch args.Subcommand {
	case "show", "list":
		if args.JSON {
			_, err := fmt.Fprintln(w, cfg.String())
			return err
		}
		for _, key := range config.GetAllKeys() {
			v, err := cfg.Get(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %v\n", RenderLabel(key), displayValue(key, v))
		}
		return nil

	case "get":
		if len(args.Rest) < 1 {
			return ErrMissingArgument("key", "toonchat config get backend.base_url")
		}
		v, err := cfg.Get(args.Rest[0])
		if err != nil {
			return NewValidationErrorWithExample("key", args.Rest[0], err.Error(), "toonchat config show")
		}
		_, err = fmt.Fprintln(w, displayValue(args.Rest[0], v))
		return err

	case "set":
		if len(args.Rest) < 2 {
			return ErrMissingArgument("value", "toonchat config set storage.driver sqlite")
		}
		key, value := args.Rest[0], strings.Join(args.Rest[1:], " ")
		if err := cfg.Set(key, value); err != nil {
			return NewValidationErrorWithExample("key", key, err.Error(), "toonchat config set ui.theme dark")
		}
		if err := cfg.Validate(); err != nil {
			return &ConfigError{Err: err}
		}
		path, err := saveConfig(cfg, args.ConfigPath)
		if err != nil {
			return &ConfigError{Err: err}
		}
		if !args.Quiet {
			fmt.Fprintf(w, "%s %s = %s (%s)\n", SuccessStyle.Render("[OK]"), key, value, path)
		}
		return nil

	case "path":
		path := args.ConfigPath
		if path == "" {
			p, err := config.ConfigPathTOML()
			if err != nil {
				return &ConfigError{Err: err}
			}
			path = p
		}
		_, err := fmt.Fprintln(w, path)
		return err

	default:
		return NewValidationErrorWithExample("subcommand", args.Subcommand,
			"unknown config subcommand", "toonchat config show")
	}
}

func saveConfig(cfg *config.Config, path string) (string, error) {
	if path == "" {
		if err := config.EnsureConfigDir(); err != nil {
			return "", err
		}
		p, err := config.ConfigPathTOML()
		if err != nil {
			return "", err
		}
		return p, config.SaveTOML(cfg, p)
	}
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return path, config.SaveJSON(cfg, path)
	}
	return path, config.SaveTOML(cfg, path)
}

// displayValue redacts credentials in URLs.
func displayValue(key string, v interface{}) interface{} {
	s, ok := v.(string)
	if !ok || !strings.HasSuffix(key, "_url") || s == "" {
		return v
	}
	if u, err := url.Parse(s); err == nil {
		return u.Redacted()
	}
	return s
}
