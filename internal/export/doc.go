// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders chat threads to files.
//
// # Key Types
//
//   - Exporter: Renders one thread in one format
//   - Options: Export configuration options
//
// # Supported Formats
//
//   - Markdown: Human-readable with frontmatter, badges and references
//   - JSON: The stored thread with a readable update time
//   - Text: Plain transcript, one line header per message
//
// # Usage
//
//	exp, err := export.New("md", export.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	path, err := export.ExportToFile(thread, exp, opts)
package export
