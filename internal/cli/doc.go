// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the toonchat command line and runs the non-TUI
// commands: ask, chat, threads, health and config.
//
// Every handler returns an error instead of exiting; main maps the error to
// an exit code with GetExitCode.
package cli
