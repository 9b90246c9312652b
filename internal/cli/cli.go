// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdAsk
	CmdThreads
	CmdHealth
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdThreads:
		return "threads"
	case CmdHealth:
		return "health"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Verbose    bool
	Quiet      bool
	JSON       bool
	Store      string // overrides storage.driver

	// Command-specific
	Subcommand string
	Thread     string
	Query      string
	Format     string
	Output     string

	// Positional arguments after the subcommand.
	Rest []string
}

const usageText = `toonchat - webtoon assistant chat client

Usage:
  toonchat                              Start the TUI (default)
  toonchat tui                          Start the TUI
  toonchat chat [--thread ID]           Interactive line-mode chat
  toonchat ask "question" [--thread ID] Ask a single question
  toonchat threads [list]               List threads, most recent first
  toonchat threads show ID              Show a thread's messages
  toonchat threads new                  Create an empty thread
  toonchat threads rename ID TITLE      Rename a thread
  toonchat threads delete ID            Delete a thread
  toonchat threads search QUERY         Search titles and messages
  toonchat threads export ID            Export a thread
    --format md|json|txt                Export format (default: md)
    --output DIR                        Output directory (default: stdout)
  toonchat health                       Check the ask service
  toonchat config [show]                Show the effective configuration
  toonchat config get KEY               Print one setting
  toonchat config set KEY VALUE         Change one setting
  toonchat config path                  Print the config file path
  toonchat version                      Show version information
  toonchat help                         Show this help

Global flags:
  --config PATH      Use a specific config file
  --store DRIVER     Storage driver (file, memory, sqlite, redis, dynamodb)
  --json             Machine-readable output
  -v, --verbose      Debug logging
  -q, --quiet        Only print results

Chat commands:
  /new  /threads  /switch N|ID  /rename TITLE  /delete  /history  /help  /quit

Environment:
  TOONCHAT_HOME                   Config directory (default: ~/.toonchat)
  TOONCHAT_BACKEND_BASE_URL       Ask service base URL
  TOONCHAT_STORAGE_DRIVER         Storage driver
  TOONCHAT_LOG_LEVEL              Log level
`

// PrintUsage writes the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "toonchat %s (commit %s, built %s, %s/%s)\n",
		Version, GitCommit, BuildDate, runtime.GOOS, runtime.GOARCH)
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses argv (without the program name) into a command and its
// arguments. Global flags may appear anywhere.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name, rest := remaining[0], remaining[1:]
	switch strings.ToLower(name) {
	case "tui":
		parseThreadFlag(&args, rest)
		return CmdTUI, args, nil

	case "chat":
		parseThreadFlag(&args, rest)
		return CmdChat, args, nil

	case "ask", "a":
		p := parseThreadFlag(&args, rest)
		args.Query = strings.Join(p.PositionalArgs(), " ")
		return CmdAsk, args, nil

	case "threads", "thread", "t":
		p := NewArgParser(rest)
		args.Subcommand = strings.ToLower(p.Subcommand())
		if args.Subcommand == "" {
			args.Subcommand = "list"
		}
		args.Rest = p.RestFrom(1)
		args.Format = p.Flag("format", "f")
		args.Output = p.Flag("output", "o")
		return CmdThreads, args, nil

	case "health":
		return CmdHealth, args, nil

	case "config":
		p := NewArgParser(rest)
		args.Subcommand = strings.ToLower(p.Subcommand())
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		args.Rest = p.RestFrom(1)
		return CmdConfig, args, nil

	case "version", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, NewValidationErrorWithExample("command", name,
			"unknown command", "toonchat help")
	}
}

func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var args Args
	var remaining []string

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "--json":
			args.JSON = true
		case arg == "--config" || arg == "--store":
			if i+1 >= len(argv) {
				return nil, args, ErrMissingArgument(strings.TrimPrefix(arg, "--"), "toonchat "+arg+" VALUE")
			}
			i++
			if arg == "--config" {
				args.ConfigPath = argv[i]
			} else {
				args.Store = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "--store="):
			args.Store = strings.TrimPrefix(arg, "--store=")
		default:
			remaining = append(remaining, arg)
		}
	}

	return remaining, args, nil
}

func parseThreadFlag(args *Args, rest []string) *ArgParser {
	p := NewArgParser(rest)
	args.Thread = p.Flag("thread", "t")
	return p
}
