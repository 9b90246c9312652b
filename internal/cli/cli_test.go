// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/toonchat/internal/askapi"
	"github.com/jeranaias/toonchat/internal/config"
	"github.com/jeranaias/toonchat/internal/model"
	"github.com/jeranaias/toonchat/internal/storage"
)

// =============================================================================
// PARSE TESTS
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
	}{
		{
			name:    "no arguments starts the TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "ask joins words and reads thread",
			argv:    []string{"ask", "추천", "웹툰", "--thread", "abc"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "추천 웹툰", a.Query)
				assert.Equal(t, "abc", a.Thread)
			},
		},
		{
			name:    "global flags anywhere",
			argv:    []string{"threads", "--json", "show", "id1", "-v", "--store", "memory"},
			wantCmd: CmdThreads,
			check: func(t *testing.T, a Args) {
				assert.True(t, a.JSON)
				assert.True(t, a.Verbose)
				assert.Equal(t, "memory", a.Store)
				assert.Equal(t, "show", a.Subcommand)
				assert.Equal(t, []string{"id1"}, a.Rest)
			},
		},
		{
			name:    "threads defaults to list",
			argv:    []string{"threads"},
			wantCmd: CmdThreads,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "list", a.Subcommand)
			},
		},
		{
			name:    "threads export flags",
			argv:    []string{"threads", "export", "id1", "--format", "json", "--output", "out"},
			wantCmd: CmdThreads,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "export", a.Subcommand)
				assert.Equal(t, []string{"id1"}, a.Rest)
				assert.Equal(t, "json", a.Format)
				assert.Equal(t, "out", a.Output)
			},
		},
		{
			name:    "config defaults to show",
			argv:    []string{"--config=/tmp/c.toml", "config"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "show", a.Subcommand)
				assert.Equal(t, "/tmp/c.toml", a.ConfigPath)
			},
		},
		{
			name:    "config set",
			argv:    []string{"config", "set", "ui.theme", "dark"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				assert.Equal(t, "set", a.Subcommand)
				assert.Equal(t, []string{"ui.theme", "dark"}, a.Rest)
			},
		},
		{
			name:    "chat with thread",
			argv:    []string{"-q", "chat", "--thread", "t1"},
			wantCmd: CmdChat,
			check: func(t *testing.T, a Args) {
				assert.True(t, a.Quiet)
				assert.Equal(t, "t1", a.Thread)
			},
		},
		{name: "health", argv: []string{"health"}, wantCmd: CmdHealth},
		{name: "version", argv: []string{"version"}, wantCmd: CmdVersion},
		{name: "help flag", argv: []string{"--help"}, wantCmd: CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCmd, cmd)
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	_, _, err := Parse([]string{"frobnicate"})
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	_, _, err = Parse([]string{"threads", "--config"})
	require.Error(t, err)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "threads", CmdThreads.String())
	assert.Equal(t, "tui", CmdTUI.String())
	assert.Equal(t, "help", Command(99).String())
}

func TestPrintUsageAndVersion(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)
	assert.Contains(t, buf.String(), "toonchat threads export ID")

	buf.Reset()
	PrintVersion(&buf)
	assert.Contains(t, buf.String(), "toonchat "+Version)
}

// =============================================================================
// EXIT CODE TESTS
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", ErrMissingArgument("id", "x"), ExitUsageError},
		{"config wrapper", &ConfigError{Err: errors.New("bad")}, ExitConfigError},
		{"config validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{"not found", ErrNotFound("thread", "x"), ExitNotFoundError},
		{"store not found", fmt.Errorf("load: %w", storage.ErrThreadNotFound), ExitNotFoundError},
		{"timeout", &askapi.ClientError{Type: askapi.ErrTypeTimeout, Message: "timeout of 20s exceeded"}, ExitTimeoutError},
		{"wrapped timeout", &reportedError{fmt.Errorf("ask: %w", &askapi.ClientError{Type: askapi.ErrTypeTimeout})}, ExitTimeoutError},
		{"connection", &askapi.ClientError{Type: askapi.ErrTypeConnection, Message: "refused"}, ExitNetworkError},
		{"server", &askapi.ClientError{Type: askapi.ErrTypeServer, StatusCode: 500}, ExitNetworkError},
		{"reported keeps code", &reportedError{ErrNotFound("thread", "x")}, ExitNotFoundError},
		{"generic", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestDisplayError(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, ErrNotFound("thread", "x"), false)
	assert.Contains(t, buf.String(), "thread not found: x")

	buf.Reset()
	DisplayError(&buf, &askapi.ClientError{Type: askapi.ErrTypeServer, StatusCode: 422, Detail: "field required"}, true)
	out := buf.String()
	assert.Contains(t, out, `"error_type": "ask_error"`)
	assert.Contains(t, out, `"status_code": 422`)
	assert.Contains(t, out, `"exit_code": 5`)

	buf.Reset()
	DisplayError(&buf, nil, false)
	assert.Empty(t, buf.String())
}

func TestRenderBadge(t *testing.T) {
	assert.Empty(t, RenderBadge(""))
	assert.Contains(t, RenderBadge(model.IntentLaw), "📚 법률 응답")
	assert.Contains(t, RenderBadge(model.Intent("요약")), "[요약]")
}

func TestIsReported(t *testing.T) {
	var buf bytes.Buffer
	err := OutputJSON(&buf, true, "x", func() (interface{}, error) {
		return nil, ErrNotFound("thread", "x")
	})
	assert.True(t, IsReported(err))
	assert.Contains(t, buf.String(), `"success": false`)

	err = OutputJSON(&buf, false, "x", func() (interface{}, error) {
		return nil, errors.New("plain")
	})
	assert.False(t, IsReported(err))
	assert.False(t, IsReported(context.Canceled))
}
