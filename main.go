// toonchat - a terminal client for the webtoon assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/toonchat/internal/cli"
	"github.com/jeranaias/toonchat/internal/config"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	// Variables already in the environment win over .env.
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		return fail(err, args)
	}

	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return fail(err, args)
	}

	if cmd == cli.CmdConfig {
		return fail(cli.HandleConfig(os.Stdout, cfg, args), args)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, args)
	if err != nil {
		return fail(err, args)
	}
	defer app.Close()

	switch cmd {
	case cli.CmdTUI:
		err = cli.RunTUI(ctx, app, args)
	case cli.CmdChat:
		err = cli.HandleChat(ctx, app, args)
	case cli.CmdAsk:
		err = cli.HandleAsk(ctx, app, args)
	case cli.CmdThreads:
		err = cli.HandleThreads(ctx, app, args)
	case cli.CmdHealth:
		err = cli.HandleHealth(ctx, app)
	}
	return fail(err, args)
}

// fail prints err unless it was already reported and returns its exit code.
func fail(err error, args cli.Args) int {
	if err == nil {
		return cli.ExitSuccess
	}
	if !cli.IsReported(err) {
		cli.DisplayError(os.Stderr, err, args.JSON)
	}
	return cli.GetExitCode(err)
}
