// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of herder.
//
// # Key Types
//
//   - Command: the command to run
//   - Args: global flags plus command-specific values
//   - ArgParser: flag and positional splitting for subcommands
//   - JSONResponse: the envelope of all --json output
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdStatus:
//	    err = cli.HandleStatus(ctx, client, cfg.Server.URL, args, os.Stdout)
//	case cli.CmdHistory:
//	    err = cli.HandleHistory(ctx, client, engine, args, os.Stdout)
//	// ... other commands
//	}
//
// # Commands
//
//   - tui: the interactive control surface (default)
//   - status: nodes and prompt catalog
//   - history: past inferences
//   - config: configuration inspection
//   - version, help
//
// All commands support --json. Handlers return errors; GetExitCode maps
// them to process exit codes.
package cli
