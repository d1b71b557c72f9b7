// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command line parsing for herder.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/herder-tui/internal/config"
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
	CmdStatus
	CmdHistory
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name as typed on the command line.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdStatus:
		return "status"
	case CmdHistory:
		return "history"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	URL        string
	Token      string
	ConfigPath string
	Verbose    bool
	JSON       bool

	// Command-specific
	Subcommand string
	ConfigKey  string
	Limit      int // 0 means no limit
	Force      bool

	// Raw holds the arguments left after the command name.
	Raw []string
}

const usageText = `herder - terminal control surface for a herder inference server

Usage:
  herder                       Start the control surface (default)
  herder tui                   Start the control surface
  herder status, s             Show nodes and prompts
  herder history               Show past inferences
  herder config [subcommand]   Configuration
  herder version               Show version information
  herder help                  Show this help

Status:
  herder status --json         Machine readable output

History:
  herder history --limit N     Show only the N most recent rows
  herder history --json        Machine readable output

Config:
  herder config show           Show the effective configuration (token redacted)
  herder config path           Print the config file path
  herder config init           Write a default config file
    --force                    Overwrite an existing file
  herder config get KEY        Print one setting (e.g. server.url)
  herder config keys           List setting names

Global Flags:
  --url URL        Server URL (overrides server.url and HERDER_URL)
  --token TOKEN    Bearer token (overrides server.token and HERDER_TOKEN)
  --config PATH    Read configuration from PATH
  --json           Output in JSON format
  -v, --verbose    Debug logging

Files:
  ~/.herder/config.toml        Configuration (config.json is read if no TOML exists)
  ~/.herder/herder.log         Log file
  .env                         Environment overrides loaded at startup

Version: %s
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// HandleVersion prints version information.
func HandleVersion(args Args, w io.Writer) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(w)
	}
	fmt.Fprintf(w, "herder version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command line arguments, without the program name.
// Global flags may appear anywhere.
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}
	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining

	switch name {
	case "tui":
		return CmdTUI, args, nil

	case "status", "s":
		return CmdStatus, args, nil

	case "history":
		p := NewArgParser(remaining)
		if p.HasFlag("limit") {
			n, err := ParsePositiveInt(p.Flag("limit"), "--limit")
			if err != nil {
				return CmdHistory, args, NewUsageError("history", err.Error())
			}
			args.Limit = n
		}
		return CmdHistory, args, nil

	case "config":
		p := NewArgParser(remaining)
		args.Subcommand = p.Subcommand()
		args.ConfigKey = p.Positional(1)
		args.Force = p.BoolFlag("force")
		return CmdConfig, args, nil

	case "version", "--version":
		return CmdVersion, args, nil

	case "help", "-h", "--help":
		return CmdHelp, args, nil
	}
	return CmdHelp, args, NewUsageError(name, "unknown command")
}

// parseGlobalFlags extracts global flags from argv and returns the rest.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	value := func(i *int, flag string) (string, error) {
		if *i+1 >= len(argv) {
			return "", NewUsageError(flag, "requires a value")
		}
		*i++
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		var err error

		switch arg {
		case "-v", "--verbose":
			args.Verbose = true
		case "--json":
			args.JSON = true
		case "--url":
			args.URL, err = value(&i, arg)
		case "--token":
			args.Token, err = value(&i, arg)
		case "--config":
			args.ConfigPath, err = value(&i, arg)
		default:
			switch {
			case strings.HasPrefix(arg, "--url="):
				args.URL = strings.TrimPrefix(arg, "--url=")
			case strings.HasPrefix(arg, "--token="):
				args.Token = strings.TrimPrefix(arg, "--token=")
			case strings.HasPrefix(arg, "--config="):
				args.ConfigPath = strings.TrimPrefix(arg, "--config=")
			default:
				remaining = append(remaining, arg)
			}
		}
		if err != nil {
			return nil, args, err
		}
	}
	return remaining, args, nil
}

// ApplyTo overrides configuration settings with the global flags and
// re-validates the result.
func (a Args) ApplyTo(cfg *config.Config) error {
	if a.URL != "" {
		cfg.Server.URL = a.URL
	}
	if a.Token != "" {
		cfg.Server.Token = a.Token
	}
	if a.Verbose {
		cfg.Log.Level = "debug"
	}
	cfg.SetDefaults()
	return cfg.Validate()
}
