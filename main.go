// herder TUI - A terminal control surface for a herder inference server.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/cli"
	"github.com/jeranaias/herder-tui/internal/config"
	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/ui/app"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code.
func run(argv []string) int {
	cmd, args, err := cli.Parse(argv)
	if err != nil {
		cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
		if !args.JSON {
			cli.PrintUsage(os.Stderr)
		}
		return cli.GetExitCode(err)
	}

	// Commands that need no configuration
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		return exitFor(cmd, args, cli.HandleVersion(args, os.Stdout))
	}

	cfg, err := loadConfig(args)
	if err != nil {
		return exitFor(cmd, args, err)
	}

	if err := logging.Setup(cfg.Log.Path, logging.ParseLevel(cfg.Log.Level)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
	defer logging.Close()
	if args.Verbose && cmd != cli.CmdTUI {
		logging.SetOutput(os.Stderr, slog.LevelDebug)
	}
	log := logging.For("main")
	log.Info("starting", "command", cmd.String(), "version", Version, "server", cfg.Server.URL)

	if cmd == cli.CmdConfig {
		return exitFor(cmd, args, cli.HandleConfig(cfg, args, os.Stdout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd == cli.CmdTUI && cfg.Server.Token == "" && cli.IsTTY() {
		token, err := cli.ReadSecret(os.Stderr, "Token for "+cfg.Server.URL)
		if err != nil {
			return exitFor(cmd, args, err)
		}
		cfg.Server.Token = token
	}

	client := gateway.NewClient(&gateway.ClientConfig{
		BaseURL:   cfg.Server.URL,
		Token:     cfg.Server.Token,
		Timeout:   cfg.RequestTimeout(),
		RateLimit: cfg.Server.RateLimitRPS,
	})

	engine, err := render.New(render.Options{
		Theme:       styles.NewThemeNamed(cfg.UI.Theme),
		TemplateDir: cfg.UI.TemplateDir,
		Markdown:    cfg.UI.Markdown,
	})
	if err != nil {
		return exitFor(cmd, args, cli.NewCommandError(cmd.String(), "templates", "cannot load templates", err))
	}

	switch cmd {
	case cli.CmdStatus:
		err = cli.HandleStatus(ctx, client, cfg.Server.URL, args, os.Stdout)
	case cli.CmdHistory:
		err = cli.HandleHistory(ctx, client, engine, args, os.Stdout)
	default:
		err = runTUI(ctx, client, cfg, engine)
	}
	if err != nil {
		log.Error("command failed", "command", cmd.String(), "error", err)
	}
	return exitFor(cmd, args, err)
}

// loadConfig loads the configuration file and applies command-line
// overrides.
func loadConfig(args cli.Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := args.ApplyTo(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTUI starts the interactive control surface and blocks until it exits.
func runTUI(ctx context.Context, client *gateway.Client, cfg *config.Config, engine *render.Engine) error {
	if !cli.IsStdoutTTY() {
		return &cli.TTYRequiredError{Operation: "start the TUI"}
	}

	m := app.New(ctx, client, cfg, engine)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Template overrides reload in place while the program runs
	if err := engine.Watch(ctx, func(err error) {
		p.Send(app.TemplatesReloadedMsg{Err: err})
	}); err != nil {
		logging.For("main").Warn("template watch disabled", "dir", cfg.UI.TemplateDir, "error", err)
	}

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// exitFor reports err and maps it to an exit code.
func exitFor(cmd cli.Command, args cli.Args, err error) int {
	if err == nil {
		return cli.ExitSuccess
	}
	cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
	return cli.GetExitCode(err)
}
