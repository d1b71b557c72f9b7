// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for herder.
//
// Command: config [subcommand]
// Short:   Inspect configuration
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	path                Show the configuration file path
//	init [--force]      Write a default configuration file
//	get <key>           Print one setting
//	keys                List setting names
//
// Secrets are always redacted. The configuration file is edited by hand;
// there is no set subcommand.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/jeranaias/herder-tui/internal/config"
)

// ConfigData represents the data returned by config show --json.
type ConfigData struct {
	Path   string         `json:"config_path"`
	Config *config.Config `json:"config"`
}

// ConfigPath returns the file the config command operates on: the
// --config flag when given, the default TOML path otherwise.
func ConfigPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// HandleConfig runs the config command against the effective
// configuration cfg.
func HandleConfig(cfg *config.Config, args Args, w io.Writer) error {
	path, err := ConfigPath(args)
	if err != nil {
		return NewCommandError("config", args.Subcommand, "cannot locate config directory", err)
	}

	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config show", ConfigData{Path: path, Config: cfg.Redacted()}).Print(w)
		}
		fmt.Fprintln(w, RenderConditional(DimStyle, "# "+path))
		fmt.Fprint(w, cfg.String())
		return nil

	case "path":
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"config_path": path}).Print(w)
		}
		fmt.Fprintln(w, path)
		return nil

	case "init":
		return initConfig(path, args, w)

	case "get":
		if args.ConfigKey == "" {
			return NewUsageError("config get", "requires a key (see herder config keys)")
		}
		val, err := cfg.Redacted().Get(args.ConfigKey)
		if err != nil {
			return NewUsageError("config get", err.Error())
		}
		if args.JSON {
			return NewJSONResponse("config get", map[string]any{args.ConfigKey: val}).Print(w)
		}
		fmt.Fprintln(w, val)
		return nil

	case "keys":
		keys := config.GetAllKeys()
		if args.JSON {
			return NewJSONResponse("config keys", keys).Print(w)
		}
		for _, k := range keys {
			fmt.Fprintln(w, k)
		}
		return nil
	}
	return NewUsageError("config "+args.Subcommand, "unknown subcommand")
}

// initConfig writes the default configuration, refusing to overwrite an
// existing file unless forced.
func initConfig(path string, args Args, w io.Writer) error {
	if _, err := os.Stat(path); err == nil && !args.Force {
		return NewCommandError("config", "init", path+" already exists (use --force to overwrite)", nil)
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewCommandError("config", "init", "cannot stat "+path, err)
	}

	if err := config.SaveTOML(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "write failed", err)
	}
	if args.JSON {
		return NewJSONResponse("config init", map[string]string{"config_path": path}).Print(w)
	}
	fmt.Fprintf(w, "%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
	return nil
}
