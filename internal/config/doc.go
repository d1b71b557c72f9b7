// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and saves the herder client settings.
//
// A settings file is read from ~/.herder/config.toml, or from
// ~/.herder/config.json when no TOML file exists. Keys missing from the
// file keep their defaults. HERDER_* variables override the file; a .env
// file in the working directory can set them. Command-line flags are
// applied last, by the cli package.
//
// # Sections
//
//   - [server]: URL, bearer token, request timeout, rate limit
//   - [ui]: theme, default tab, log retention, queue bound, templates
//   - [capabilities]: prompt_forms, worker_control, permissioned_tabs
//   - [log]: file path and level
//
// Validate reports every problem at once as ValidateErrors. String and
// Redacted never expose the token.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	timeout := cfg.RequestTimeout()
package config
