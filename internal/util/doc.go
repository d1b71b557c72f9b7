// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across herder.
//
// # Key Functions
//
//   - NormalizeInput: NFC normalization of operator input
//   - TruncateWidth, StringWidth: display-width aware text handling
//   - WriteFileAtomic: crash-safe file replacement with fsync
//
// # Usage
//
//	text := util.NormalizeInput(input.Value())
//	cell := util.TruncateWidth(row.Response, 40)
//	err := util.WriteFileAtomic(path, 0600, func(w io.Writer) error {
//	    return toml.NewEncoder(w).Encode(cfg)
//	})
package util
