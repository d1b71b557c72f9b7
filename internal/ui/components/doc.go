// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the small, stateless-looking UI pieces of the
// herder TUI that sit around the views: the status bar and toasts.
//
// # Key Types
//
//   - StatusBar: bottom line with server, active tab, status and shortcuts
//   - ToastManager: auto-dismissing notifications for background results
//
// Components render through the shared styles.Theme so the plain theme
// produces uncolored output.
package components
