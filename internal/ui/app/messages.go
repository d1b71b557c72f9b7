// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/herder-tui/internal/projector"
)

// =============================================================================
// POPULATE RESULTS
// =============================================================================

// Every populate result carries the view it was issued for and the
// generation of that population. A result whose view is no longer active,
// or whose generation was superseded, is dropped.

// NodesLoadedMsg is the projected result of a Nodes population.
type NodesLoadedMsg struct {
	Gen   int
	Cards []projector.NodeCard
	Err   error
}

// PromptsLoadedMsg is the projected result of a Prompts population.
type PromptsLoadedMsg struct {
	Gen     int
	Catalog *projector.Catalog
	Err     error
}

// HistoryLoadedMsg is the projected result of a History or OwnHistory
// population.
type HistoryLoadedMsg struct {
	View string
	Gen  int
	Rows []projector.HistoryRow
	Err  error
}

// TemplatesReloadedMsg reports a template override reload, sent from the
// render engine's watcher.
type TemplatesReloadedMsg struct {
	Err error
}
