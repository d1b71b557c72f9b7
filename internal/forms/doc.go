// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package forms builds interactive controls from server-supplied schemas.
//
// Two builders live here:
//
//   - NodeCard renders one serving node with its selectable models and
//     read-only stats. Choosing a different model issues a switch request
//     whose result comes back as ModelSwitchedMsg. The loaded-model marker
//     always reflects the server's last reported state; the operator
//     refreshes the view to see a switch take effect.
//   - PromptForm renders one labelled input per declared prompt variable,
//     in declaration order, prefilled with its default. A prompt without a
//     schema gets a single free-text input.
//
// NodesView and PromptPicker group these into the Nodes and Prompts views.
package forms
