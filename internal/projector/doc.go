// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projector turns raw herder payloads into render-ready view-models.
//
// All functions are pure: no I/O and no package state. A payload that lacks
// a required field, or violates an invariant such as "exactly one selected
// model per node", fails with ErrMalformedPayload instead of producing a
// partial view-model. Nodes scopes the failure to the offending node: that
// card carries the error in NodeCard.Err and the other cards are intact.
//
// # Key Types
//
//   - NodeCard: one serving node with its selectable models and stats
//   - Catalog: the prompt selector list plus descriptors by key
//   - PromptDescriptor: a prompt with its ordered variable schema
//   - HistoryRow: one past inference, formatted for display
package projector
