// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feedback implements the per-response rating and feedback widget.
//
// A Widget owns the Record of one inference id: its 1-5 star score and
// free-text feedback. Both are written through the gateway and the widget
// changes its own display only after the server confirms; a failed call
// leaves the previous state and shows a retryable error.
//
// The feedback modal is created on demand in the surface's modal layer and
// removed when feedback is accepted or the widget is destroyed. The
// Registry enforces one widget per inference id.
package feedback
