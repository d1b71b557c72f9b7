// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the herder control surface.
//
// Model wires the tab controller, the conversation log, the feedback
// registry and the node and prompt forms onto one surface, and routes
// messages between them. Each tab view is populated on activation by a
// populate routine that fetches a payload through the Gateway and projects
// it into a view-model. Every activation starts a new generation; results
// of an older generation, or for a view that is no longer active, are
// dropped.
//
// Key routing order:
//
//	ctrl+c          quit
//	feedback modal  all keys while a modal is open
//	global keys     tab cycling, refresh, retry, help
//	tab triggers    alt+N
//	active view     forms, log selection, viewport scrolling
package app
