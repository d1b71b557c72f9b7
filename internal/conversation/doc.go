// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation drives message submission for the Prompts view.
//
// Each submission moves idle -> awaiting-response -> rendered|errored ->
// idle. The operator's message is shown immediately and never reverted.
// One inference call is in flight at a time; submissions made meanwhile
// are queued and issued in order, so completions arrive in issue order.
// Entries are prepended to the log as they complete. The log keeps a
// bounded number of entries and destroys the feedback widget of every
// assistant entry it evicts.
package conversation
