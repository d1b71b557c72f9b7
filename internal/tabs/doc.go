// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tabs gates the console's views behind server-declared permissions.
//
// The Controller asks the server once for the tab ids the operator may
// open. Only those tabs get a Trigger; a Trigger is the sole way to
// activate a view, so an unpermitted view has no activation path at all.
// Exactly one view is active once the permission list has been applied.
package tabs
