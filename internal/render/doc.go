// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render is the template engine of the herder console.
//
// Four named templates turn view-models into styled terminal text:
// model-card, prompt-form, feedback-table and feedback-form. The built-in
// versions are embedded; a <name>.tmpl file in the configured template
// directory overrides one, and Watch reloads overrides as they change.
//
// Templates can call:
//
//	style NAME TEXT     apply a theme style (title, label, error, ...)
//	stars SCORE         filled and unfilled rating stars
//	json STATS          highlighted, indented stats block
//	markdown TEXT       glamour rendered markdown
//	truncate WIDTH TEXT width aware truncation
//	oneline TEXT        collapse whitespace and newlines
//
// Usage:
//
//	engine, err := render.New(render.Options{Theme: theme})
//	out, err := engine.Render(render.ModelCard, render.ModelCardView{...})
package render
