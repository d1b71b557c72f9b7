// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"strings"

	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// PromptPicker is the flat prompt selector of the Prompts view.
type PromptPicker struct {
	catalog *projector.Catalog
	cursor  int
}

// NewPromptPicker creates a picker over catalog, preselecting key when it
// is listed.
func NewPromptPicker(catalog *projector.Catalog, key string) *PromptPicker {
	p := &PromptPicker{catalog: catalog}
	for i, o := range catalog.Options {
		if o.Key == key {
			p.cursor = i
			break
		}
	}
	return p
}

// Len returns the number of prompts.
func (p *PromptPicker) Len() int { return len(p.catalog.Options) }

// Move moves the selection by delta, wrapping around.
func (p *PromptPicker) Move(delta int) {
	n := len(p.catalog.Options)
	if n == 0 {
		return
	}
	p.cursor = ((p.cursor+delta)%n + n) % n
}

// Selected returns the selected prompt's descriptor.
func (p *PromptPicker) Selected() (projector.PromptDescriptor, bool) {
	if len(p.catalog.Options) == 0 {
		return projector.PromptDescriptor{}, false
	}
	return p.catalog.Descriptor(p.catalog.Options[p.cursor].Key), true
}

// View renders the selector on one line, disallowed prompts struck out.
func (p *PromptPicker) View(theme *styles.Theme) string {
	if len(p.catalog.Options) == 0 {
		return theme.MessageMeta.Render("No prompts available.")
	}
	parts := make([]string, 0, len(p.catalog.Options))
	for i, o := range p.catalog.Options {
		desc := p.catalog.Descriptor(o.Key)
		label := o.Name
		switch {
		case i == p.cursor:
			label = theme.TabActive.Render(label)
		case !desc.Allowed:
			label = theme.Disallowed.Render(label)
		default:
			label = theme.TabInactive.Render(label)
		}
		parts = append(parts, label)
	}
	return theme.ShortcutDesc.Render("prompt (ctrl+p/ctrl+n): ") + strings.Join(parts, " ")
}
