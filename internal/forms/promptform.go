// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/util"
)

// inputCharLimit bounds a single form field.
const inputCharLimit = 8192

// PromptForm is the input form generated from a prompt descriptor.
type PromptForm struct {
	desc   projector.PromptDescriptor
	engine *render.Engine
	keys   KeyMap

	fields []textinput.Model // one per variable, declaration order
	free   textinput.Model   // used when the prompt has no schema
	focus  int
}

// NewPromptForm builds the form for desc. Each variable input is
// prefilled with its default.
func NewPromptForm(desc projector.PromptDescriptor, engine *render.Engine, keys KeyMap) *PromptForm {
	f := &PromptForm{desc: desc, engine: engine, keys: keys}

	if !desc.HasForm() {
		f.free = newInput("Type a message...")
		f.free.Focus()
		return f
	}

	for i, v := range desc.Variables {
		ti := newInput(v.Name)
		ti.SetValue(v.Default)
		if i == 0 {
			ti.Focus()
		}
		f.fields = append(f.fields, ti)
	}
	return f
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = placeholder
	ti.CharLimit = inputCharLimit
	return ti
}

// Descriptor returns the descriptor the form was built from.
func (f *PromptForm) Descriptor() projector.PromptDescriptor { return f.desc }

// IsFreeText reports whether the form is the single free-text input.
func (f *PromptForm) IsFreeText() bool { return len(f.fields) == 0 }

// Collect returns every field value keyed by variable name, edited or not.
// It returns nil for a free-text form.
func (f *PromptForm) Collect() map[string]string {
	if f.IsFreeText() {
		return nil
	}
	values := make(map[string]string, len(f.fields))
	for i, v := range f.desc.Variables {
		values[v.Name] = util.NormalizeInput(f.fields[i].Value())
	}
	return values
}

// Text returns the free text, or "" for a schema form.
func (f *PromptForm) Text() string {
	if !f.IsFreeText() {
		return ""
	}
	return util.NormalizeInput(f.free.Value())
}

// RawInput returns the current draft as an inference raw_input.
func (f *PromptForm) RawInput() gateway.RawInput {
	if f.IsFreeText() {
		return gateway.TextInput(f.Text())
	}
	return gateway.FieldsInput(f.Collect())
}

// Empty reports whether there is nothing to send.
func (f *PromptForm) Empty() bool {
	if f.IsFreeText() {
		return f.free.Value() == ""
	}
	return false
}

// Clear empties the free text, or restores every field to its default.
func (f *PromptForm) Clear() {
	if f.IsFreeText() {
		f.free.Reset()
		return
	}
	for i, v := range f.desc.Variables {
		f.fields[i].SetValue(v.Default)
	}
}

// SetText replaces the free text.
func (f *PromptForm) SetText(text string) {
	f.free.SetValue(text)
}

// SetValue replaces the value of variable name. It reports whether the
// variable exists.
func (f *PromptForm) SetValue(name, value string) bool {
	for i, v := range f.desc.Variables {
		if v.Name == name {
			f.fields[i].SetValue(value)
			return true
		}
	}
	return false
}

// Update moves field focus on tab/shift+tab and forwards everything else to
// the focused input.
func (f *PromptForm) Update(msg tea.Msg) tea.Cmd {
	if f.IsFreeText() {
		var cmd tea.Cmd
		f.free, cmd = f.free.Update(msg)
		return cmd
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, f.keys.NextField):
			return f.moveFocus(1)
		case key.Matches(km, f.keys.PrevField):
			return f.moveFocus(-1)
		}
	}
	var cmd tea.Cmd
	f.fields[f.focus], cmd = f.fields[f.focus].Update(msg)
	return cmd
}

func (f *PromptForm) moveFocus(delta int) tea.Cmd {
	f.fields[f.focus].Blur()
	n := len(f.fields)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.fields[f.focus].Focus()
}

// Focus gives the form keyboard focus.
func (f *PromptForm) Focus() tea.Cmd {
	if f.IsFreeText() {
		return f.free.Focus()
	}
	return f.fields[f.focus].Focus()
}

// Blur removes keyboard focus.
func (f *PromptForm) Blur() {
	f.free.Blur()
	for i := range f.fields {
		f.fields[i].Blur()
	}
}

// SetWidth sets the width of every input.
func (f *PromptForm) SetWidth(width int) {
	f.free.Width = width
	for i := range f.fields {
		f.fields[i].Width = width
	}
}

// View renders the form through the prompt-form template.
func (f *PromptForm) View() (string, error) {
	view := render.PromptFormView{
		Key:             f.desc.Key,
		Name:            f.desc.Name,
		Allowed:         f.desc.Allowed,
		AllowedNodes:    f.desc.AllowedNodes,
		NotAllowedNodes: f.desc.NotAllowedNodes,
		FreeText:        f.IsFreeText(),
	}
	if f.IsFreeText() {
		view.Input = f.free.View()
	} else {
		for i, v := range f.desc.Variables {
			view.Fields = append(view.Fields, render.FieldLine{
				Label:   v.Name,
				Input:   f.fields[i].View(),
				Focused: i == f.focus,
			})
		}
	}
	return f.engine.Render(render.PromptForm, view)
}
