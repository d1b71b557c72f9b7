// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the bindings of the node and prompt controls.
type KeyMap struct {
	Up           key.Binding
	Down         key.Binding
	NextCard     key.Binding
	PrevCard     key.Binding
	Choose       key.Binding
	StartWorkers key.Binding
	NextField    key.Binding
	PrevField    key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous model"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next model"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("right/l", "next node"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("left/h", "previous node"),
		),
		Choose: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "switch model"),
		),
		StartWorkers: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "start workers"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous field"),
		),
	}
}
