// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the bindings active while the log has focus.
type KeyMap struct {
	Older    key.Binding
	Newer    key.Binding
	Rate     key.Binding
	Feedback key.Binding
	Retry    key.Binding
}

// DefaultKeyMap returns the default log bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Older: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "older response"),
		),
		Newer: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "newer response"),
		),
		Rate: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "rate"),
		),
		Feedback: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "feedback"),
		),
		Retry: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "retry rating"),
		),
	}
}
