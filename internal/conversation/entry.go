// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"maps"
	"sort"
	"strings"

	"github.com/jeranaias/herder-tui/internal/feedback"
	"github.com/jeranaias/herder-tui/internal/gateway"
)

// EntryKind distinguishes log entries.
type EntryKind int

const (
	EntryHuman EntryKind = iota
	EntryAssistant
	EntryError
	EntryNotice
)

// String returns the kind name.
func (k EntryKind) String() string {
	switch k {
	case EntryHuman:
		return "human"
	case EntryAssistant:
		return "assistant"
	case EntryError:
		return "error"
	case EntryNotice:
		return "notice"
	default:
		return "unknown"
	}
}

// Entry is one item of the conversation log.
type Entry struct {
	Kind         EntryKind
	SubmissionID string
	PromptKey    string
	Text         string
	Model        string           // assistant entries, when reported
	InferenceID  string           // assistant entries
	Widget       *feedback.Widget // assistant entries
}

// formatInput renders a raw_input for the log. Mappings are shown one
// variable per line, sorted by name.
func formatInput(in gateway.RawInput) string {
	if !in.IsMapping() {
		return in.Text
	}
	names := make([]string, 0, len(in.Fields))
	for name := range in.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, name+": "+in.Fields[name])
	}
	return strings.Join(lines, "\n")
}

// emptyInput reports whether there is nothing to send.
func emptyInput(in gateway.RawInput) bool {
	return !in.IsMapping() && strings.TrimSpace(in.Text) == ""
}

// sameRequest reports whether two requests would send the same input with
// the same prompt.
func sameRequest(a, b gateway.InferRequest) bool {
	return a.PromptKey == b.PromptKey &&
		a.RawInput.Text == b.RawInput.Text &&
		maps.Equal(a.RawInput.Fields, b.RawInput.Fields)
}
