// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"encoding/json"
	"sort"
)

// =============================================================================
// NODES
// =============================================================================

// Stats is an opaque statistics block reported by the server.
type Stats map[string]any

// Keys returns the stat names in sorted order.
func (s Stats) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// JSON returns the block as indented JSON, "{}" when empty.
func (s Stats) JSON() string {
	if len(s) == 0 {
		return "{}"
	}
	data, err := json.MarshalIndent(map[string]any(s), "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

// ModelOption is one selectable model on a node.
type ModelOption struct {
	Option   string
	Selected bool
}

// NodeCard is the view-model of one serving node.
type NodeCard struct {
	NodeID        string
	Models        []ModelOption
	SystemStats   Stats
	InferStats    Stats
	WorkerStarted bool

	// Err is set when the node's entry was malformed. Such a card shows
	// the error and offers no model switch.
	Err error
}

// SelectedModel returns the option currently loaded on the node.
func (c NodeCard) SelectedModel() string {
	for _, m := range c.Models {
		if m.Selected {
			return m.Option
		}
	}
	return ""
}

// SelectedIndex returns the index of the loaded model, or -1.
func (c NodeCard) SelectedIndex() int {
	for i, m := range c.Models {
		if m.Selected {
			return i
		}
	}
	return -1
}

// =============================================================================
// PROMPTS
// =============================================================================

// PromptOption is one entry of the flat prompt selector.
type PromptOption struct {
	Key  string
	Name string
}

// Variable is one declared template variable with its default value.
type Variable struct {
	Name    string
	Default string
}

// PromptDescriptor describes a prompt. A descriptor without variables is a
// fixed prompt that takes free text.
type PromptDescriptor struct {
	Key             string
	Name            string
	Variables       []Variable
	Parameters      map[string]any
	Allowed         bool
	AllowedNodes    []string
	NotAllowedNodes []string
}

// HasForm reports whether the prompt declares a variables schema.
func (p PromptDescriptor) HasForm() bool {
	return len(p.Variables) > 0
}

// Catalog holds both projections of the prompt list.
type Catalog struct {
	Options []PromptOption
	Full    map[string]PromptDescriptor
}

// Descriptor returns the descriptor for key. Keys present only in the
// selector list get a bare descriptor.
func (c *Catalog) Descriptor(key string) PromptDescriptor {
	if d, ok := c.Full[key]; ok {
		return d
	}
	name := key
	for _, o := range c.Options {
		if o.Key == key {
			name = o.Name
			break
		}
	}
	return PromptDescriptor{Key: key, Name: name, Allowed: true}
}

// =============================================================================
// HISTORY
// =============================================================================

// HistoryRow is one past inference formatted for display.
type HistoryRow struct {
	ID           string
	Node         string
	PromptKey    string
	RawInput     string
	InferInput   string
	Response     string
	InputTokens  int
	OutputTokens int
	Elapsed      string // seconds, one decimal place
	Score        int
	Feedback     string
	CreatedAt    string
}

// MaxScore is the highest rating a response can receive.
const MaxScore = 5

// Stars returns how many rating stars are filled and unfilled for score.
// Out of range scores are clamped.
func Stars(score int) (filled, unfilled int) {
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return score, MaxScore - score
}
