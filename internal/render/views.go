// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "github.com/jeranaias/herder-tui/internal/projector"

// Template names.
const (
	ModelCard     = "model-card"
	PromptForm    = "prompt-form"
	FeedbackTable = "feedback-table"
	FeedbackForm  = "feedback-form"
)

// Names lists every template the engine must provide.
var Names = []string{ModelCard, PromptForm, FeedbackTable, FeedbackForm}

// ModelLine is one model of a node card.
type ModelLine struct {
	Option   string
	Selected bool // loaded on the node, per the server
	Cursor   bool // highlighted by the operator
}

// ModelCardView is the data of the model-card template.
type ModelCardView struct {
	NodeID        string
	Models        []ModelLine
	SystemStats   projector.Stats
	InferStats    projector.Stats
	WorkerStarted bool
	ShowWorker    bool
	Pending       string
	Status        string
	Error         string
}

// FieldLine is one labelled input of a prompt form.
type FieldLine struct {
	Label   string
	Input   string
	Focused bool
}

// PromptFormView is the data of the prompt-form template.
type PromptFormView struct {
	Key             string
	Name            string
	Allowed         bool
	AllowedNodes    []string
	NotAllowedNodes []string
	FreeText        bool
	Input           string // free text input, when FreeText
	Fields          []FieldLine
}

// FeedbackTableView is the data of the feedback-table template.
type FeedbackTableView struct {
	Rows  []projector.HistoryRow
	Width int // cell width; 0 disables truncation
}

// FeedbackFormView is the data of the feedback-form template.
type FeedbackFormView struct {
	InferenceID string
	Input       string
	Pending     bool
	Error       string
}
