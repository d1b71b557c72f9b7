// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"encoding/json"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// RawInput is the raw_input of an inference request. It is either free
// text or a mapping of template variable name to value.
type RawInput struct {
	Text   string
	Fields map[string]string
}

// TextInput returns a free text RawInput.
func TextInput(text string) RawInput {
	return RawInput{Text: text}
}

// FieldsInput returns a mapping RawInput.
func FieldsInput(fields map[string]string) RawInput {
	return RawInput{Fields: fields}
}

// IsMapping reports whether the input is a variable mapping.
func (r RawInput) IsMapping() bool {
	return r.Fields != nil
}

// Equal reports whether two inputs carry the same text or mapping.
func (r RawInput) Equal(o RawInput) bool {
	if r.IsMapping() != o.IsMapping() {
		return false
	}
	if !r.IsMapping() {
		return r.Text == o.Text
	}
	if len(r.Fields) != len(o.Fields) {
		return false
	}
	for k, v := range r.Fields {
		if ov, ok := o.Fields[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the input as a JSON string or object.
func (r RawInput) MarshalJSON() ([]byte, error) {
	if r.Fields != nil {
		return json.Marshal(r.Fields)
	}
	return json.Marshal(r.Text)
}

// InferRequest is the request body for /api/v1/infer.
type InferRequest struct {
	RawInput  RawInput       `json:"raw_input"`
	PromptKey string         `json:"prompt_key"`
	Param     map[string]any `json:"param,omitempty"` // Optional generation parameter overrides
}

// SwitchModelRequest is the request body for /api/v1/switch_model.
type SwitchModelRequest struct {
	ModelKey string `json:"model_key"`
	NodeKey  string `json:"node_key"`
}

// ScoreRequest is the request body for /api/v1/score.
type ScoreRequest struct {
	InferenceID string `json:"inference_id"`
	Score       int    `json:"score"`
}

// FeedbackRequest is the request body for /api/v1/feedback.
type FeedbackRequest struct {
	InferenceID string `json:"inference_id"`
	Feedback    string `json:"feedback"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// InferResponse is the response from /api/v1/infer.
type InferResponse struct {
	Text        string `json:"text"`
	InferenceID string `json:"inference_id"`
	Model       string `json:"model,omitempty"`
}

// inferWire is used to detect missing required fields.
type inferWire struct {
	Text        *string `json:"text"`
	InferenceID *string `json:"inference_id"`
	Model       string  `json:"model"`
}

// errorBody is the error envelope returned on non-success statuses.
// Detail is a plain string for application errors and an array for
// request validation errors.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// detailText extracts a human readable detail from an error body.
func detailText(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}
