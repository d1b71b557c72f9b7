// json_output.go - JSON output for the non-interactive commands.
//
// Every command run with --json writes exactly one JSONResponse to stdout.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package cli

import (
	"encoding/json"
	"io"
	"time"
)

// JSONResponse is the envelope of all JSON output.
type JSONResponse struct {
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error is the error message if Success is false, null otherwise
	Error *string `json:"error"`

	Timestamp string `json:"timestamp"`
	Command   string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// StatusData represents the data returned by the status command.
type StatusData struct {
	Server  string         `json:"server"`
	Nodes   []NodeStatus   `json:"nodes"`
	Prompts []PromptStatus `json:"prompts"`
}

// NodeStatus is one node in the status output.
type NodeStatus struct {
	NodeID        string         `json:"node_id"`
	Model         string         `json:"model"`
	Models        []string       `json:"models"`
	WorkerStarted bool           `json:"worker_started"`
	SystemStats   map[string]any `json:"system_stats,omitempty"`
	InferStats    map[string]any `json:"infer_stats,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// PromptStatus is one prompt in the status output.
type PromptStatus struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Allowed      bool     `json:"allowed"`
	Variables    []string `json:"variables,omitempty"`
	AllowedNodes []string `json:"allowed_nodes,omitempty"`
}

// HistoryEntry is one row of the history output.
type HistoryEntry struct {
	ID           string `json:"id,omitempty"`
	Node         string `json:"node_key"`
	PromptKey    string `json:"prompt_key"`
	RawInput     string `json:"raw_input"`
	InferInput   string `json:"infer_input"`
	Response     string `json:"response"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	Elapsed      string `json:"elapsed_seconds"`
	Score        int    `json:"score,omitempty"`
	Feedback     string `json:"feedback,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}
