// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// NODE TESTS
// =============================================================================

func TestNodes_PreservesServerOrder(t *testing.T) {
	payload := []byte(`{
		"zeta":  {"models": [{"option": "a", "selected": true}], "worker_started": true},
		"alpha": {"models": [{"option": "b"}, {"option": "c", "selected": true}],
		          "system_stats": {"gpu": "A100"}, "infer_stats": {"record_count": 3}},
		"mid":   {"models": [{"option": "d", "selected": true}]}
	}`)

	cards, err := Nodes(payload)
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, "zeta", cards[0].NodeID)
	assert.Equal(t, "alpha", cards[1].NodeID)
	assert.Equal(t, "mid", cards[2].NodeID)

	assert.True(t, cards[0].WorkerStarted)
	assert.Equal(t, "c", cards[1].SelectedModel())
	assert.Equal(t, 1, cards[1].SelectedIndex())
	assert.Equal(t, "A100", cards[1].SystemStats["gpu"])
	assert.NotNil(t, cards[2].SystemStats)
	assert.NotNil(t, cards[2].InferStats)
}

func TestNodes_SelectionInvariant(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		options []string
	}{
		{"none selected", `{"n": {"models": [{"option": "a"}, {"option": "b"}]}}`, []string{"a", "b"}},
		{"two selected", `{"n": {"models": [{"option": "a", "selected": true}, {"option": "b", "selected": true}]}}`, []string{"a", "b"}},
		{"empty models", `{"n": {"models": []}}`, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Nodes([]byte(tc.payload))
			require.NoError(t, err)
			require.Len(t, cards, 1)

			card := cards[0]
			assert.Equal(t, "n", card.NodeID)
			assert.True(t, errors.Is(card.Err, ErrMalformedPayload), "got %v", card.Err)
			assert.Equal(t, -1, card.SelectedIndex())
			var options []string
			for _, m := range card.Models {
				options = append(options, m.Option)
			}
			assert.Equal(t, tc.options, options)
		})
	}
}

func TestNodes_OfflineNodeKeepsHealthyCards(t *testing.T) {
	payload := `{
		"gpu-a": {"models": [{"option": "llama", "selected": true}], "worker_started": true},
		"gpu-b": {"models": [{"option": "offline?"}]},
		"gpu-c": {"models": [{"option": "mistral", "selected": true}]}
	}`
	cards, err := Nodes([]byte(payload))
	require.NoError(t, err)
	require.Len(t, cards, 3)

	assert.Equal(t, []string{"gpu-a", "gpu-b", "gpu-c"},
		[]string{cards[0].NodeID, cards[1].NodeID, cards[2].NodeID})
	assert.NoError(t, cards[0].Err)
	assert.Equal(t, "llama", cards[0].SelectedModel())
	assert.NoError(t, cards[2].Err)

	offline := cards[1]
	assert.True(t, errors.Is(offline.Err, ErrMalformedPayload))
	assert.Contains(t, offline.Err.Error(), "gpu-b.models")
	assert.Equal(t, []ModelOption{{Option: "offline?"}}, offline.Models)
	assert.Empty(t, offline.SelectedModel())
	assert.NotNil(t, offline.SystemStats)
}

func TestNodes_MissingFields(t *testing.T) {
	cards, err := Nodes([]byte(`[]`))
	assert.Nil(t, cards)
	assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)

	tests := []struct {
		name    string
		payload string
	}{
		{"missing models", `{"n": {"system_stats": {}}}`},
		{"missing option", `{"n": {"models": [{"selected": true}]}}`},
		{"bad stats", `{"n": {"models": [{"option": "a", "selected": true}], "system_stats": 4}}`},
		{"node not an object", `{"n": 7}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cards, err := Nodes([]byte(tc.payload))
			require.NoError(t, err)
			require.Len(t, cards, 1)
			assert.True(t, errors.Is(cards[0].Err, ErrMalformedPayload), "got %v", cards[0].Err)
			assert.Equal(t, -1, cards[0].SelectedIndex())
		})
	}
}

func TestNodes_Empty(t *testing.T) {
	cards, err := Nodes([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

// =============================================================================
// PROMPT TESTS
// =============================================================================

const catalogPayload = `{
	"prompt_options": [
		{"prompt": "short", "name": "Keep it short"},
		{"prompt": "summarize", "name": "Summarize"}
	],
	"full_prompts": {
		"short": {"prompt": "{{text}}", "param": {"temperature": 0.7}},
		"summarize": {
			"variables": [{"text": "paste here"}, {"max_words": 50}, {"style": null}],
			"allowed": false,
			"allowed_nodes": ["node-a"],
			"not_allowed_nodes": ["node-b"]
		}
	}
}`

func TestPrompts_Projections(t *testing.T) {
	catalog, err := Prompts([]byte(catalogPayload))
	require.NoError(t, err)

	assert.Equal(t, []PromptOption{
		{Key: "short", Name: "Keep it short"},
		{Key: "summarize", Name: "Summarize"},
	}, catalog.Options)

	short := catalog.Descriptor("short")
	assert.False(t, short.HasForm())
	assert.True(t, short.Allowed)
	assert.Equal(t, "Keep it short", short.Name)
	assert.Equal(t, 0.7, short.Parameters["temperature"])

	sum := catalog.Descriptor("summarize")
	require.True(t, sum.HasForm())
	assert.Equal(t, []Variable{
		{Name: "text", Default: "paste here"},
		{Name: "max_words", Default: "50"},
		{Name: "style", Default: ""},
	}, sum.Variables)
	assert.False(t, sum.Allowed)
	assert.Equal(t, []string{"node-a"}, sum.AllowedNodes)
	assert.Equal(t, []string{"node-b"}, sum.NotAllowedNodes)
}

func TestPrompts_DescriptorFallback(t *testing.T) {
	catalog, err := Prompts([]byte(`{"prompt_options": [{"prompt": "x", "name": "X"}], "full_prompts": {}}`))
	require.NoError(t, err)

	d := catalog.Descriptor("x")
	assert.Equal(t, "X", d.Name)
	assert.False(t, d.HasForm())
}

func TestPrompts_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"missing options", `{"full_prompts": {}}`},
		{"missing full", `{"prompt_options": []}`},
		{"option without key", `{"prompt_options": [{"name": "a"}], "full_prompts": {}}`},
		{"option without name", `{"prompt_options": [{"prompt": "a"}], "full_prompts": {}}`},
		{"multi-key variable", `{"prompt_options": [], "full_prompts": {"p": {"variables": [{"a": "1", "b": "2"}]}}}`},
		{"empty variable", `{"prompt_options": [], "full_prompts": {"p": {"variables": [{}]}}}`},
		{"scalar variable", `{"prompt_options": [], "full_prompts": {"p": {"variables": ["a"]}}}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Prompts([]byte(tc.payload))
			assert.True(t, errors.Is(err, ErrMalformedPayload), "got %v", err)
		})
	}
}

// =============================================================================
// HISTORY TESTS
// =============================================================================

func TestHistory_ElapsedAndScore(t *testing.T) {
	rows, err := History([]byte(`[{"infer_input": "hi", "elapsed_seconds": 1.234, "score": 3}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "1.2", rows[0].Elapsed)
	assert.Equal(t, "hi", rows[0].InferInput)
	assert.Equal(t, 3, rows[0].Score)

	filled, unfilled := Stars(rows[0].Score)
	assert.Equal(t, 3, filled)
	assert.Equal(t, 2, unfilled)
}

func TestHistory_PassThrough(t *testing.T) {
	rows, err := History([]byte(`[{
		"id": "abc", "node_key": "n1", "prompt_key": "p",
		"raw_input": {"a": "1"}, "infer_input": "<b>raw</b>", "response": "ok",
		"input_tokens": 12, "output_tokens": 40, "elapsed_seconds": 2,
		"score": null, "feedback": null
	}]`))
	require.NoError(t, err)

	row := rows[0]
	assert.Equal(t, `{"a": "1"}`, row.RawInput)
	assert.Equal(t, "<b>raw</b>", row.InferInput)
	assert.Equal(t, "2.0", row.Elapsed)
	assert.Equal(t, 0, row.Score)
	assert.Equal(t, "", row.Feedback)
	assert.Equal(t, 12, row.InputTokens)
}

func TestHistory_Malformed(t *testing.T) {
	_, err := History([]byte(`[{"infer_input": "hi"}]`))
	assert.True(t, errors.Is(err, ErrMalformedPayload))

	_, err = History([]byte(`{"rows": []}`))
	assert.True(t, errors.Is(err, ErrMalformedPayload))
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.234, "1.2"},
		{1.25, "1.3"},
		{0.25, "0.3"},
		{1.45, "1.4"},
		{0.15, "0.1"},
		{2.05, "2.0"},
		{0, "0.0"},
		{12.96, "13.0"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatElapsed(tc.in), "FormatElapsed(%v)", tc.in)
	}
}

func TestStars_Clamps(t *testing.T) {
	f, u := Stars(9)
	assert.Equal(t, 5, f)
	assert.Equal(t, 0, u)

	f, u = Stars(-1)
	assert.Equal(t, 0, f)
	assert.Equal(t, 5, u)
}
