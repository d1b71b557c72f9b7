// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := New(Options{Theme: styles.NewThemeNamed("plain"), TemplateDir: dir})
	require.NoError(t, err)
	return e
}

func TestRender_ModelCard(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(ModelCard, ModelCardView{
		NodeID: "node-a",
		Models: []ModelLine{
			{Option: "llama3"},
			{Option: "mistral", Selected: true, Cursor: true},
		},
		SystemStats: projector.Stats{"gpu": "0%"},
		ShowWorker:  true,
	})
	require.NoError(t, err)

	assert.Contains(t, out, "node-a")
	assert.Contains(t, out, "( ) llama3")
	assert.Contains(t, out, "(•) mistral")
	assert.Equal(t, 1, strings.Count(out, "(•)"))
	assert.Contains(t, out, `"gpu": "0%"`)
	assert.Contains(t, out, "workers stopped")
	assert.Contains(t, out, "{}")
}

func TestRender_ModelCardStatusPriority(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(ModelCard, ModelCardView{NodeID: "n", Error: "switch refused", Status: "old"})
	require.NoError(t, err)
	assert.Contains(t, out, "[X] switch refused")
	assert.NotContains(t, out, "old")
}

func TestRender_FeedbackTable(t *testing.T) {
	e := newTestEngine(t, "")

	rows, err := projector.History([]byte(`[{"infer_input": "hi", "elapsed_seconds": 1.234, "score": 3}]`))
	require.NoError(t, err)

	out, err := e.Render(FeedbackTable, FeedbackTableView{Rows: rows})
	require.NoError(t, err)
	assert.Contains(t, out, "1.2s")
	assert.Contains(t, out, "★★★☆☆")
	assert.Contains(t, out, "hi")
}

func TestRender_FeedbackTableEmpty(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(FeedbackTable, FeedbackTableView{})
	require.NoError(t, err)
	assert.Equal(t, "No history yet.", out)
}

func TestRender_FeedbackTableTruncates(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(FeedbackTable, FeedbackTableView{
		Rows:  []projector.HistoryRow{{Response: "a very long\nresponse body", Elapsed: "0.1"}},
		Width: 8,
	})
	require.NoError(t, err)
	assert.Contains(t, out, "a very …")
	assert.NotContains(t, out, "response body")
}

func TestRender_PromptForm(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(PromptForm, PromptFormView{
		Key:          "summarize",
		Name:         "Summarize",
		Allowed:      true,
		AllowedNodes: []string{"a", "b"},
		Fields: []FieldLine{
			{Label: "text", Input: "> paste here", Focused: true},
			{Label: "max_words", Input: "> 50"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "runs on: a, b")
	assert.Less(t, strings.Index(out, "text"), strings.Index(out, "max_words"))
	assert.NotContains(t, out, "not enabled")
}

func TestRender_FeedbackForm(t *testing.T) {
	e := newTestEngine(t, "")

	out, err := e.Render(FeedbackForm, FeedbackFormView{InferenceID: "inf-1", Input: "great", Error: "boom"})
	require.NoError(t, err)
	assert.Contains(t, out, "inf-1")
	assert.Contains(t, out, "[X] boom")
}

func TestRender_UnknownTemplate(t *testing.T) {
	e := newTestEngine(t, "")

	_, err := e.Render("nope", nil)
	assert.True(t, errors.Is(err, ErrUnknownTemplate))
}

func TestRender_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "feedback-form.tmpl"), []byte("custom {{.InferenceID}}"), 0600))

	e := newTestEngine(t, dir)
	out, err := e.Render(FeedbackForm, FeedbackFormView{InferenceID: "x"})
	require.NoError(t, err)
	assert.Equal(t, "custom x", out)

	// Other templates keep the built-in version.
	out, err = e.Render(FeedbackTable, FeedbackTableView{})
	require.NoError(t, err)
	assert.Equal(t, "No history yet.", out)
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback-form.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	e := newTestEngine(t, dir)

	require.NoError(t, os.WriteFile(path, []byte("{{.Broken"), 0600))
	assert.Error(t, e.Reload())

	out, err := e.Render(FeedbackForm, FeedbackFormView{})
	require.NoError(t, err)
	assert.Equal(t, "v1", out)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feedback-form.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0600))
	e := newTestEngine(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan error, 4)
	require.NoError(t, e.Watch(ctx, func(err error) { reloaded <- err }))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0600))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("templates were not reloaded")
	}

	out, err := e.Render(FeedbackForm, FeedbackFormView{})
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
}

func TestHighlightJSON_Plain(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, HighlightJSON(`{"a": 1}`, true))
	colored := HighlightJSON(`{"a": 1}`, false)
	assert.Contains(t, colored, "a")
}

func TestMarkdown_Caches(t *testing.T) {
	md, err := NewMarkdown(40, true)
	require.NoError(t, err)

	first := md.Render("**bold** text")
	second := md.Render("**bold** text")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "bold")
	assert.Equal(t, 1, md.Len())
}
