// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

var plain = styles.NewThemeNamed("plain")

func TestStatus_StringAndIcon(t *testing.T) {
	tests := []struct {
		status Status
		text   string
		icon   string
	}{
		{StatusReady, "Ready", "[OK]"},
		{StatusLoading, "Loading...", "[ ]"},
		{StatusWaiting, "Waiting for model...", "[ ]"},
		{StatusError, "Error", "[X]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.text, tt.status.String())
		assert.Equal(t, tt.icon, tt.status.Icon())
	}
}

func TestStatusBar_Wide(t *testing.T) {
	bar := NewStatusBar(plain)
	bar.SetWidth(120)
	bar.Server = "127.0.0.1:8000"
	bar.ActiveTab = "Prompts"
	bar.SetStatus(StatusWaiting, "")
	bar.Queued = 2
	bar.Shortcuts = []Shortcut{{Key: "?", Desc: "help"}}

	out := bar.View()
	assert.Contains(t, out, "127.0.0.1:8000 | Prompts | [ ] Waiting for model... (2 queued)")
	assert.Contains(t, out, "? help")
}

func TestStatusBar_DropsShortcutsWhenCrowded(t *testing.T) {
	bar := NewStatusBar(plain)
	bar.SetWidth(60)
	bar.Server = "herder.internal.example.com:8000"
	bar.ActiveTab = "OwnHistory"
	bar.SetStatus(StatusError, "could not load history")
	bar.Shortcuts = []Shortcut{{Key: "ctrl+r", Desc: "retry"}}

	out := bar.View()
	assert.NotContains(t, out, "ctrl+r retry")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 60)
	}
}

func TestStatusBar_Narrow(t *testing.T) {
	bar := NewStatusBar(plain)
	bar.SetWidth(30)
	bar.ActiveTab = "Nodes"

	assert.Contains(t, bar.View(), "[OK] Nodes")
}

func TestToastManager_ExpiresAndCaps(t *testing.T) {
	m := NewToastManager()
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }

	status := m.AddStatus("switch requested")
	m.AddError("switch failed")
	require.Len(t, m.Toasts(), 2)
	assert.Equal(t, "switch failed", m.Toasts()[0].Message)

	assert.True(t, m.Tick(start.Add(5*time.Second)))
	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, ToastError, toasts[0].Kind)
	assert.NotEqual(t, status, toasts[0].ID)

	assert.False(t, m.Tick(start.Add(9*time.Second)))
	assert.False(t, m.HasToasts())

	for i := 0; i < maxToasts+3; i++ {
		m.AddSuccess("ok")
	}
	assert.Len(t, m.Toasts(), maxToasts)
}

func TestToastManager_Remove(t *testing.T) {
	m := NewToastManager()
	id := m.AddStatus("hello")
	m.Remove(id)
	assert.False(t, m.HasToasts())
}

func TestRenderToastStack(t *testing.T) {
	m := NewToastManager()
	m.AddStatus("templates reloaded")
	m.AddError("workers did not start")

	out := RenderToastStack(plain, m.Toasts(), 80)
	assert.Contains(t, out, "[*] templates reloaded")
	assert.Contains(t, out, "[X] workers did not start")
	assert.Less(t, strings.Index(out, "templates reloaded"), strings.Index(out, "workers did not start"))

	assert.Empty(t, RenderToastStack(plain, nil, 80))
}
