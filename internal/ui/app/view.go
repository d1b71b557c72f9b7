// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/tabs"
	"github.com/jeranaias/herder-tui/internal/ui/components"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height
	m.statusBar.SetWidth(width)
	m.help.Width = width
	if m.form != nil {
		m.form.SetWidth(m.inputWidth())
	}
	m.layout()
	for id := range m.history {
		m.renderHistory(id)
	}
}

// layout sizes the scrollable areas to the space left by the chrome.
func (m *Model) layout() {
	body := m.bodyHeight()
	for _, hv := range m.history {
		hv.viewport.Width = m.width
		hv.viewport.Height = body
	}
	m.logView.Width = m.width
}

// bodyHeight is the height available to the active view.
func (m *Model) bodyHeight() int {
	chrome := 2 // tab bar and status bar
	if m.help.ShowAll {
		chrome += lipgloss.Height(m.help.View(m.helpKeys()))
	}
	return max(3, m.height-chrome)
}

func (m *Model) inputWidth() int {
	return max(20, m.width-4)
}

// =============================================================================
// REGION RENDERING
// =============================================================================

// renderActive redraws the active view's region and the status bar.
func (m *Model) renderActive() {
	switch active := m.tabs.Active(); active {
	case tabs.Nodes:
		m.renderNodes()
	case tabs.Prompts:
		m.renderPrompts()
	case tabs.History, tabs.OwnHistory:
		hv := m.history[active]
		m.regions[active].Set(m.viewState(active, func() string { return hv.viewport.View() }))
	}
	m.updateStatus()
}

// viewState renders loading and error placeholders, or the view itself.
func (m *Model) viewState(view string, content func() string) string {
	switch {
	case m.errs[view] != nil:
		return m.theme.ErrorStyle.Render(styles.StatusIndicators.Error+" "+gateway.UserMessage(m.errs[view])) +
			m.theme.ShortcutDesc.Render("  ctrl+r retry")
	case m.loading[view] && !m.populated(view):
		return m.theme.ShortcutDesc.Render("loading " + strings.ToLower(viewLabels[view]) + "...")
	}
	return content()
}

// populated reports whether view has a view-model to show while a refresh
// is in flight.
func (m *Model) populated(view string) bool {
	switch view {
	case tabs.Nodes:
		return m.nodes != nil
	case tabs.Prompts:
		return m.picker != nil
	default:
		return m.history[view].rows != nil
	}
}

func (m *Model) renderNodes() {
	m.regions[tabs.Nodes].Set(m.viewState(tabs.Nodes, func() string {
		if m.nodes == nil {
			return ""
		}
		out, err := m.nodes.View()
		if err != nil {
			return m.theme.ErrorStyle.Render(err.Error())
		}
		return out
	}))
}

// promptHeader is the picker and the form of the Prompts view.
func (m *Model) promptHeader() string {
	if m.picker == nil {
		return ""
	}
	parts := []string{m.picker.View(m.theme)}
	if m.form != nil {
		out, err := m.form.View()
		if err != nil {
			out = m.theme.ErrorStyle.Render(err.Error())
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderPrompts() {
	m.regions[tabs.Prompts].Set(m.viewState(tabs.Prompts, func() string {
		header := m.promptHeader()
		m.logView.Height = max(3, m.bodyHeight()-lipgloss.Height(header)-1)
		parts := []string{header}
		busy := ""
		if r := m.surface.Region(regionBusy); r.Visible() {
			busy = r.Content()
		}
		parts = append(parts, busy)
		m.logView.SetContent(m.surface.Region(regionLog).Content())
		parts = append(parts, m.logView.View())
		return strings.Join(parts, "\n")
	}))
}

func (m *Model) renderHistory(view string) {
	hv, ok := m.history[view]
	if !ok || hv.rows == nil {
		return
	}
	out, err := m.engine.Render(render.FeedbackTable, render.FeedbackTableView{
		Rows:  hv.rows,
		Width: max(20, m.width-18),
	})
	if err != nil {
		out = m.theme.ErrorStyle.Render(err.Error())
	}
	hv.viewport.SetContent(out)
}

func (m *Model) updateStatus() {
	active := m.tabs.Active()
	m.statusBar.ActiveTab = viewLabels[active]
	m.statusBar.Queued = 0

	switch {
	case m.tabs.Err() != nil:
		m.statusBar.SetStatus(components.StatusError, "tabs unavailable")
	case active != "" && m.errs[active] != nil:
		m.statusBar.SetStatus(components.StatusError, "")
	case !m.tabs.Loaded() || m.loading[active]:
		m.statusBar.SetStatus(components.StatusLoading, "")
	case m.conv.Busy():
		m.statusBar.SetStatus(components.StatusWaiting, "")
		m.statusBar.Queued = m.conv.Queued()
	default:
		m.statusBar.SetStatus(components.StatusReady, "")
	}

	m.statusBar.Shortcuts = m.shortcuts()
}

// shortcuts are the key hints for the current focus.
func (m *Model) shortcuts() []components.Shortcut {
	hint := func(b key.Binding) components.Shortcut {
		h := b.Help()
		return components.Shortcut{Key: h.Key, Desc: h.Desc}
	}
	out := []components.Shortcut{}
	switch {
	case m.tabs.Err() != nil:
		out = append(out, hint(m.keys.Retry))
	case m.tabs.Active() == tabs.Prompts && m.focus == focusInput:
		out = append(out, hint(m.keys.Submit), hint(m.keys.FocusLog))
	case m.tabs.Active() == tabs.Prompts:
		out = append(out, hint(m.convKeys.Rate), hint(m.convKeys.Feedback), hint(m.keys.FocusInput))
	case m.tabs.Active() == tabs.Nodes:
		out = append(out, hint(m.formKeys.Choose), hint(m.keys.Refresh))
	}
	return append(out, hint(m.keys.Help))
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the tab bar, the active view, toasts, help and the status
// bar. An open feedback modal replaces the screen.
func (m *Model) View() string {
	if modal, ok := m.surface.ActiveModal(); ok {
		box := m.theme.ModalBox.Render(m.theme.ModalTitle.Render(modal.Title) + "\n\n" + modal.Body)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	toasts := ""
	if m.toasts.HasToasts() {
		toasts = components.RenderToastStack(m.theme, m.toasts.Toasts(), m.width)
	}

	body := ""
	for _, id := range viewOrder {
		if r := m.regions[id]; r.Visible() {
			body = r.Content()
			break
		}
	}
	height := m.bodyHeight()
	if toasts != "" {
		height = max(1, height-lipgloss.Height(toasts))
	}
	body = lipgloss.NewStyle().Height(height).MaxHeight(height).Render(body)

	sections := []string{m.surface.Region(regionBar).Content(), body}
	if toasts != "" {
		sections = append(sections, toasts)
	}
	if m.help.ShowAll {
		sections = append(sections, m.help.View(m.helpKeys()))
	}
	sections = append(sections, m.statusBar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// helpKeys joins the application bindings with those of the active view.
type helpKeys struct {
	app   KeyMap
	extra []key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding {
	return h.app.ShortHelp()
}

func (h helpKeys) FullHelp() [][]key.Binding {
	groups := h.app.FullHelp()
	if len(h.extra) > 0 {
		groups = append(groups, h.extra)
	}
	return groups
}

func (m *Model) helpKeys() helpKeys {
	h := helpKeys{app: m.keys}
	switch m.tabs.Active() {
	case tabs.Nodes:
		fk := m.formKeys
		h.extra = []key.Binding{fk.Up, fk.Down, fk.NextCard, fk.PrevCard, fk.Choose}
		if m.cfg.Capabilities.WorkerControl {
			h.extra = append(h.extra, fk.StartWorkers)
		}
	case tabs.Prompts:
		ck := m.convKeys
		h.extra = []key.Binding{m.formKeys.NextField, ck.Newer, ck.Older, ck.Rate, ck.Feedback, ck.Retry}
	}
	for _, t := range m.tabs.Triggers() {
		h.extra = append(h.extra, t.Key)
	}
	return h
}
