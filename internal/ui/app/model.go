// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/config"
	"github.com/jeranaias/herder-tui/internal/conversation"
	"github.com/jeranaias/herder-tui/internal/feedback"
	"github.com/jeranaias/herder-tui/internal/forms"
	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/surface"
	"github.com/jeranaias/herder-tui/internal/tabs"
	"github.com/jeranaias/herder-tui/internal/ui/components"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// Region names that are not tab views.
const (
	regionBar  = "tabs"
	regionLog  = "log"
	regionBusy = "busy"
)

// viewOrder is the display order of the tab views.
var viewOrder = []string{tabs.Nodes, tabs.Prompts, tabs.History, tabs.OwnHistory}

var viewLabels = map[string]string{
	tabs.Nodes:      "Nodes",
	tabs.Prompts:    "Prompts",
	tabs.History:    "History",
	tabs.OwnHistory: "My history",
}

// Gateway is everything the control surface calls on the server.
type Gateway interface {
	tabs.Lister
	forms.NodeGateway
	conversation.Inferer
	feedback.Gateway
	Nodes(ctx context.Context) ([]byte, error)
	Prompts(ctx context.Context) ([]byte, error)
	History(ctx context.Context) ([]byte, error)
}

// focusArea is where keys go on the Prompts view.
type focusArea int

const (
	focusInput focusArea = iota
	focusLog
)

// historyView is one population of a history tab.
type historyView struct {
	rows     []projector.HistoryRow
	viewport viewport.Model
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root Bubble Tea model of the control surface.
type Model struct {
	ctx    context.Context
	gw     Gateway
	cfg    *config.Config
	engine *render.Engine
	theme  *styles.Theme
	log    *slog.Logger

	keys     KeyMap
	formKeys forms.KeyMap
	convKeys conversation.KeyMap

	surface  *surface.Surface
	regions  map[string]*surface.Region
	tabs     *tabs.Controller
	registry *feedback.Registry
	conv     *conversation.Controller

	// View-models, each replaced wholesale by its populate routine.
	nodes   *forms.NodesView
	catalog *projector.Catalog
	picker  *forms.PromptPicker
	form    *forms.PromptForm
	history map[string]*historyView

	gens    map[string]int
	loading map[string]bool
	errs    map[string]error

	focus        focusArea
	logView      viewport.Model
	statusBar    *components.StatusBar
	toasts       *components.ToastManager
	toastTicking bool
	help         help.Model

	width  int
	height int
}

// New wires the control surface. Nothing is fetched until Init.
func New(ctx context.Context, gw Gateway, cfg *config.Config, engine *render.Engine) *Model {
	if cfg == nil {
		cfg = config.Default()
	}
	theme := engine.Theme()

	m := &Model{
		ctx:       ctx,
		gw:        gw,
		cfg:       cfg,
		engine:    engine,
		theme:     theme,
		log:       logging.For("app"),
		keys:      DefaultKeyMap(),
		formKeys:  forms.DefaultKeyMap(),
		convKeys:  conversation.DefaultKeyMap(),
		surface:   surface.New(),
		regions:   make(map[string]*surface.Region),
		history:   make(map[string]*historyView),
		gens:      make(map[string]int),
		loading:   make(map[string]bool),
		errs:      make(map[string]error),
		logView:   viewport.New(80, 10),
		statusBar: components.NewStatusBar(theme),
		toasts:    components.NewToastManager(),
		help:      help.New(),
		width:     80,
		height:    24,
	}
	if u, err := url.Parse(cfg.Server.URL); err == nil && u.Host != "" {
		m.statusBar.Server = u.Host
	}

	bar := m.surface.Region(regionBar)
	views := make([]tabs.View, 0, len(viewOrder))
	for _, id := range viewOrder {
		id := id
		region := m.surface.Region(id)
		m.regions[id] = region
		views = append(views, tabs.View{
			ID:      id,
			Label:   viewLabels[id],
			Region:  region,
			Refresh: func() tea.Cmd { return m.populate(id) },
		})
	}
	for _, id := range []string{tabs.History, tabs.OwnHistory} {
		m.history[id] = &historyView{viewport: viewport.New(80, 20)}
	}

	m.tabs = tabs.New(gw, tabs.Config{
		Views:        views,
		Bar:          bar,
		DefaultTab:   cfg.UI.DefaultTab,
		Permissioned: cfg.Capabilities.PermissionedTabs,
		Theme:        theme,
	})
	m.registry = feedback.NewRegistry(ctx, gw, m.surface, engine)
	m.conv = conversation.New(ctx, gw, m.registry, engine, conversation.Options{
		MaxQueued: cfg.UI.MaxQueued,
		Retention: cfg.UI.Retention,
		Log:       m.surface.Region(regionLog),
		Busy:      m.surface.Region(regionBusy),
		Keys:      m.convKeys,
	})
	return m
}

// Init starts the permission fetch.
func (m *Model) Init() tea.Cmd {
	return m.tabs.Initialize(m.ctx)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.renderActive()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tabs.TabsLoadedMsg:
		cmd := m.tabs.Apply(msg)
		if msg.Err != nil {
			return tea.Batch(cmd, m.toast(components.ToastError, "Could not load tabs: "+gateway.UserMessage(msg.Err)))
		}
		return cmd

	case NodesLoadedMsg:
		return m.applyNodes(msg)

	case PromptsLoadedMsg:
		return m.applyPrompts(msg)

	case HistoryLoadedMsg:
		m.applyHistory(msg)
		return nil

	case forms.ModelSwitchedMsg:
		if m.nodes != nil {
			m.nodes.Update(msg)
		}
		if msg.Err != nil {
			return m.toast(components.ToastError, fmt.Sprintf("Switch on %s failed: %s", msg.NodeID, gateway.UserMessage(msg.Err)))
		}
		return m.toast(components.ToastSuccess, fmt.Sprintf("Switch to %s requested on %s", msg.Model, msg.NodeID))

	case forms.WorkersStartedMsg:
		if m.nodes != nil {
			m.nodes.Update(msg)
		}
		if msg.Err != nil {
			return m.toast(components.ToastError, "Workers did not start: "+gateway.UserMessage(msg.Err))
		}
		return m.toast(components.ToastSuccess, "Workers start requested")

	case conversation.InferredMsg:
		return m.conv.Apply(msg)

	case feedback.ScoredMsg, feedback.FeedbackSentMsg:
		cmd, _ := m.registry.Update(msg)
		m.conv.Render()
		return cmd

	case spinner.TickMsg:
		return m.conv.Update(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return components.ToastTickCmd()
		}
		m.toastTicking = false
		return nil

	case TemplatesReloadedMsg:
		if msg.Err != nil {
			return m.toast(components.ToastError, "Template reload failed: "+msg.Err.Error())
		}
		m.conv.Render()
		for id := range m.history {
			m.renderHistory(id)
		}
		return m.toast(components.ToastStatus, "Templates reloaded")
	}
	return nil
}

// handleKey routes a key press: quit, then the feedback modal, then the
// global bindings, then the active view.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}

	if w, ok := m.registry.ActiveModal(); ok {
		return w.UpdateModal(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help) && !m.typing():
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return nil
	case key.Matches(msg, m.keys.NextTab):
		return m.tabs.Cycle(1)
	case key.Matches(msg, m.keys.PrevTab):
		return m.tabs.Cycle(-1)
	case key.Matches(msg, m.keys.Refresh):
		if active := m.tabs.Active(); active != "" {
			return m.populate(active)
		}
		return nil
	case key.Matches(msg, m.keys.Retry):
		if cmd, ok := m.retry(); ok {
			return cmd
		}
	}
	if cmd, ok := m.tabs.HandleKey(msg); ok {
		return cmd
	}

	switch m.tabs.Active() {
	case tabs.Nodes:
		if m.nodes != nil {
			return m.nodes.Update(msg)
		}
	case tabs.Prompts:
		return m.handlePromptsKey(msg)
	case tabs.History, tabs.OwnHistory:
		hv := m.history[m.tabs.Active()]
		var cmd tea.Cmd
		hv.viewport, cmd = hv.viewport.Update(msg)
		return cmd
	}
	return nil
}

// typing reports whether printable keys belong to a text input.
func (m *Model) typing() bool {
	return m.tabs.Active() == tabs.Prompts && m.focus == focusInput
}

// retry re-issues whatever failed: the permission fetch first, then the
// active view's population. Anything else falls through to the view.
func (m *Model) retry() (tea.Cmd, bool) {
	if m.tabs.Err() != nil {
		return m.tabs.Retry(m.ctx), true
	}
	active := m.tabs.Active()
	if active != "" && m.errs[active] != nil {
		return m.populate(active), true
	}
	return nil, false
}

func (m *Model) handlePromptsKey(msg tea.KeyMsg) tea.Cmd {
	if m.focus == focusLog {
		switch {
		case key.Matches(msg, m.keys.FocusInput):
			return m.focusPromptInput()
		case key.Matches(msg, m.keys.PageUp):
			m.logView.HalfViewUp()
			return nil
		case key.Matches(msg, m.keys.PageDown):
			m.logView.HalfViewDown()
			return nil
		}
		cmd, _ := m.conv.HandleLogKey(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.FocusLog):
		m.focus = focusLog
		if m.form != nil {
			m.form.Blur()
		}
		if _, ok := m.conv.Selected(); !ok {
			m.conv.MoveSelection(1)
		}
		return nil
	case key.Matches(msg, m.keys.NextPrompt):
		return m.movePrompt(1)
	case key.Matches(msg, m.keys.PrevPrompt):
		return m.movePrompt(-1)
	case key.Matches(msg, m.keys.PageUp):
		m.logView.HalfViewUp()
		return nil
	case key.Matches(msg, m.keys.PageDown):
		m.logView.HalfViewDown()
		return nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	if m.form != nil {
		return m.form.Update(msg)
	}
	return nil
}

func (m *Model) focusPromptInput() tea.Cmd {
	m.focus = focusInput
	if m.form != nil {
		return m.form.Focus()
	}
	return nil
}

// movePrompt changes the selected prompt and builds its form.
func (m *Model) movePrompt(delta int) tea.Cmd {
	if m.picker == nil {
		return nil
	}
	m.picker.Move(delta)
	return m.buildForm()
}

// buildForm replaces the form with one for the selected prompt.
func (m *Model) buildForm() tea.Cmd {
	desc, ok := m.picker.Selected()
	if !ok {
		m.form = nil
		return nil
	}
	if !m.cfg.Capabilities.PromptForms {
		desc.Variables = nil
	}
	m.form = forms.NewPromptForm(desc, m.engine, m.formKeys)
	m.form.SetWidth(m.inputWidth())
	if m.focus == focusInput {
		return m.form.Focus()
	}
	return nil
}

// submit sends the form. Prompts the operator may not run are refused
// locally with a notice.
func (m *Model) submit() tea.Cmd {
	if m.form == nil {
		return nil
	}
	desc := m.form.Descriptor()
	if !desc.Allowed {
		m.conv.Notice(fmt.Sprintf("Prompt %q is not enabled for you; pick another with ctrl+p/ctrl+n", desc.Name))
		return nil
	}
	var param map[string]any
	if m.cfg.Capabilities.PromptForms && len(desc.Parameters) > 0 {
		param = desc.Parameters
	}
	return m.conv.Submit(m.form, desc.Key, param)
}

// toast shows a notification and starts the tick loop if it is idle.
func (m *Model) toast(kind components.ToastKind, text string) tea.Cmd {
	m.toasts.Add(kind, text)
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// =============================================================================
// POPULATE ROUTINES
// =============================================================================

// populate starts a new generation of view's population.
func (m *Model) populate(view string) tea.Cmd {
	m.gens[view]++
	gen := m.gens[view]
	m.loading[view] = true
	m.errs[view] = nil
	m.log.Debug("populating view", slog.String("view", view), slog.Int("gen", gen))

	ctx, gw := m.ctx, m.gw
	switch view {
	case tabs.Nodes:
		return func() tea.Msg {
			payload, err := gw.Nodes(ctx)
			if err != nil {
				return NodesLoadedMsg{Gen: gen, Err: err}
			}
			cards, err := projector.Nodes(payload)
			return NodesLoadedMsg{Gen: gen, Cards: cards, Err: err}
		}
	case tabs.Prompts:
		return func() tea.Msg {
			payload, err := gw.Prompts(ctx)
			if err != nil {
				return PromptsLoadedMsg{Gen: gen, Err: err}
			}
			catalog, err := projector.Prompts(payload)
			return PromptsLoadedMsg{Gen: gen, Catalog: catalog, Err: err}
		}
	case tabs.History, tabs.OwnHistory:
		return func() tea.Msg {
			payload, err := gw.History(ctx)
			if err != nil {
				return HistoryLoadedMsg{View: view, Gen: gen, Err: err}
			}
			rows, err := projector.History(payload)
			return HistoryLoadedMsg{View: view, Gen: gen, Rows: rows, Err: err}
		}
	}
	m.loading[view] = false
	return nil
}

// stale reports whether a populate result must be dropped.
func (m *Model) stale(view string, gen int) bool {
	if gen == m.gens[view] && m.tabs.Active() == view {
		return false
	}
	m.log.Debug("discarding late populate result",
		slog.String("view", view),
		slog.Int("gen", gen),
		slog.Int("current_gen", m.gens[view]),
		slog.String("active", m.tabs.Active()))
	if gen == m.gens[view] {
		m.loading[view] = false
	}
	return true
}

func (m *Model) applyNodes(msg NodesLoadedMsg) tea.Cmd {
	if m.stale(tabs.Nodes, msg.Gen) {
		return nil
	}
	m.loading[tabs.Nodes] = false
	if msg.Err != nil {
		m.errs[tabs.Nodes] = msg.Err
		m.log.Warn("nodes population failed", slog.String("error", msg.Err.Error()))
		return nil
	}
	for _, c := range msg.Cards {
		if c.Err != nil {
			m.log.Warn("node unavailable", slog.String("node", c.NodeID), slog.String("error", c.Err.Error()))
		}
	}
	m.nodes = forms.NewNodesView(m.ctx, msg.Cards, m.gw, m.engine, forms.NodesOptions{
		WorkerControl: m.cfg.Capabilities.WorkerControl,
		Keys:          m.formKeys,
	})
	return nil
}

func (m *Model) applyPrompts(msg PromptsLoadedMsg) tea.Cmd {
	if m.stale(tabs.Prompts, msg.Gen) {
		return nil
	}
	m.loading[tabs.Prompts] = false
	if msg.Err != nil {
		m.errs[tabs.Prompts] = msg.Err
		m.log.Warn("prompts population failed", slog.String("error", msg.Err.Error()))
		return nil
	}

	current := ""
	if m.form != nil {
		current = m.form.Descriptor().Key
	}
	m.catalog = msg.Catalog
	m.picker = forms.NewPromptPicker(msg.Catalog, current)
	if desc, ok := m.picker.Selected(); ok && m.form != nil && desc.Key == current {
		// Same prompt still selected: keep the draft.
		if m.focus == focusInput {
			return m.form.Focus()
		}
		return nil
	}
	return m.buildForm()
}

func (m *Model) applyHistory(msg HistoryLoadedMsg) {
	if m.stale(msg.View, msg.Gen) {
		return
	}
	m.loading[msg.View] = false
	if msg.Err != nil {
		m.errs[msg.View] = msg.Err
		m.log.Warn("history population failed", slog.String("view", msg.View), slog.String("error", msg.Err.Error()))
		return
	}
	hv := m.history[msg.View]
	hv.rows = msg.Rows
	m.renderHistory(msg.View)
	hv.viewport.GotoTop()
}
