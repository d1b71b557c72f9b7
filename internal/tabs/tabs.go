// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tabs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/surface"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// ErrTabNotPermitted is returned when activating a tab that has no bound
// trigger.
var ErrTabNotPermitted = errors.New("tab not permitted")

// Well-known tab ids, as declared by the herder server.
const (
	Nodes      = "Nodes"
	Prompts    = "Prompts"
	History    = "History"
	OwnHistory = "OwnHistory"
)

// =============================================================================
// TYPES
// =============================================================================

// Lister fetches the permitted tab ids.
type Lister interface {
	AllowedTabs(ctx context.Context) ([]string, error)
}

// View is one activatable view: the region it draws into and an optional
// refresh command run on every activation.
type View struct {
	ID      string
	Label   string
	Region  *surface.Region
	Refresh func() tea.Cmd
}

// Tab is the immutable record built from the permission list.
type Tab struct {
	ID        string
	Permitted bool
	View      string
}

// Trigger activates its bound tab. Triggers exist only for permitted tabs.
type Trigger struct {
	id    string
	label string
	Key   key.Binding
	ctl   *Controller
}

// ID returns the tab id the trigger is bound to.
func (t *Trigger) ID() string { return t.id }

// Activate shows the bound view and returns its refresh command.
func (t *Trigger) Activate() tea.Cmd {
	return t.ctl.activate(t.id)
}

// TabsLoadedMsg carries the result of the permission fetch.
type TabsLoadedMsg struct {
	IDs []string
	Err error
}

// Config configures a Controller.
type Config struct {
	// Views in display order.
	Views []View

	// Bar is the region the tab bar is drawn into.
	Bar *surface.Region

	// DefaultTab is activated after initialization when permitted.
	DefaultTab string

	// Permissioned enables the permission fetch. When false every
	// configured view is permitted.
	Permissioned bool

	Theme *styles.Theme
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the active-view pointer.
type Controller struct {
	lister Lister
	cfg    Config
	views  map[string]View
	log    *slog.Logger

	started  bool
	loaded   bool
	tabs     []Tab
	triggers map[string]*Trigger
	order    []*Trigger
	active   string
	err      error
}

// New creates a controller. Every view region starts hidden.
func New(lister Lister, cfg Config) *Controller {
	if cfg.Theme == nil {
		cfg.Theme = styles.DefaultTheme
	}
	views := make(map[string]View, len(cfg.Views))
	for _, v := range cfg.Views {
		if v.Label == "" {
			v.Label = v.ID
		}
		views[v.ID] = v
		v.Region.Hide()
	}
	c := &Controller{
		lister:   lister,
		cfg:      cfg,
		views:    views,
		log:      logging.For("tabs"),
		triggers: make(map[string]*Trigger),
	}
	c.renderBar()
	return c
}

// Initialize fetches the permitted tab list. It runs once; later calls
// return nil.
func (c *Controller) Initialize(ctx context.Context) tea.Cmd {
	if c.started {
		return nil
	}
	c.started = true
	return c.fetch(ctx)
}

// Retry re-issues a failed permission fetch. It returns nil unless the
// previous fetch failed.
func (c *Controller) Retry(ctx context.Context) tea.Cmd {
	if !c.started || c.loaded || c.err == nil {
		return nil
	}
	c.err = nil
	c.renderBar()
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) tea.Cmd {
	if !c.cfg.Permissioned {
		ids := make([]string, 0, len(c.cfg.Views))
		for _, v := range c.cfg.Views {
			ids = append(ids, v.ID)
		}
		return func() tea.Msg { return TabsLoadedMsg{IDs: ids} }
	}
	lister := c.lister
	return func() tea.Msg {
		ids, err := lister.AllowedTabs(ctx)
		return TabsLoadedMsg{IDs: ids, Err: err}
	}
}

// Apply builds the tab set from the permission list and activates the
// default tab. The tab set is immutable once built; later messages are
// ignored.
func (c *Controller) Apply(msg TabsLoadedMsg) tea.Cmd {
	if c.loaded {
		return nil
	}
	if msg.Err != nil {
		c.err = msg.Err
		c.log.Warn("permission fetch failed", slog.String("error", msg.Err.Error()))
		c.renderBar()
		return nil
	}

	permitted := make(map[string]bool, len(msg.IDs))
	for _, id := range msg.IDs {
		if _, ok := c.views[id]; !ok {
			c.log.Debug("ignoring permitted tab without a view", slog.String("tab", id))
			continue
		}
		permitted[id] = true
	}

	for _, v := range c.cfg.Views {
		c.tabs = append(c.tabs, Tab{ID: v.ID, Permitted: permitted[v.ID], View: v.ID})
		if !permitted[v.ID] {
			continue
		}
		n := len(c.order) + 1
		t := &Trigger{id: v.ID, label: v.Label, ctl: c}
		if n <= 9 {
			t.Key = key.NewBinding(
				key.WithKeys(fmt.Sprintf("alt+%d", n)),
				key.WithHelp(fmt.Sprintf("alt+%d", n), v.Label),
			)
		}
		c.triggers[v.ID] = t
		c.order = append(c.order, t)
	}
	c.loaded = true
	c.log.Info("tabs loaded", slog.Int("permitted", len(c.order)))

	if t, ok := c.triggers[c.cfg.DefaultTab]; ok {
		return t.Activate()
	}
	if len(c.order) > 0 {
		return c.order[0].Activate()
	}
	c.renderBar()
	return nil
}

// Trigger returns the trigger of a permitted tab.
func (c *Controller) Trigger(id string) (*Trigger, bool) {
	t, ok := c.triggers[id]
	return t, ok
}

// Triggers returns the bound triggers in display order.
func (c *Controller) Triggers() []*Trigger {
	out := make([]*Trigger, len(c.order))
	copy(out, c.order)
	return out
}

// ActivateByID activates a tab by id through its trigger.
func (c *Controller) ActivateByID(id string) (tea.Cmd, error) {
	t, ok := c.triggers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTabNotPermitted, id)
	}
	return t.Activate(), nil
}

// Cycle activates the permitted tab delta positions away from the active
// one, wrapping around.
func (c *Controller) Cycle(delta int) tea.Cmd {
	if len(c.order) == 0 {
		return nil
	}
	idx := 0
	for i, t := range c.order {
		if t.id == c.active {
			idx = i
			break
		}
	}
	n := len(c.order)
	next := ((idx+delta)%n + n) % n
	return c.order[next].Activate()
}

// HandleKey activates the tab whose trigger key matches msg.
func (c *Controller) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	for _, t := range c.order {
		if key.Matches(msg, t.Key) {
			return t.Activate(), true
		}
	}
	return nil, false
}

// Active returns the active tab id, empty before initialization.
func (c *Controller) Active() string { return c.active }

// Loaded reports whether the permission list has been applied.
func (c *Controller) Loaded() bool { return c.loaded }

// Tabs returns the tab records.
func (c *Controller) Tabs() []Tab {
	out := make([]Tab, len(c.tabs))
	copy(out, c.tabs)
	return out
}

// Err returns the permission fetch error, if the fetch failed.
func (c *Controller) Err() error { return c.err }

// activate hides every view, shows the bound one and returns its refresh.
func (c *Controller) activate(id string) tea.Cmd {
	for _, v := range c.views {
		v.Region.Hide()
	}
	view := c.views[id]
	view.Region.Show()
	c.active = id
	c.renderBar()
	c.log.Debug("tab activated", slog.String("tab", id))

	if view.Refresh == nil {
		return nil
	}
	return view.Refresh()
}

// =============================================================================
// RENDERING
// =============================================================================

func (c *Controller) renderBar() {
	if c.cfg.Bar == nil {
		return
	}
	theme := c.cfg.Theme
	c.cfg.Bar.Show()

	switch {
	case c.err != nil:
		c.cfg.Bar.Set(theme.ErrorStyle.Render(
			styles.StatusIndicators.Error+" could not load tabs: "+gateway.UserMessage(c.err)) +
			theme.ShortcutDesc.Render("  ctrl+r retry"))
		return
	case !c.loaded:
		c.cfg.Bar.Set(theme.ShortcutDesc.Render("loading permissions..."))
		return
	case len(c.order) == 0:
		c.cfg.Bar.Set(theme.WarningStyle.Render(styles.StatusIndicators.Warning + " no views permitted"))
		return
	}

	parts := make([]string, 0, len(c.order))
	for i, t := range c.order {
		label := t.label
		if i < 9 {
			label = fmt.Sprintf("%d %s", i+1, label)
		}
		if t.id == c.active {
			parts = append(parts, theme.TabActive.Render(label))
		} else {
			parts = append(parts, theme.TabInactive.Render(label))
		}
	}
	c.cfg.Bar.Set(theme.TabBar.Render(strings.Join(parts, " ")))
}
