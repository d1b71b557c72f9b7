// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
)

// Switcher asks the server to load a model on a node.
type Switcher interface {
	SwitchModel(ctx context.Context, model, node string) error
}

// ModelSwitchedMsg is the result of a switch request.
type ModelSwitchedMsg struct {
	NodeID string
	Model  string
	Err    error
}

// NodeCard is the interactive card of one serving node.
type NodeCard struct {
	ctx      context.Context
	card     projector.NodeCard
	switcher Switcher
	engine   *render.Engine

	cursor     int
	pending    string
	status     string
	err        error
	showWorker bool
}

// NewNodeCard creates a card with the cursor on the loaded model.
func NewNodeCard(ctx context.Context, card projector.NodeCard, switcher Switcher, engine *render.Engine) *NodeCard {
	cursor := card.SelectedIndex()
	if cursor < 0 {
		cursor = 0
	}
	return &NodeCard{
		ctx:      ctx,
		card:     card,
		switcher: switcher,
		engine:   engine,
		cursor:   cursor,
	}
}

// NodeID returns the node this card shows.
func (n *NodeCard) NodeID() string { return n.card.NodeID }

// Card returns the underlying view-model.
func (n *NodeCard) Card() projector.NodeCard { return n.card }

// Cursor returns the index of the highlighted model.
func (n *NodeCard) Cursor() int { return n.cursor }

// Pending reports whether a switch request is in flight.
func (n *NodeCard) Pending() bool { return n.pending != "" }

// Err returns the last switch error.
func (n *NodeCard) Err() error { return n.err }

// Status returns the confirmation text of the last successful switch.
func (n *NodeCard) Status() string { return n.status }

// MoveCursor moves the highlight by delta, clamped to the model list.
func (n *NodeCard) MoveCursor(delta int) {
	n.cursor += delta
	if n.cursor < 0 {
		n.cursor = 0
	}
	if last := len(n.card.Models) - 1; n.cursor > last {
		n.cursor = last
	}
}

// Choose requests a switch to the highlighted model. It returns nil when
// the highlighted model is already loaded, a request is in flight, or the
// node itself came back malformed. After a failure, choosing the same
// model again retries.
func (n *NodeCard) Choose() tea.Cmd {
	if n.card.Err != nil || n.pending != "" || len(n.card.Models) == 0 {
		return nil
	}
	option := n.card.Models[n.cursor].Option
	if option == n.card.SelectedModel() {
		return nil
	}

	n.pending = option
	n.err = nil
	n.status = ""

	ctx, switcher, node := n.ctx, n.switcher, n.card.NodeID
	return func() tea.Msg {
		err := switcher.SwitchModel(ctx, option, node)
		return ModelSwitchedMsg{NodeID: node, Model: option, Err: err}
	}
}

// Apply records the result of a switch request. The loaded-model marker is
// left alone; it changes only when the view is refreshed from the server.
func (n *NodeCard) Apply(msg ModelSwitchedMsg) {
	n.pending = ""
	if msg.Err != nil {
		n.err = msg.Err
		n.status = ""
		return
	}
	n.err = nil
	n.status = fmt.Sprintf("switch to %s requested; refresh to confirm", msg.Model)
}

// View renders the card through the model-card template.
func (n *NodeCard) View(focused bool) (string, error) {
	lines := make([]render.ModelLine, len(n.card.Models))
	for i, m := range n.card.Models {
		lines[i] = render.ModelLine{
			Option:   m.Option,
			Selected: m.Selected,
			Cursor:   focused && i == n.cursor && n.card.Err == nil,
		}
	}

	view := render.ModelCardView{
		NodeID:        n.card.NodeID,
		Models:        lines,
		SystemStats:   n.card.SystemStats,
		InferStats:    n.card.InferStats,
		WorkerStarted: n.card.WorkerStarted,
		ShowWorker:    n.showWorker,
		Status:        n.status,
	}
	if n.pending != "" {
		view.Pending = fmt.Sprintf("switching to %s...", n.pending)
	}
	switch {
	case n.card.Err != nil:
		view.Error = "node unavailable: " + gateway.UserMessage(n.card.Err)
	case n.err != nil:
		view.Error = gateway.UserMessage(n.err) + " (enter to retry)"
	}

	out, err := n.engine.Render(render.ModelCard, view)
	if err != nil {
		return "", err
	}
	theme := n.engine.Theme()
	if focused {
		return theme.CardFocused.Render(out), nil
	}
	return theme.Card.Render(out), nil
}
