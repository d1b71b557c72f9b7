// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// NodeGateway is the part of the gateway the Nodes view writes through.
type NodeGateway interface {
	Switcher
	StartWorkers(ctx context.Context) error
}

// WorkersStartedMsg is the result of a start-workers request.
type WorkersStartedMsg struct {
	Err error
}

// NodesOptions configures a NodesView.
type NodesOptions struct {
	// WorkerControl enables the start-workers action and worker badges.
	WorkerControl bool
	Keys          KeyMap
}

// NodesView holds the cards of one population of the Nodes view. A
// refresh builds a new NodesView; nothing is patched in place.
type NodesView struct {
	ctx    context.Context
	gw     NodeGateway
	engine *render.Engine
	opts   NodesOptions

	cards []*NodeCard
	focus int

	workersPending bool
	workersErr     error
	workersStatus  string
}

// NewNodesView builds one card per node, in server order.
func NewNodesView(ctx context.Context, cards []projector.NodeCard, gw NodeGateway, engine *render.Engine, opts NodesOptions) *NodesView {
	v := &NodesView{ctx: ctx, gw: gw, engine: engine, opts: opts}
	for _, c := range cards {
		card := NewNodeCard(ctx, c, gw, engine)
		card.showWorker = opts.WorkerControl
		v.cards = append(v.cards, card)
	}
	return v
}

// Cards returns the cards in server order.
func (v *NodesView) Cards() []*NodeCard { return v.cards }

// Focused returns the focused card, or nil for an empty view.
func (v *NodesView) Focused() *NodeCard {
	if len(v.cards) == 0 {
		return nil
	}
	return v.cards[v.focus]
}

// Card returns the card of nodeID.
func (v *NodesView) Card(nodeID string) (*NodeCard, bool) {
	for _, c := range v.cards {
		if c.NodeID() == nodeID {
			return c, true
		}
	}
	return nil, false
}

// Update handles navigation keys and write-call results.
func (v *NodesView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case ModelSwitchedMsg:
		if card, ok := v.Card(msg.NodeID); ok {
			card.Apply(msg)
		}
		return nil

	case WorkersStartedMsg:
		v.workersPending = false
		if msg.Err != nil {
			v.workersErr = msg.Err
			v.workersStatus = ""
		} else {
			v.workersErr = nil
			v.workersStatus = "workers start requested; refresh to confirm"
		}
		return nil

	case tea.KeyMsg:
		keys := v.opts.Keys
		card := v.Focused()
		switch {
		case key.Matches(msg, keys.StartWorkers):
			return v.StartWorkers()
		case card == nil:
			return nil
		case key.Matches(msg, keys.Up):
			card.MoveCursor(-1)
		case key.Matches(msg, keys.Down):
			card.MoveCursor(1)
		case key.Matches(msg, keys.NextCard):
			v.focus = (v.focus + 1) % len(v.cards)
		case key.Matches(msg, keys.PrevCard):
			v.focus = (v.focus - 1 + len(v.cards)) % len(v.cards)
		case key.Matches(msg, keys.Choose):
			return card.Choose()
		}
	}
	return nil
}

// StartWorkers asks the server to start its inference workers. It is a
// no-op without the worker control capability or while a request is in
// flight.
func (v *NodesView) StartWorkers() tea.Cmd {
	if !v.opts.WorkerControl || v.workersPending {
		return nil
	}
	v.workersPending = true
	v.workersErr = nil
	v.workersStatus = ""

	ctx, gw := v.ctx, v.gw
	return func() tea.Msg {
		return WorkersStartedMsg{Err: gw.StartWorkers(ctx)}
	}
}

// View renders every card, focused card highlighted.
func (v *NodesView) View() (string, error) {
	theme := v.engine.Theme()
	if len(v.cards) == 0 {
		return theme.MessageMeta.Render("No nodes connected."), nil
	}

	parts := make([]string, 0, len(v.cards)+1)
	if line := v.workersLine(theme); line != "" {
		parts = append(parts, line)
	}
	for i, c := range v.cards {
		out, err := c.View(i == v.focus)
		if err != nil {
			return "", err
		}
		parts = append(parts, out)
	}
	return strings.Join(parts, "\n"), nil
}

func (v *NodesView) workersLine(theme *styles.Theme) string {
	if !v.opts.WorkerControl {
		return ""
	}
	switch {
	case v.workersPending:
		return theme.WarningStyle.Render("starting workers...")
	case v.workersErr != nil:
		return theme.ErrorStyle.Render(styles.StatusIndicators.Error+" "+gateway.UserMessage(v.workersErr)) +
			theme.ShortcutDesc.Render("  w retry")
	case v.workersStatus != "":
		return theme.SuccessStyle.Render(v.workersStatus)
	default:
		return theme.ShortcutDesc.Render("w start workers")
	}
}
