// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feedback

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/surface"
)

// ErrDuplicateWidget is returned when a widget already exists for an id.
var ErrDuplicateWidget = errors.New("feedback widget already exists")

// Registry owns every live widget, keyed by inference id.
type Registry struct {
	ctx     context.Context
	gw      Gateway
	surface *surface.Surface
	engine  *render.Engine
	log     *slog.Logger
	widgets map[string]*Widget
}

// NewRegistry creates an empty registry.
func NewRegistry(ctx context.Context, gw Gateway, s *surface.Surface, engine *render.Engine) *Registry {
	return &Registry{
		ctx:     ctx,
		gw:      gw,
		surface: s,
		engine:  engine,
		log:     logging.For("feedback"),
		widgets: make(map[string]*Widget),
	}
}

// Create makes the widget for id.
func (r *Registry) Create(id string) (*Widget, error) {
	if _, ok := r.widgets[id]; ok {
		return nil, ErrDuplicateWidget
	}
	w := newWidget(r.ctx, id, r.gw, r.surface, r.engine)
	r.widgets[id] = w
	return w, nil
}

// Get returns the widget for id.
func (r *Registry) Get(id string) (*Widget, bool) {
	w, ok := r.widgets[id]
	return w, ok
}

// Remove destroys and forgets the widget for id.
func (r *Registry) Remove(id string) {
	if w, ok := r.widgets[id]; ok {
		w.Destroy()
		delete(r.widgets, id)
	}
}

// Len returns the number of live widgets.
func (r *Registry) Len() int { return len(r.widgets) }

// ActiveModal returns the widget whose modal is on screen.
func (r *Registry) ActiveModal() (*Widget, bool) {
	m, ok := r.surface.ActiveModal()
	if !ok {
		return nil, false
	}
	w, ok := r.widgets[strings.TrimPrefix(m.ID, "feedback-")]
	return w, ok
}

// Update routes write-call results to their widget. Results for widgets
// that were evicted in the meantime are dropped.
func (r *Registry) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case ScoredMsg:
		if w, ok := r.widgets[msg.InferenceID]; ok {
			w.ApplyScore(msg)
		} else {
			r.log.Debug("score result for evicted widget", slog.String("inference_id", msg.InferenceID))
		}
		return nil, true
	case FeedbackSentMsg:
		if w, ok := r.widgets[msg.InferenceID]; ok {
			w.ApplyFeedback(msg)
		} else {
			r.log.Debug("feedback result for evicted widget", slog.String("inference_id", msg.InferenceID))
		}
		return nil, true
	}
	return nil, false
}
