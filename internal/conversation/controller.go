// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jeranaias/herder-tui/internal/feedback"
	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/surface"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// Defaults for Options.
const (
	DefaultMaxQueued = 4
	DefaultRetention = 200
)

// Inferer submits inference requests.
type Inferer interface {
	Infer(ctx context.Context, req gateway.InferRequest) (*gateway.InferResponse, error)
}

// Draft is the input control a submission was taken from.
type Draft interface {
	RawInput() gateway.RawInput
	Clear()
}

// InferredMsg is the result of one inference call.
type InferredMsg struct {
	SubmissionID string
	Response     *gateway.InferResponse
	Err          error
}

// State is the submission state of the controller.
type State int

const (
	Idle State = iota
	Awaiting
)

// String returns the state name.
func (s State) String() string {
	if s == Awaiting {
		return "awaiting-response"
	}
	return "idle"
}

// Options configures a Controller.
type Options struct {
	// MaxQueued bounds submissions waiting behind the one in flight.
	MaxQueued int

	// Retention bounds the number of log entries kept.
	Retention int

	// Log receives the rendered conversation log.
	Log *surface.Region

	// Busy receives the busy indicator.
	Busy *surface.Region

	Keys KeyMap
}

type submission struct {
	id    string
	req   gateway.InferRequest
	draft Draft
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the conversation log and the submission queue.
type Controller struct {
	ctx      context.Context
	gw       Inferer
	registry *feedback.Registry
	engine   *render.Engine
	opts     Options
	log      *slog.Logger

	spinner  spinner.Model
	entries  []Entry // newest first
	inflight *submission
	queue    []submission
	selected string // inference id of the selected assistant entry
}

// New creates a controller writing into opts.Log and opts.Busy.
func New(ctx context.Context, gw Inferer, registry *feedback.Registry, engine *render.Engine, opts Options) *Controller {
	if opts.MaxQueued <= 0 {
		opts.MaxQueued = DefaultMaxQueued
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if len(opts.Keys.Rate.Keys()) == 0 {
		opts.Keys = DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = engine.Theme().Spinner

	c := &Controller{
		ctx:      ctx,
		gw:       gw,
		registry: registry,
		engine:   engine,
		opts:     opts,
		log:      logging.For("conversation"),
		spinner:  sp,
	}
	c.Render()
	return c
}

// State returns Awaiting while an inference call is in flight.
func (c *Controller) State() State {
	if c.inflight != nil {
		return Awaiting
	}
	return Idle
}

// Busy reports whether the busy indicator is shown.
func (c *Controller) Busy() bool { return c.inflight != nil }

// Queued returns the number of submissions waiting to be issued.
func (c *Controller) Queued() int { return len(c.queue) }

// Entries returns the log, newest first.
func (c *Controller) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Submit sends the draft with promptKey. The operator's message is shown
// immediately. While another submission is in flight the new one is
// queued; when the queue is full the submission is refused with a notice
// and the draft is left as is. Repeating the input of the newest pending
// submission with the same prompt is ignored.
func (c *Controller) Submit(draft Draft, promptKey string, param map[string]any) tea.Cmd {
	raw := draft.RawInput()
	if emptyInput(raw) {
		return nil
	}
	req := gateway.InferRequest{RawInput: raw, PromptKey: promptKey, Param: param}
	if last := c.lastPending(); last != nil && sameRequest(last.req, req) {
		c.log.Debug("repeated submission ignored", slog.String("submission_id", last.id))
		return nil
	}
	if c.inflight != nil && len(c.queue) >= c.opts.MaxQueued {
		c.Notice(fmt.Sprintf("%d requests are already waiting; your draft was kept", len(c.queue)))
		return nil
	}

	sub := submission{
		id:    uuid.NewString(),
		req:   req,
		draft: draft,
	}
	c.prepend(Entry{
		Kind:         EntryHuman,
		SubmissionID: sub.id,
		PromptKey:    promptKey,
		Text:         formatInput(raw),
	})
	c.log.Debug("submission accepted",
		slog.String("submission_id", sub.id),
		slog.String("prompt_key", promptKey),
		slog.Int("queued", len(c.queue)))

	if c.inflight != nil {
		c.queue = append(c.queue, sub)
		c.Render()
		return nil
	}
	c.inflight = &sub
	c.Render()
	return tea.Batch(c.spinner.Tick, c.issue(sub))
}

// lastPending returns the newest submission not yet answered, or nil.
func (c *Controller) lastPending() *submission {
	if n := len(c.queue); n > 0 {
		return &c.queue[n-1]
	}
	return c.inflight
}

func (c *Controller) issue(sub submission) tea.Cmd {
	ctx, gw := c.ctx, c.gw
	return func() tea.Msg {
		resp, err := gw.Infer(ctx, sub.req)
		return InferredMsg{SubmissionID: sub.id, Response: resp, Err: err}
	}
}

// Apply completes the in-flight submission and issues the next queued one.
func (c *Controller) Apply(msg InferredMsg) tea.Cmd {
	if c.inflight == nil || c.inflight.id != msg.SubmissionID {
		c.log.Warn("inference result without matching submission",
			slog.String("submission_id", msg.SubmissionID))
		return nil
	}
	sub := *c.inflight
	c.inflight = nil

	if msg.Err != nil {
		c.log.Info("inference failed",
			slog.String("submission_id", sub.id),
			slog.String("kind", gateway.KindOf(msg.Err).String()),
			slog.String("error", msg.Err.Error()))
		c.prepend(Entry{
			Kind:         EntryError,
			SubmissionID: sub.id,
			PromptKey:    sub.req.PromptKey,
			Text:         gateway.UserMessage(msg.Err),
		})
	} else {
		c.complete(sub, msg.Response)
	}

	var next tea.Cmd
	if len(c.queue) > 0 {
		queued := c.queue[0]
		c.queue = c.queue[1:]
		c.inflight = &queued
		next = c.issue(queued)
	}
	c.Render()
	return next
}

func (c *Controller) complete(sub submission, resp *gateway.InferResponse) {
	entry := Entry{
		Kind:         EntryAssistant,
		SubmissionID: sub.id,
		PromptKey:    sub.req.PromptKey,
		Text:         resp.Text,
		Model:        resp.Model,
		InferenceID:  resp.InferenceID,
	}
	w, err := c.registry.Create(resp.InferenceID)
	if err != nil {
		c.log.Warn("duplicate inference id", slog.String("inference_id", resp.InferenceID))
	} else {
		entry.Widget = w
	}
	c.prepend(entry)
	c.selected = resp.InferenceID

	// Clear the input only if it still holds what was sent.
	if sub.draft.RawInput().Equal(sub.req.RawInput) {
		sub.draft.Clear()
	}
}

// Notice prepends an informational entry.
func (c *Controller) Notice(text string) {
	c.prepend(Entry{Kind: EntryNotice, Text: text})
	c.Render()
}

// prepend adds e to the top of the log and evicts past the retention
// limit, destroying evicted widgets.
func (c *Controller) prepend(e Entry) {
	c.entries = append([]Entry{e}, c.entries...)
	for len(c.entries) > c.opts.Retention {
		evicted := c.entries[len(c.entries)-1]
		c.entries = c.entries[:len(c.entries)-1]
		if evicted.Kind == EntryAssistant && evicted.Widget != nil {
			c.registry.Remove(evicted.InferenceID)
			if c.selected == evicted.InferenceID {
				c.selected = ""
			}
		}
	}
}

// =============================================================================
// SELECTION AND FEEDBACK KEYS
// =============================================================================

// Selected returns the widget of the selected assistant entry.
func (c *Controller) Selected() (*feedback.Widget, bool) {
	for _, e := range c.entries {
		if e.Kind == EntryAssistant && e.InferenceID == c.selected && e.Widget != nil {
			return e.Widget, true
		}
	}
	return nil, false
}

// MoveSelection moves the selection among assistant entries; positive
// delta moves toward older entries.
func (c *Controller) MoveSelection(delta int) {
	var ids []string
	current := -1
	for _, e := range c.entries {
		if e.Kind != EntryAssistant || e.Widget == nil {
			continue
		}
		if e.InferenceID == c.selected {
			current = len(ids)
		}
		ids = append(ids, e.InferenceID)
	}
	if len(ids) == 0 {
		return
	}
	next := current + delta
	if current < 0 {
		next = 0
	}
	if next < 0 {
		next = 0
	}
	if next >= len(ids) {
		next = len(ids) - 1
	}
	c.selected = ids[next]
	c.Render()
}

// HandleLogKey handles keys while the log has focus: selection, rating,
// feedback and retry.
func (c *Controller) HandleLogKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	keys := c.opts.Keys
	switch {
	case key.Matches(msg, keys.Older):
		c.MoveSelection(1)
		return nil, true
	case key.Matches(msg, keys.Newer):
		c.MoveSelection(-1)
		return nil, true
	}

	w, ok := c.Selected()
	if !ok {
		return nil, false
	}
	switch {
	case key.Matches(msg, keys.Rate):
		score := int(msg.Runes[0] - '0')
		cmd := w.SelectScore(score)
		c.Render()
		return cmd, true
	case key.Matches(msg, keys.Feedback):
		return w.OpenFeedback(), true
	case key.Matches(msg, keys.Retry):
		cmd := w.RetryScore()
		c.Render()
		return cmd, true
	}
	return nil, false
}

// Update advances the busy spinner.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if c.inflight == nil {
			return nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(tick)
		c.renderBusy()
		return cmd
	}
	return nil
}

// =============================================================================
// RENDERING
// =============================================================================

// Render redraws the log and busy regions.
func (c *Controller) Render() {
	c.renderBusy()
	if c.opts.Log == nil {
		return
	}
	theme := c.engine.Theme()
	parts := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		parts = append(parts, c.renderEntry(theme, e))
	}
	c.opts.Log.Set(strings.Join(parts, "\n\n"))
}

func (c *Controller) renderBusy() {
	if c.opts.Busy == nil {
		return
	}
	if c.inflight == nil {
		c.opts.Busy.Hide()
		c.opts.Busy.Set("")
		return
	}
	text := c.spinner.View() + " waiting for the model"
	if n := len(c.queue); n > 0 {
		text += fmt.Sprintf(" (%d queued)", n)
	}
	c.opts.Busy.Set(text)
	c.opts.Busy.Show()
}

func (c *Controller) renderEntry(theme *styles.Theme, e Entry) string {
	switch e.Kind {
	case EntryHuman:
		return theme.UserMessage.Render(theme.MessageMeta.Render("you · "+e.PromptKey) + "\n" + e.Text)
	case EntryAssistant:
		meta := "assistant"
		if e.Model != "" {
			meta += " · " + e.Model
		}
		if e.InferenceID == c.selected {
			meta = "> " + meta
		}
		body := theme.MessageMeta.Render(meta) + "\n" + c.engine.Markdown(e.Text)
		if e.Widget != nil {
			body += "\n" + e.Widget.View(theme)
		}
		return theme.AssistantMessage.Render(body)
	case EntryError:
		return theme.ErrorMessage.Render(styles.StatusIndicators.Error + " " + e.Text)
	default:
		return theme.MessageMeta.Render(e.Text)
	}
}
