// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feedback

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/herder-tui/internal/gateway"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
	"github.com/jeranaias/herder-tui/internal/surface"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
	"github.com/jeranaias/herder-tui/internal/util"
)

// Gateway is the part of the gateway a widget writes through.
type Gateway interface {
	SubmitScore(ctx context.Context, inferenceID string, score int) error
	SubmitFeedback(ctx context.Context, inferenceID, feedback string) error
}

// Record is the confirmed rating state of one inference. Score 0 means
// not yet rated.
type Record struct {
	InferenceID string
	Score       int
	Feedback    string
	HasFeedback bool
}

// ScoredMsg is the result of a score submission.
type ScoredMsg struct {
	InferenceID string
	Score       int
	Err         error
}

// FeedbackSentMsg is the result of a feedback submission.
type FeedbackSentMsg struct {
	InferenceID string
	Err         error
}

// ModalID returns the modal id used for an inference's feedback form.
func ModalID(inferenceID string) string {
	return "feedback-" + inferenceID
}

// =============================================================================
// WIDGET
// =============================================================================

// Widget is the rating and feedback control of one assistant message.
type Widget struct {
	ctx     context.Context
	gw      Gateway
	surface *surface.Surface
	engine  *render.Engine

	record Record

	scoring   int // score in flight, 0 when idle
	lastScore int // last attempted score, for retry
	scoreErr  error

	draft     *textinput.Model // nil until the modal is first opened
	sending   string
	sendErr   error
	destroyed bool
}

func newWidget(ctx context.Context, id string, gw Gateway, s *surface.Surface, engine *render.Engine) *Widget {
	return &Widget{
		ctx:     ctx,
		gw:      gw,
		surface: s,
		engine:  engine,
		record:  Record{InferenceID: id},
	}
}

// ID returns the inference id.
func (w *Widget) ID() string { return w.record.InferenceID }

// Record returns the confirmed state.
func (w *Widget) Record() Record { return w.record }

// Stars returns the filled and unfilled star counts of the confirmed score.
func (w *Widget) Stars() (filled, unfilled int) {
	return projector.Stars(w.record.Score)
}

// ScorePending reports whether a score call is in flight.
func (w *Widget) ScorePending() bool { return w.scoring != 0 }

// ScoreErr returns the last score failure.
func (w *Widget) ScoreErr() error { return w.scoreErr }

// SelectScore submits rating i. Out of range ratings, and clicks while a
// score call is in flight, are ignored.
func (w *Widget) SelectScore(i int) tea.Cmd {
	if i < 1 || i > projector.MaxScore || w.scoring != 0 || w.destroyed {
		return nil
	}
	w.scoring = i
	w.lastScore = i
	w.scoreErr = nil

	ctx, gw, id := w.ctx, w.gw, w.record.InferenceID
	return func() tea.Msg {
		return ScoredMsg{InferenceID: id, Score: i, Err: gw.SubmitScore(ctx, id, i)}
	}
}

// RetryScore resubmits the last failed rating.
func (w *Widget) RetryScore() tea.Cmd {
	if w.scoreErr == nil {
		return nil
	}
	return w.SelectScore(w.lastScore)
}

// ApplyScore records a score result. Only a confirmed score changes the
// stars.
func (w *Widget) ApplyScore(msg ScoredMsg) {
	w.scoring = 0
	if msg.Err != nil {
		w.scoreErr = msg.Err
		return
	}
	w.scoreErr = nil
	w.record.Score = msg.Score
}

// =============================================================================
// FEEDBACK MODAL
// =============================================================================

// OpenFeedback shows the feedback modal, creating it on first use. A draft
// typed before the modal was hidden is kept.
func (w *Widget) OpenFeedback() tea.Cmd {
	if w.destroyed {
		return nil
	}
	if w.draft == nil {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.Placeholder = "What was good or bad about this response?"
		ti.CharLimit = 4096
		ti.SetValue(w.record.Feedback)
		w.draft = &ti
	}
	modal := w.surface.AddModal(ModalID(w.ID()))
	modal.Title = "Feedback"
	w.surface.ShowModal(modal.ID)
	w.Render()
	return w.draft.Focus()
}

// ModalOpen reports whether this widget's modal is on screen.
func (w *Widget) ModalOpen() bool {
	m, ok := w.surface.Modal(ModalID(w.ID()))
	return ok && m.Visible()
}

// HideFeedback hides the modal without discarding the draft.
func (w *Widget) HideFeedback() {
	w.surface.HideModal(ModalID(w.ID()))
	if w.draft != nil {
		w.draft.Blur()
	}
}

// SetDraft replaces the feedback draft, opening nothing.
func (w *Widget) SetDraft(text string) {
	if w.draft != nil {
		w.draft.SetValue(text)
		w.Render()
	}
}

// Draft returns the current feedback draft.
func (w *Widget) Draft() string {
	if w.draft == nil {
		return ""
	}
	return w.draft.Value()
}

// SendErr returns the last feedback failure.
func (w *Widget) SendErr() error { return w.sendErr }

// SubmitFeedback sends the draft. It is ignored while a submission is in
// flight or when the modal was never opened.
func (w *Widget) SubmitFeedback() tea.Cmd {
	if w.draft == nil || w.sending != "" || w.destroyed {
		return nil
	}
	text := util.NormalizeInput(strings.TrimSpace(w.draft.Value()))
	if text == "" {
		return nil
	}
	w.sending = text
	w.sendErr = nil
	w.Render()

	ctx, gw, id := w.ctx, w.gw, w.record.InferenceID
	return func() tea.Msg {
		return FeedbackSentMsg{InferenceID: id, Err: gw.SubmitFeedback(ctx, id, text)}
	}
}

// ApplyFeedback records a feedback result. Success removes the modal from
// the surface; failure keeps the modal and its text and shows the error,
// in the modal or, when it was hidden meanwhile, on the rating row.
func (w *Widget) ApplyFeedback(msg FeedbackSentMsg) {
	text := w.sending
	w.sending = ""
	if msg.Err != nil {
		w.sendErr = msg.Err
		w.Render()
		return
	}
	w.sendErr = nil
	w.record.Feedback = text
	w.record.HasFeedback = true
	w.surface.RemoveModal(ModalID(w.ID()))
	w.draft = nil
}

// UpdateModal handles keys while the modal has focus: enter sends, esc
// hides, everything else edits the draft.
func (w *Widget) UpdateModal(msg tea.Msg) tea.Cmd {
	if w.draft == nil {
		return nil
	}
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.Type {
		case tea.KeyEnter:
			return w.SubmitFeedback()
		case tea.KeyEsc:
			w.HideFeedback()
			return nil
		}
	}
	var cmd tea.Cmd
	*w.draft, cmd = w.draft.Update(msg)
	w.Render()
	return cmd
}

// Destroy removes the widget's modal. A destroyed widget ignores input.
func (w *Widget) Destroy() {
	w.destroyed = true
	w.surface.RemoveModal(ModalID(w.ID()))
	w.draft = nil
}

// =============================================================================
// RENDERING
// =============================================================================

// Render refreshes the modal body, if the modal exists.
func (w *Widget) Render() {
	modal, ok := w.surface.Modal(ModalID(w.ID()))
	if !ok || w.draft == nil {
		return
	}
	view := render.FeedbackFormView{
		InferenceID: w.ID(),
		Input:       w.draft.View(),
		Pending:     w.sending != "",
	}
	modal.Error = ""
	if w.sendErr != nil {
		view.Error = gateway.UserMessage(w.sendErr) + " (enter to retry)"
		modal.Error = view.Error
	}
	body, err := w.engine.Render(render.FeedbackForm, view)
	if err != nil {
		body = err.Error()
	}
	modal.Body = body
}

// View renders the inline rating row shown under the assistant message.
func (w *Widget) View(theme *styles.Theme) string {
	var b strings.Builder
	b.WriteString(theme.Stars(w.Stars()))

	switch {
	case w.scoring != 0:
		b.WriteString(theme.WarningStyle.Render(fmt.Sprintf("  rating %d...", w.scoring)))
	case w.scoreErr != nil:
		b.WriteString(theme.ErrorStyle.Render("  " + styles.StatusIndicators.Error + " " + gateway.UserMessage(w.scoreErr)))
		b.WriteString(theme.ShortcutDesc.Render("  ctrl+r retry"))
	}

	if w.record.HasFeedback {
		b.WriteString(theme.MessageMeta.Render("  feedback: " + util.TruncateWidth(w.record.Feedback, 40)))
	}

	// A hidden modal cannot show the outcome of a send, so the row does.
	if !w.ModalOpen() {
		switch {
		case w.sending != "":
			b.WriteString(theme.WarningStyle.Render("  sending feedback..."))
		case w.sendErr != nil:
			b.WriteString(theme.ErrorStyle.Render("  " + styles.StatusIndicators.Error + " feedback failed: " + gateway.UserMessage(w.sendErr)))
			b.WriteString(theme.ShortcutDesc.Render("  f to retry"))
		}
	}
	return b.String()
}
