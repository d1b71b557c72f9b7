// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - History command implementation for herder.
//
// Command: history
// Short:   Show past inferences with their ratings and feedback
//
// Examples:
//
//	herder history                Show the full history
//	herder history --limit 10     Show the first 10 rows
//	herder history --json         History in JSON format
//
// Rows are shown in the order the server returns them. The text form uses
// the same feedback-table template as the History tab.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/render"
)

// HistoryGateway fetches the history payload.
type HistoryGateway interface {
	History(ctx context.Context) ([]byte, error)
}

// FetchHistory fetches and projects the history, keeping at most limit
// rows when limit is positive.
func FetchHistory(ctx context.Context, gw HistoryGateway, limit int) ([]projector.HistoryRow, error) {
	payload, err := gw.History(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := projector.History(payload)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// HandleHistory runs the history command.
func HandleHistory(ctx context.Context, gw HistoryGateway, engine *render.Engine, args Args, w io.Writer) error {
	rows, err := FetchHistory(ctx, gw, args.Limit)
	if err != nil {
		return err
	}

	if args.JSON {
		entries := make([]HistoryEntry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, HistoryEntry{
				ID:           r.ID,
				Node:         r.Node,
				PromptKey:    r.PromptKey,
				RawInput:     r.RawInput,
				InferInput:   r.InferInput,
				Response:     r.Response,
				InputTokens:  r.InputTokens,
				OutputTokens: r.OutputTokens,
				Elapsed:      r.Elapsed,
				Score:        r.Score,
				Feedback:     r.Feedback,
				CreatedAt:    r.CreatedAt,
			})
		}
		return NewJSONResponse("history", entries).Print(w)
	}

	out, err := engine.Render(render.FeedbackTable, render.FeedbackTableView{
		Rows:  rows,
		Width: max(20, GetTerminalWidth()-18),
	})
	if err != nil {
		return NewCommandError("history", "render", "template failed", err)
	}
	fmt.Fprintln(w, out)
	return nil
}
