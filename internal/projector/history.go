// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package projector

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

type rawHistoryRow struct {
	ID             string          `json:"id"`
	NodeKey        string          `json:"node_key"`
	PromptKey      string          `json:"prompt_key"`
	RawInput       json.RawMessage `json:"raw_input"`
	InferInput     json.RawMessage `json:"infer_input"`
	Response       json.RawMessage `json:"response"`
	InputTokens    int             `json:"input_tokens"`
	OutputTokens   int             `json:"output_tokens"`
	ElapsedSeconds *float64        `json:"elapsed_seconds"`
	Score          *int            `json:"score"`
	Feedback       *string         `json:"feedback"`
	CreatedTS      string          `json:"created_ts"`
}

// History projects history rows. Elapsed time is rounded to one decimal
// place; text fields pass through unmodified and unescaped.
func History(payload []byte) ([]HistoryRow, error) {
	var raw []rawHistoryRow
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, malformed("history", "$", "expected a list of rows", err)
	}

	rows := make([]HistoryRow, 0, len(raw))
	for i, r := range raw {
		if r.ElapsedSeconds == nil {
			return nil, malformed("history", fmt.Sprintf("[%d].elapsed_seconds", i), "missing", nil)
		}
		row := HistoryRow{
			ID:           r.ID,
			Node:         r.NodeKey,
			PromptKey:    r.PromptKey,
			RawInput:     scalarText(r.RawInput),
			InferInput:   scalarText(r.InferInput),
			Response:     scalarText(r.Response),
			InputTokens:  r.InputTokens,
			OutputTokens: r.OutputTokens,
			Elapsed:      FormatElapsed(*r.ElapsedSeconds),
			CreatedAt:    r.CreatedTS,
		}
		if r.Score != nil {
			row.Score = *r.Score
		}
		if r.Feedback != nil {
			row.Feedback = *r.Feedback
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FormatElapsed formats seconds with one decimal, rounding the exact
// binary value: 1.45 is stored just below the tie and gives "1.4". An exact
// tie such as 1.25 rounds up to "1.3", matching the browser client.
func FormatElapsed(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return strconv.FormatFloat(seconds, 'f', 1, 64)
	}
	tenths := new(big.Float).SetPrec(128).SetFloat64(seconds)
	tenths.Mul(tenths, big.NewFloat(10))
	whole, _ := tenths.Int(nil)
	frac, _ := new(big.Float).Sub(tenths, new(big.Float).SetInt(whole)).Float64()
	switch frac {
	case 0.5:
		whole.Add(whole, big.NewInt(1))
	case -0.5:
	default:
		return strconv.FormatFloat(seconds, 'f', 1, 64)
	}
	rounded := new(big.Float).SetPrec(128).SetInt(whole)
	return rounded.Quo(rounded, big.NewFloat(10)).Text('f', 1)
}
