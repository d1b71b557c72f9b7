// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// statsHighlighter colors the JSON stat blocks on node cards.
type statsHighlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

var jsonHighlighter = sync.OnceValue(func() *statsHighlighter {
	h := &statsHighlighter{
		lexer:     lexers.Get("json"),
		style:     chromaStyles.Get("monokai"),
		formatter: formatters.Get("terminal256"),
	}
	if h.lexer == nil {
		h.lexer = lexers.Fallback
	}
	h.lexer = chroma.Coalesce(h.lexer)
	return h
})

func (h *statsHighlighter) highlight(src string) (string, error) {
	tokens, err := h.lexer.Tokenise(nil, src)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.Grow(len(src) * 2)
	if err := h.formatter.Format(&sb, h.style, tokens); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// HighlightJSON colors a JSON document for the terminal. In plain mode, or
// when highlighting fails, the source is returned unchanged.
func HighlightJSON(src string, plain bool) string {
	if plain || src == "" {
		return src
	}
	out, err := jsonHighlighter().highlight(src)
	if err != nil {
		return src
	}
	return out
}
