// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	lru "github.com/hashicorp/golang-lru/v2"
)

// markdownCacheSize bounds the number of rendered messages kept.
const markdownCacheSize = 256

// Markdown renders markdown for the terminal, caching results by source.
// The conversation log re-renders every entry on each frame, so the cache
// keeps glamour off the hot path.
type Markdown struct {
	mu       sync.Mutex
	renderer *glamour.TermRenderer
	cache    *lru.Cache[string, string]
}

// NewMarkdown creates a renderer wrapping at width. Plain output uses the
// notty style.
func NewMarkdown(width int, plain bool) (*Markdown, error) {
	style := glamour.WithAutoStyle()
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[string, string](markdownCacheSize)
	if err != nil {
		return nil, err
	}
	return &Markdown{renderer: renderer, cache: cache}, nil
}

// Render returns the rendered text, or the source if rendering fails.
func (m *Markdown) Render(src string) string {
	if out, ok := m.cache.Get(src); ok {
		return out
	}

	m.mu.Lock()
	out, err := m.renderer.Render(src)
	m.mu.Unlock()
	if err != nil {
		return src
	}
	out = strings.Trim(out, "\n")
	m.cache.Add(src, out)
	return out
}

// Len returns the number of cached renders.
func (m *Markdown) Len() int {
	return m.cache.Len()
}
