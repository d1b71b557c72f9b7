// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"

	"github.com/jeranaias/herder-tui/internal/logging"
	"github.com/jeranaias/herder-tui/internal/projector"
	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// ErrUnknownTemplate is returned by Render for a name that was never loaded.
var ErrUnknownTemplate = errors.New("unknown template")

// =============================================================================
// ENGINE
// =============================================================================

// Options configures an Engine.
type Options struct {
	// Theme supplies the styles exposed to templates. Defaults to the
	// detected theme.
	Theme *styles.Theme

	// TemplateDir holds optional <name>.tmpl overrides.
	TemplateDir string

	// Markdown enables glamour rendering of assistant messages.
	Markdown bool

	// Width is the word wrap width for markdown, 0 for 80.
	Width int

	Logger *slog.Logger
}

// Engine renders named templates from view-models. Rendering has no side
// effects; Reload swaps the template set atomically.
type Engine struct {
	mu   sync.RWMutex
	tmpl *template.Template

	opts     Options
	theme    *styles.Theme
	plain    bool
	markdown *Markdown
	log      *slog.Logger
}

// New creates an engine with the built-in templates and any overrides
// found in opts.TemplateDir.
func New(opts Options) (*Engine, error) {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.For("render")
	}

	e := &Engine{
		opts:  opts,
		theme: opts.Theme,
		plain: opts.Theme.ColorProfile == termenv.Ascii,
		log:   logger,
	}
	if opts.Markdown {
		md, err := NewMarkdown(opts.Width, e.plain)
		if err != nil {
			logger.Warn("markdown renderer unavailable", slog.String("error", err.Error()))
		} else {
			e.markdown = md
		}
	}
	if err := e.Reload(); err != nil {
		return nil, err
	}
	return e, nil
}

// Render executes the named template against data.
func (e *Engine) Render(name string, data any) (string, error) {
	e.mu.RLock()
	t := e.tmpl.Lookup(name)
	e.mu.RUnlock()
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Markdown renders an assistant message. Without a markdown renderer the
// text is returned unchanged.
func (e *Engine) Markdown(text string) string {
	if e.markdown == nil {
		return text
	}
	return e.markdown.Render(text)
}

// Theme returns the theme templates are styled with.
func (e *Engine) Theme() *styles.Theme {
	return e.theme
}

// TemplateDir returns the override directory, if any.
func (e *Engine) TemplateDir() string {
	return e.opts.TemplateDir
}

// Reload parses the built-in templates and then the overrides. On error
// the previous template set stays active.
func (e *Engine) Reload() error {
	root := template.New("herder").Funcs(e.funcs())

	for _, name := range Names {
		src, err := fs.ReadFile(builtin, "templates/"+name+".tmpl")
		if err != nil {
			return fmt.Errorf("read built-in template %s: %w", name, err)
		}
		if _, err := root.New(name).Parse(string(src)); err != nil {
			return fmt.Errorf("parse built-in template %s: %w", name, err)
		}
	}

	overridden := 0
	if dir := e.opts.TemplateDir; dir != "" {
		for _, name := range Names {
			src, err := os.ReadFile(filepath.Join(dir, name+".tmpl"))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return fmt.Errorf("read template override %s: %w", name, err)
			}
			if _, err := root.New(name).Parse(string(src)); err != nil {
				return fmt.Errorf("parse template override %s: %w", name, err)
			}
			overridden++
		}
	}

	e.mu.Lock()
	e.tmpl = root
	e.mu.Unlock()

	e.log.Debug("templates loaded", slog.Int("overrides", overridden))
	return nil
}

// =============================================================================
// TEMPLATE FUNCTIONS
// =============================================================================

func (e *Engine) funcs() template.FuncMap {
	byName := map[string]lipgloss.Style{
		"title":       e.theme.CardTitle,
		"loaded":      e.theme.ModelLoaded,
		"cursor":      e.theme.ModelCursor,
		"option":      e.theme.ModelOption,
		"label":       e.theme.FormLabel,
		"focused":     e.theme.FormFocused,
		"disallowed":  e.theme.Disallowed,
		"muted":       e.theme.MessageMeta,
		"header":      e.theme.TableHeader,
		"modal-title": e.theme.ModalTitle,
		"success":     e.theme.SuccessStyle,
		"warning":     e.theme.WarningStyle,
		"error":       e.theme.ErrorStyle,
	}

	return template.FuncMap{
		"style": func(name, text string) (string, error) {
			s, ok := byName[name]
			if !ok {
				return "", fmt.Errorf("unknown style %q", name)
			}
			return s.Render(text), nil
		},
		"stars": func(score int) string {
			return e.theme.Stars(projector.Stars(score))
		},
		"json": func(stats projector.Stats) string {
			return HighlightJSON(stats.JSON(), e.plain)
		},
		"markdown": e.Markdown,
		"truncate": func(width int, text string) string {
			if width <= 0 {
				return text
			}
			return runewidth.Truncate(text, width, "…")
		},
		"pad": func(width int, text string) string {
			return runewidth.FillRight(text, width)
		},
		"oneline": func(text string) string {
			return strings.Join(strings.Fields(text), " ")
		},
		"join": strings.Join,
		"inc": func(i int) int { return i + 1 },
	}
}
