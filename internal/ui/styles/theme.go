// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// ==========================================================================
	// TAB BAR STYLES
	// ==========================================================================

	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style
	TabKey      lipgloss.Style

	// ==========================================================================
	// NODE CARD STYLES
	// ==========================================================================

	Card         lipgloss.Style
	CardFocused  lipgloss.Style
	CardTitle    lipgloss.Style
	ModelLoaded  lipgloss.Style
	ModelCursor  lipgloss.Style
	ModelOption  lipgloss.Style
	StatsLabel   lipgloss.Style
	WorkerActive lipgloss.Style
	WorkerIdle   lipgloss.Style

	// ==========================================================================
	// CONVERSATION STYLES
	// ==========================================================================

	UserMessage      lipgloss.Style
	AssistantMessage lipgloss.Style
	ErrorMessage     lipgloss.Style
	MessageMeta      lipgloss.Style
	StarOn           lipgloss.Style
	StarOff          lipgloss.Style

	// ==========================================================================
	// FORM STYLES
	// ==========================================================================

	FormLabel   lipgloss.Style
	FormFocused lipgloss.Style
	Disallowed  lipgloss.Style

	// ==========================================================================
	// MODAL STYLES
	// ==========================================================================

	ModalBox   lipgloss.Style
	ModalTitle lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	Spinner      lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	TableHeader  lipgloss.Style
}

// NewTheme creates a new theme with all styles configured.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// NewThemeNamed returns the theme for a config theme name. "plain" drops
// all colors (for logs, pipes and NO_COLOR terminals); anything else is the
// detected default.
func NewThemeNamed(name string) *Theme {
	if strings.EqualFold(name, "plain") {
		t := &Theme{ColorProfile: termenv.Ascii}
		t.initPlain()
		return t
	}
	return NewTheme()
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Tab bar
	t.TabBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.TabActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)

	t.TabInactive = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)

	t.TabKey = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Node cards
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)

	t.CardFocused = t.Card.
		BorderForeground(Purple)

	t.CardTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.ModelLoaded = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ModelCursor = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ModelOption = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.StatsLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.WorkerActive = lipgloss.NewStyle().
		Foreground(Emerald)

	t.WorkerIdle = lipgloss.NewStyle().
		Foreground(Amber)

	// Conversation
	t.UserMessage = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(UserMessageBorder).
		PaddingLeft(1)

	t.AssistantMessage = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(AssistantMessageBorder).
		PaddingLeft(1)

	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(ErrorMessageFg).
		Background(ErrorMessageBg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(1)

	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.StarOn = lipgloss.NewStyle().
		Foreground(Amber)

	t.StarOff = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Forms
	t.FormLabel = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.FormFocused = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.Disallowed = lipgloss.NewStyle().
		Foreground(TextMuted).
		Strikethrough(true)

	// Modal
	t.ModalBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)

	t.ModalTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	// Status
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.SuccessStyle = lipgloss.NewStyle().
		Foreground(Emerald).
		Bold(true)

	t.ErrorStyle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.WarningStyle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
}

// initPlain sets every style to an unstyled default, keeping borders so
// the layout is unchanged.
func (t *Theme) initPlain() {
	plain := lipgloss.NewStyle()
	for _, s := range []*lipgloss.Style{
		&t.TabBar, &t.TabInactive, &t.TabKey, &t.CardTitle, &t.ModelLoaded,
		&t.ModelCursor, &t.ModelOption, &t.StatsLabel, &t.WorkerActive,
		&t.WorkerIdle, &t.MessageMeta, &t.StarOn, &t.StarOff, &t.FormLabel,
		&t.FormFocused, &t.Disallowed, &t.ModalTitle, &t.StatusBar, &t.Spinner,
		&t.SuccessStyle, &t.ErrorStyle, &t.WarningStyle, &t.ShortcutKey,
		&t.ShortcutDesc, &t.TableHeader,
	} {
		*s = plain
	}
	t.TabActive = plain.Reverse(true).Padding(0, 1)
	t.Card = plain.BorderStyle(lipgloss.NormalBorder()).Padding(0, 1)
	t.CardFocused = plain.BorderStyle(lipgloss.ThickBorder()).Padding(0, 1)
	t.UserMessage = plain.BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).PaddingLeft(1)
	t.AssistantMessage = t.UserMessage
	t.ErrorMessage = t.UserMessage
	t.ModalBox = plain.BorderStyle(lipgloss.NormalBorder()).Padding(1, 2)
}

// Stars renders a rating as filled and unfilled star glyphs.
func (t *Theme) Stars(filled, unfilled int) string {
	return t.StarOn.Render(strings.Repeat(StarFilled, filled)) +
		t.StarOff.Render(strings.Repeat(StarUnfilled, unfilled))
}

// DefaultTheme is the global theme instance.
var DefaultTheme = NewTheme()
