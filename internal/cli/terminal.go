// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection and styling for herder CLI output.
//
// Colors are disabled when stdout is not a terminal or NO_COLOR is set;
// FORCE_COLOR overrides the detection. The palette is the one the TUI
// uses, so both surfaces look alike.

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

// Width bounds for CLI output.
const (
	DefaultTerminalWidth = 80
	MinTerminalWidth     = 40
)

// GetTerminalWidth returns the width of stdout, DefaultTerminalWidth when
// it is not a terminal.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return max(width, MinTerminalWidth)
	}
	return DefaultTerminalWidth
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// colorsWanted applies the NO_COLOR (https://no-color.org/) and
// FORCE_COLOR conventions on top of terminal detection.
func colorsWanted(getenv func(string) string, tty bool) bool {
	switch {
	case getenv("NO_COLOR") != "":
		return false
	case getenv("FORCE_COLOR") != "":
		return true
	}
	return tty
}

var colorsEnabled = sync.OnceValue(func() bool {
	return colorsWanted(os.Getenv, IsStdoutTTY())
})

// ColorsEnabled reports whether output should be colored. Decided once
// per process.
func ColorsEnabled() bool { return colorsEnabled() }

// GetColorProfile returns the termenv profile for CLI output.
func GetColorProfile() termenv.Profile {
	if ColorsEnabled() {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// =============================================================================
// STYLES
// =============================================================================

var (
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Cyan).MarginBottom(1)
	SectionStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).MarginTop(1)
	LabelStyle     = lipgloss.NewStyle().Foreground(styles.TextSecondary).Width(20)
	SuccessStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Emerald)
	ErrorStyle     = lipgloss.NewStyle().Bold(true).Foreground(styles.Rose)
	WarningStyle   = lipgloss.NewStyle().Foreground(styles.Amber)
	DimStyle       = lipgloss.NewStyle().Foreground(styles.TextMuted)
	SeparatorStyle = lipgloss.NewStyle().Foreground(styles.Overlay)
)

// RenderConditional styles text when colors are enabled and returns it
// unchanged otherwise.
func RenderConditional(style lipgloss.Style, text string) string {
	if ColorsEnabled() {
		return style.Render(text)
	}
	return text
}

// RenderLabel pads label to the label column. Padding applies with or
// without color.
func RenderLabel(label string) string {
	return LabelStyle.Render(label)
}

// RenderSeparator renders a rule at most 80 columns wide.
func RenderSeparator() string {
	return RenderConditional(SeparatorStyle, strings.Repeat("-", min(GetTerminalWidth()-4, 80)))
}

// =============================================================================
// INTERACTIVE INPUT
// =============================================================================

// TTYRequiredError is returned when an operation needs a terminal.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	return "no terminal; cannot " + e.Operation
}

// ReadSecret prompts on w and reads one line from stdin without echo.
func ReadSecret(w io.Writer, prompt string) (string, error) {
	if !IsTTY() {
		return "", &TTYRequiredError{Operation: "read " + prompt}
	}
	fmt.Fprintf(w, "%s: ", prompt)
	defer fmt.Fprintln(w)

	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", prompt, err)
	}
	return strings.TrimSpace(string(secret)), nil
}
