// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/herder-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusWaiting
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusWaiting:
		return "Waiting for model..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an ASCII indicator for the status, shown alongside color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading, StatusWaiting:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// Shortcut is one key hint shown on the right of the bar.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line of the control surface.
type StatusBar struct {
	Server    string // server host, shown on the left
	ActiveTab string
	Status    Status
	Queued    int // submissions waiting behind the one in flight
	Message   string
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	if theme == nil {
		theme = styles.DefaultTheme
	}
	return &StatusBar{
		Status: StatusReady,
		Width:  80,
		theme:  theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetStatus updates the status and its message. An empty message clears it.
func (s *StatusBar) SetStatus(status Status, message string) {
	s.Status = status
	s.Message = message
}

// View renders the status bar
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders icon and tab only.
func (s *StatusBar) viewNarrow() string {
	line := s.statusStyle().Render(s.Status.Icon())
	if s.ActiveTab != "" {
		line += " " + s.ActiveTab
	}
	return s.theme.StatusBar.Width(s.Width).Render(runewidth.Truncate(line, s.Width, "…"))
}

// viewWide renders "server | tab | status [message]" on the left and the
// shortcuts on the right, dropping shortcuts first when space runs out.
func (s *StatusBar) viewWide() string {
	sep := s.theme.ShortcutDesc.Render(" | ")

	left := []string{}
	if s.Server != "" {
		left = append(left, s.Server)
	}
	if s.ActiveTab != "" {
		left = append(left, s.ActiveTab)
	}
	status := s.Status.Icon() + " " + s.Status.String()
	if s.Status == StatusWaiting && s.Queued > 0 {
		status += fmt.Sprintf(" (%d queued)", s.Queued)
	}
	if s.Message != "" {
		status += " " + s.Message
	}
	left = append(left, s.statusStyle().Render(status))
	leftText := strings.Join(left, sep)

	right := s.renderShortcuts()
	gap := s.Width - lipgloss.Width(leftText) - lipgloss.Width(right) - 2
	if right == "" || gap < 1 {
		return s.theme.StatusBar.Width(s.Width).Render(s.clip(leftText))
	}
	return s.theme.StatusBar.Width(s.Width).Render(leftText + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderShortcuts() string {
	parts := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		parts = append(parts, s.theme.ShortcutKey.Render(sc.Key)+" "+s.theme.ShortcutDesc.Render(sc.Desc))
	}
	return strings.Join(parts, "  ")
}

func (s *StatusBar) clip(text string) string {
	if lipgloss.Width(text) <= s.Width {
		return text
	}
	// Styled text cannot be cut safely; fall back to the plain form.
	return runewidth.Truncate(stripStatus(s), s.Width, "…")
}

func stripStatus(s *StatusBar) string {
	parts := []string{}
	if s.Server != "" {
		parts = append(parts, s.Server)
	}
	if s.ActiveTab != "" {
		parts = append(parts, s.ActiveTab)
	}
	status := s.Status.Icon() + " " + s.Status.String()
	if s.Message != "" {
		status += " " + s.Message
	}
	return strings.Join(append(parts, status), " | ")
}

func (s *StatusBar) statusStyle() lipgloss.Style {
	switch s.Status {
	case StatusReady:
		return s.theme.SuccessStyle
	case StatusError:
		return s.theme.ErrorStyle
	default:
		return s.theme.WarningStyle
	}
}
