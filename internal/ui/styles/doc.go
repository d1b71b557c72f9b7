// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the herder console.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection; termenv supplies the color profile.

# Color System (colors.go)

  - Purple - assistant messages, card titles, modal frames
  - Cyan - active tab, operator messages, focus
  - Emerald - loaded model marker, running workers, success
  - Amber - rating stars, pending calls
  - Rose - errors and rejected requests

# Theme (theme.go)

Theme groups the styles per screen area: tab bar, node cards,
conversation, forms, modal and status line. NewThemeNamed("plain")
returns an uncolored theme.

	theme := styles.NewThemeNamed(cfg.UI.Theme)
	fmt.Println(theme.Stars(3, 2))

# Accessibility

StatusIndicators pair every colored state with an ASCII marker ([OK],
[X], [!]) so state is readable without color.
*/
package styles
