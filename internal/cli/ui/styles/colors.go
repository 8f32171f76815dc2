// Package styles provides the styling system for ferry's terminal output.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette. Harbor blue as the primary, with conventional status
// colors for success/warn/error.
var (
	ColorPrimary = lipgloss.Color("#1ac5ff")
	ColorSuccess = lipgloss.Color("#00cc6a")
	ColorWarning = lipgloss.Color("#ffb224")
	ColorError   = lipgloss.Color("#f14c4c")
	ColorInfo    = lipgloss.Color("#47d1ff")

	ColorText      = lipgloss.Color("#e8e8e8")
	ColorTextMuted = lipgloss.Color("#8a8a8a")
	ColorBorder    = lipgloss.Color("#3a3a3a")
	ColorBg        = lipgloss.Color("#101010")
)
