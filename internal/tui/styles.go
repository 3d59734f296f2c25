// Package tui implements the Bubble Tea host for lightbox pages.
package tui

import (
	lipgloss "charm.land/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Tokyo Night color palette. Kept as hex so faded variants can be blended.
const (
	hexBackdrop = "#1a1b26" // background
	hexWhite    = "#c0caf5" // foreground
	hexBlue     = "#7aa2f7" // blue
	hexGray     = "#565f89" // comment
	hexRed      = "#f7768e" // red
	hexButton   = "#3b4261" // selection
)

var (
	colorWhite = lipgloss.Color(hexWhite)
	colorBlue  = lipgloss.Color(hexBlue)
	colorGray  = lipgloss.Color(hexGray)
	colorRed   = lipgloss.Color(hexRed)
)

// Page styles.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBlue).
			PaddingLeft(1).
			PaddingBottom(1)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color(hexButton)).
			Foreground(lipgloss.Color("#a9b1d6"))

	buttonFocusedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(colorBlue).
				Foreground(lipgloss.Color(hexBackdrop)).
				Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			Italic(true)
)

// Dialog styles.
var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)

	closeStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)
)

// Dialog chrome: one border cell and one padding cell on each side.
const (
	dialogBorder  = 1
	dialogPadding = 1
)

// blend returns the color a fraction t of the way from one hex color to
// another. Invalid input yields the target color.
func blend(from, to string, t float64) string {
	a, err := colorful.Hex(from)
	if err != nil {
		return to
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return to
	}
	return a.BlendRgb(b, min(max(t, 0), 1)).Hex()
}
