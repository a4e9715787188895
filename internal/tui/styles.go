// Package tui implements the Bubble Tea storefront for shopcart.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/shopcart/internal/styles"
)

// Styles used for rendering the TUI.
var (
	bannerStyle = styles.BannerStyle.
			PaddingLeft(1).
			PaddingBottom(1)

	tabStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true).
			Underline(true).
			Padding(0, 1)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1b26")).
			Background(styles.ColorYellow).
			Bold(true).
			Padding(0, 1)

	accountStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen).
			PaddingLeft(2)

	heroStyle = lipgloss.NewStyle().
			Foreground(styles.ColorWhite).
			Bold(true).
			PaddingLeft(1)

	heroDotStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	heroDotActiveStyle = lipgloss.NewStyle().
				Foreground(styles.ColorBlue)

	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	selectedBorderStyle = lipgloss.NewStyle().
				Foreground(styles.ColorBlue)

	normalStyle = lipgloss.NewStyle()

	mutedStyle = styles.MutedStyle

	priceStyle = styles.PriceStyle

	noticeStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow).
			PaddingLeft(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed).
			PaddingLeft(1)

	statusStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)

	// Modal styles.
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(styles.ColorSurface).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(lipgloss.Color("#1a1b26")).
					Bold(true)
)

// Icons and symbols.
const (
	iconDot     = "•"
	iconCart    = "🛒"
	iconCursor  = "┃"
	iconStar    = "★"
	iconNoStar  = "☆"
	iconHeroDot = "●"
)
