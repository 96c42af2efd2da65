package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Markers for timeline rows.
const (
	groupIcon         = "◈"
	clusterClosedIcon = "▸"
	clusterOpenIcon   = "▾"
	clusterRailIcon   = "│"
	matchedIcon       = "⇄"
	highlightIcon     = "▌"
	loadMoreIcon      = "+"
)

// Row background tiers. Renderers inherit the row background into every
// inline segment so mid-line color resets don't break the stripe.
var rowStyle = lipgloss.NewStyle().
	Foreground(ColorText)

var altRowStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText)

var selectedRowStyle = lipgloss.NewStyle().
	Background(ColorIris).
	Foreground(ColorBase)

// inactiveSelectedRowStyle marks the selection while the pane is unfocused.
var inactiveSelectedRowStyle = lipgloss.NewStyle().
	Background(ColorOverlay).
	Foreground(ColorText)

var headerDateStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Bold(true)

var headerLocStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

var headerMetaStyle = lipgloss.NewStyle().
	Foreground(ColorMuted)

var groupIconStyle = lipgloss.NewStyle().
	Foreground(ColorIris)

var eventTypeStyle = lipgloss.NewStyle().
	Foreground(ColorText)

var assetStyle = lipgloss.NewStyle().
	Foreground(ColorRose)

var amountInStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

var amountOutStyle = lipgloss.NewStyle().
	Foreground(ColorLove)

var amountNeutralStyle = lipgloss.NewStyle().
	Foreground(ColorText)

var notesStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)

var counterpartyStyle = lipgloss.NewStyle().
	Foreground(ColorMuted)

var txHashStyle = lipgloss.NewStyle().
	Foreground(ColorPine)

var matchedStyle = lipgloss.NewStyle().
	Foreground(ColorPine)

var placeholderStyle = lipgloss.NewStyle().
	Foreground(ColorMuted).
	Faint(true)

var clusterChevronStyle = lipgloss.NewStyle().
	Foreground(ColorIris)

var clusterMetaStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle)

var loadMoreStyle = lipgloss.NewStyle().
	Foreground(ColorFoam)

var emptyTimelineStyle = lipgloss.NewStyle().
	Foreground(ColorMuted)

// amountStyleFor picks the amount color from the event classification.
// Inbound value renders foam, outbound love, anything else plain text.
func amountStyleFor(eventType, eventSubtype string) lipgloss.Style {
	switch eventSubtype {
	case "receive", "reward", "airdrop", "interest", "remove asset", "generate debt":
		return amountInStyle
	case "spend", "fee", "deposit asset", "donate", "payback debt":
		return amountOutStyle
	}
	switch eventType {
	case "receive", "deposit":
		return amountInStyle
	case "spend", "withdrawal":
		return amountOutStyle
	}
	return amountNeutralStyle
}

// clusterLabel names a collapsed cluster by its category.
func clusterLabel(category string, n int) string {
	switch category {
	case "swap":
		return fmt.Sprintf("%d swap legs", n)
	case "move":
		return fmt.Sprintf("%d movement legs", n)
	}
	return fmt.Sprintf("%d linked entries", n)
}
