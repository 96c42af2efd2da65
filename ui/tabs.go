package ui

import (
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

func tabBorderWithBottom(left, middle, right string) lipgloss.Border {
	border := lipgloss.RoundedBorder()
	border.BottomLeft = left
	border.Bottom = middle
	border.BottomRight = right
	return border
}

var (
	inactiveTabBorder = tabBorderWithBottom("┴", "─", "┴")
	activeTabBorder   = tabBorderWithBottom("┘", " ", "└")
	inactiveTabStyle  = lipgloss.NewStyle().
				Border(inactiveTabBorder, true).
				BorderForeground(ColorIris).
				AlignHorizontal(lipgloss.Center)
	activeTabStyle = inactiveTabStyle.
			Border(activeTabBorder, true).
			AlignHorizontal(lipgloss.Center)
	windowBorder = lipgloss.RoundedBorder()
	windowStyle  = lipgloss.NewStyle().
			BorderForeground(ColorIris).
			Border(windowBorder, false, true, true, true)
)

const (
	TimelineTab int = iota
	MovementsTab
)

// TabbedWindow has tabs at the top of a pane which can be selected. The tabs
// take up one rune of height.
type TabbedWindow struct {
	tabs []string

	activeTab int
	height    int
	width     int

	timeline  *Timeline
	movements *MovementsPane
	focused   bool
}

func NewTabbedWindow(timeline *Timeline, movements *MovementsPane) *TabbedWindow {
	return &TabbedWindow{
		tabs: []string{
			"◈ Timeline",
			"⇄ Movements",
		},
		timeline:  timeline,
		movements: movements,
	}
}

// SetFocused sets whether this panel has keyboard focus.
func (w *TabbedWindow) SetFocused(focused bool) {
	w.focused = focused
	w.syncPaneFocus()
}

// syncPaneFocus keeps pane focus flags in step with the active tab so only
// the visible pane paints its selection as active.
func (w *TabbedWindow) syncPaneFocus() {
	w.timeline.SetFocused(w.focused && w.activeTab == TimelineTab)
	w.movements.SetFocused(w.focused && w.activeTab == MovementsTab)
}

func (w *TabbedWindow) SetSize(width, height int) {
	w.width = width - 2 // margin for the outer border
	w.height = height

	// Content height subtracts the tab row (border + label), the window
	// frame and the joining newline.
	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1
	contentHeight := height - tabHeight - windowStyle.GetVerticalFrameSize() - 2
	contentWidth := w.width - windowStyle.GetHorizontalFrameSize()

	w.timeline.SetSize(contentWidth, contentHeight)
	w.movements.SetSize(contentWidth, contentHeight)
}

// GetContentSize returns the inner pane dimensions.
func (w *TabbedWindow) GetContentSize() (width, height int) {
	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1
	return w.width - windowStyle.GetHorizontalFrameSize(),
		w.height - tabHeight - windowStyle.GetVerticalFrameSize() - 2
}

// ContentYOffset returns the row where pane content begins, for mapping
// clicks into pane-local coordinates.
func (w *TabbedWindow) ContentYOffset() int {
	return activeTabStyle.GetVerticalFrameSize() + 1
}

// ContentXOffset returns the column where pane content begins.
func (w *TabbedWindow) ContentXOffset() int {
	return 1
}

func (w *TabbedWindow) Toggle() {
	w.activeTab = (w.activeTab + 1) % len(w.tabs)
	w.syncPaneFocus()
}

// SetActiveTab sets the active tab by index.
func (w *TabbedWindow) SetActiveTab(tab int) {
	if tab >= 0 && tab < len(w.tabs) {
		w.activeTab = tab
		w.syncPaneFocus()
	}
}

// GetActiveTab returns the currently active tab index.
func (w *TabbedWindow) GetActiveTab() int {
	return w.activeTab
}

// IsInMovementsTab returns true if the movements tab is currently active.
func (w *TabbedWindow) IsInMovementsTab() bool {
	return w.activeTab == MovementsTab
}

// ContentScrollUp scrolls the active pane's content (for mouse wheel).
func (w *TabbedWindow) ContentScrollUp() {
	switch w.activeTab {
	case TimelineTab:
		w.timeline.ScrollBy(-3)
	case MovementsTab:
		w.movements.ScrollBy(-3)
	}
}

// ContentScrollDown scrolls the active pane's content (for mouse wheel).
func (w *TabbedWindow) ContentScrollDown() {
	switch w.activeTab {
	case TimelineTab:
		w.timeline.ScrollBy(3)
	case MovementsTab:
		w.movements.ScrollBy(3)
	}
}

func (w *TabbedWindow) String() string {
	if w.width == 0 || w.height == 0 {
		return ""
	}

	var renderedTabs []string

	tabWidth := w.width / len(w.tabs)
	lastTabWidth := w.width - tabWidth*(len(w.tabs)-1)
	tabHeight := activeTabStyle.GetVerticalFrameSize() + 1 // get padding border margin size + 1 for character height

	// Determine tab/window border color based on focus state.
	var borderColor lipgloss.TerminalColor
	if w.focused {
		borderColor = ColorIris
	} else {
		borderColor = ColorOverlay
	}
	for i, t := range w.tabs {
		width := tabWidth
		if i == len(w.tabs)-1 {
			width = lastTabWidth
		}

		var style lipgloss.Style
		isFirst, isLast, isActive := i == 0, i == len(w.tabs)-1, i == w.activeTab
		if isActive {
			style = activeTabStyle
		} else {
			style = inactiveTabStyle
		}
		style = style.BorderForeground(borderColor)
		border, _, _, _, _ := style.GetBorder()
		if isFirst && isActive {
			border.BottomLeft = "│"
		} else if isFirst {
			border.BottomLeft = "├"
		} else if isLast && isActive {
			border.BottomRight = "│"
		} else if isLast {
			border.BottomRight = "┤"
		}
		style = style.Border(border)
		style = style.Width(width - style.GetHorizontalFrameSize())
		var rendered string
		if isActive {
			rendered = style.Render(GradientText(t, GradientStart, GradientEnd))
		} else {
			rendered = style.Render(t)
		}
		// Tabs render whole, so zone markers survive; click routing scans
		// for these ids.
		renderedTabs = append(renderedTabs, zone.Mark(TabZoneIDs[i], rendered))
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
	var content string
	switch w.activeTab {
	case TimelineTab:
		content = w.timeline.String()
	case MovementsTab:
		content = w.movements.String()
	}
	ws := windowStyle.BorderForeground(borderColor)
	// Subtract the window border width so the total rendered width
	// (content + borders) matches the tab row width.
	innerWidth := w.width - ws.GetHorizontalFrameSize()
	window := ws.Render(
		lipgloss.Place(
			innerWidth, w.height-2-ws.GetVerticalFrameSize()-tabHeight,
			lipgloss.Left, lipgloss.Top, content))

	return lipgloss.JoinVertical(lipgloss.Left, row, window)
}
