package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// StatusBarData holds the contextual information displayed in the status bar.
type StatusBarData struct {
	Source       string // backing source label: "rest api" or the database file name
	QuerySummary string // active filter summary, empty when unfiltered
	Page         int
	TotalPages   int
	Limit        int
	Found        int  // groups matching the active filter
	Navigating   bool // a jump is resolving in the background
	NavFrame     string
	Watching     bool // database watcher is re-fetching on change
}

// StatusBar is the top status bar component.
type StatusBar struct {
	width int
	data  StatusBarData
}

// NewStatusBar creates a new StatusBar.
func NewStatusBar() *StatusBar {
	return &StatusBar{}
}

// SetSize sets the terminal width for the status bar.
func (s *StatusBar) SetSize(width int) {
	s.width = width
}

// SetData updates the status bar content.
func (s *StatusBar) SetData(data StatusBarData) {
	s.data = data
}

var statusBarStyle = lipgloss.NewStyle().
	Background(ColorSurface).
	Foreground(ColorText).
	Padding(0, 1)

var statusBarAppNameStyle = lipgloss.NewStyle().
	Foreground(ColorIris).
	Background(ColorSurface).
	Bold(true)

var statusBarSepStyle = lipgloss.NewStyle().
	Foreground(ColorOverlay).
	Background(ColorSurface)

var statusBarSourceStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarWatchStyle = lipgloss.NewStyle().
	Foreground(ColorPine).
	Background(ColorSurface)

var statusBarQueryStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface)

var statusBarCountStyle = lipgloss.NewStyle().
	Foreground(ColorSubtle).
	Background(ColorSurface)

var statusBarPageStyle = lipgloss.NewStyle().
	Foreground(ColorText).
	Background(ColorSurface)

var statusBarPagerStyle = lipgloss.NewStyle().
	Foreground(ColorFoam).
	Background(ColorSurface)

var statusBarNavStyle = lipgloss.NewStyle().
	Foreground(ColorGold).
	Background(ColorSurface)

const statusBarSep = " │ "

func (s *StatusBar) String() string {
	if s.width < 10 {
		return ""
	}

	parts := make([]string, 0, 6)
	parts = append(parts, statusBarAppNameStyle.Render("tally"))

	if s.data.Source != "" {
		parts = append(parts, statusBarSourceStyle.Render(s.data.Source))
	}

	if s.data.Watching {
		parts = append(parts, statusBarWatchStyle.Render("◉ live"))
	}

	if s.data.QuerySummary != "" {
		parts = append(parts, statusBarQueryStyle.Render(s.data.QuerySummary))
	}

	if s.data.TotalPages > 0 {
		parts = append(parts, statusBarCountStyle.Render(fmt.Sprintf("%d found", s.data.Found)))

		page := fmt.Sprintf("page %d/%d", s.data.Page, s.data.TotalPages)
		if s.data.Limit > 0 {
			page += fmt.Sprintf(" · %d/page", s.data.Limit)
		}
		if s.data.TotalPages > 1 {
			// Arrows are zone-marked so clicks page without coordinate math.
			prev := zone.Mark(ZonePagerPrev, statusBarPagerStyle.Render("◂"))
			next := zone.Mark(ZonePagerNext, statusBarPagerStyle.Render("▸"))
			parts = append(parts, prev+" "+statusBarPageStyle.Render(page)+" "+next)
		} else {
			parts = append(parts, statusBarPageStyle.Render(page))
		}
	}

	if s.data.Navigating {
		frame := s.data.NavFrame
		if frame != "" {
			frame += " "
		}
		parts = append(parts, statusBarNavStyle.Render(frame+"jumping…"))
	}

	sep := statusBarSepStyle.Render(statusBarSep)
	content := strings.Join(parts, sep)

	return statusBarStyle.Width(s.width).Render(content)
}
