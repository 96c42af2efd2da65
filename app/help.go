package app

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tallyview/tally/ui"
	"github.com/tallyview/tally/ui/overlay"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorFoam)
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorGold)
	descStyle   = lipgloss.NewStyle().Foreground(ui.ColorText)
)

func helpContent() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		ui.GradientText("tally", ui.GradientStart, ui.GradientEnd),
		"",
		descStyle.Render("grouped ledger timeline. events roll up into transaction groups;"),
		descStyle.Render("asset movements pair off against their counterpart events."),
		"",
		headerStyle.Render("timeline:"),
		keyStyle.Render("↑↓/kj")+descStyle.Render("   - move between rows"),
		keyStyle.Render("↵/o")+descStyle.Render("     - open event detail"),
		keyStyle.Render("space")+descStyle.Render("   - expand/collapse cluster, load hidden events"),
		keyStyle.Render("←→/hl")+descStyle.Render("   - previous/next page"),
		keyStyle.Render("L")+descStyle.Render("       - cycle page size"),
		keyStyle.Render("y")+descStyle.Render("       - copy tx hash or identifier"),
		"",
		headerStyle.Render("filtering:"),
		keyStyle.Render("f")+descStyle.Render("       - filter form"),
		keyStyle.Render("/")+descStyle.Render("       - quick asset filter"),
		keyStyle.Render("s")+descStyle.Render("       - flip sort direction"),
		keyStyle.Render("i")+descStyle.Render("       - show/hide ignored events"),
		keyStyle.Render("x")+descStyle.Render("       - clear all filters"),
		keyStyle.Render("g")+descStyle.Render("       - go to group by identifier"),
		keyStyle.Render("⌫")+descStyle.Render("       - back to previous view"),
		"",
		headerStyle.Render("movements:"),
		keyStyle.Render("tab")+descStyle.Render("     - switch timeline/movements"),
		keyStyle.Render("←→/hl")+descStyle.Render("   - cycle match candidates"),
		keyStyle.Render("m")+descStyle.Render("       - match movement to selected candidate"),
		keyStyle.Render("↵/o")+descStyle.Render("     - jump to movement in timeline"),
		"",
		headerStyle.Render("general:"),
		keyStyle.Render("r")+descStyle.Render("       - refresh"),
		keyStyle.Render("?")+descStyle.Render("       - this help"),
		keyStyle.Render("q")+descStyle.Render("       - quit"),
	)
}

// showHelpScreen displays the help screen overlay.
func (m *home) showHelpScreen() (tea.Model, tea.Cmd) {
	m.textOverlay = overlay.NewTextOverlay(helpContent())
	m.textOverlay.SetWidth(int(float32(m.termWidth) * 0.6))
	m.state = stateHelp
	m.syncMenuState()
	return m, nil
}

// handleHelpState handles key events when in help state.
func (m *home) handleHelpState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key press will close the help overlay
	if m.textOverlay == nil || m.textOverlay.HandleKeyPress(msg) {
		m.state = stateDefault
		m.textOverlay = nil
		m.syncMenuState()
	}
	return m, nil
}
