package overlay

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TextOverlay displays a block of pre-styled text in a bordered box. Any
// key dismisses it.
type TextOverlay struct {
	content string
	width   int
}

func NewTextOverlay(content string) *TextOverlay {
	return &TextOverlay{content: content}
}

// SetWidth sets the render width of the overlay box.
func (t *TextOverlay) SetWidth(width int) {
	t.width = width
}

// HandleKeyPress reports whether the overlay should close.
func (t *TextOverlay) HandleKeyPress(tea.KeyMsg) bool {
	return true
}

// Render renders the text overlay.
func (t *TextOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)
	if t.width > 0 {
		style = style.Width(t.width)
	}
	return style.Render(t.content)
}
