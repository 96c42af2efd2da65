package overlay

import (
	"github.com/charmbracelet/lipgloss"
)

// ConfirmationOverlay asks a yes/no question before a destructive or
// persistent action. The caller owns the y/n key handling; this only
// renders the modal.
type ConfirmationOverlay struct {
	message string
	width   int
}

func NewConfirmationOverlay(message string) *ConfirmationOverlay {
	return &ConfirmationOverlay{
		message: message,
		width:   50,
	}
}

// SetWidth sets the render width of the modal.
func (c *ConfirmationOverlay) SetWidth(width int) {
	if width > 0 {
		c.width = width
	}
}

// Render renders the confirmation modal.
func (c *ConfirmationOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorGold).
		Padding(1, 2).
		Width(c.width)

	messageStyle := lipgloss.NewStyle().Foreground(colorText)
	hintStyle := lipgloss.NewStyle().Foreground(colorMuted)

	content := messageStyle.Render(c.message) + "\n\n" +
		hintStyle.Render("y confirm · n cancel")
	return style.Render(content)
}
