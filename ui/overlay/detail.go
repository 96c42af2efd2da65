package overlay

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/tallyview/tally/ledger"
)

const detailTimeLayout = "02 Jan 2006 15:04:05 MST"

// DetailOverlay shows one event's full payload: the classification fields
// up top, the notes rendered as markdown underneath. Notes arrive async
// via SetNotes once the markdown renderer finishes.
type DetailOverlay struct {
	event  ledger.Event
	notes  string
	offset int

	width  int
	height int
}

func NewDetailOverlay(event ledger.Event) *DetailOverlay {
	return &DetailOverlay{event: event}
}

// EventID identifies which event this overlay shows, so stale async
// renders can be dropped.
func (d *DetailOverlay) EventID() int64 {
	return d.event.Identifier
}

// SetNotes installs the rendered notes markdown.
func (d *DetailOverlay) SetNotes(rendered string) {
	d.notes = rendered
}

func (d *DetailOverlay) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// TxHash returns the event's transaction hash, empty when none.
func (d *DetailOverlay) TxHash() string {
	if d.event.Detail == nil {
		return ""
	}
	return d.event.Detail.TxHash
}

func (d *DetailOverlay) ScrollUp() {
	if d.offset > 0 {
		d.offset--
	}
}

func (d *DetailOverlay) ScrollDown() {
	d.offset++
}

// Render renders the detail overlay.
func (d *DetailOverlay) Render() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2)
	if d.width > 0 {
		style = style.Width(d.width)
	}

	labelStyle := lipgloss.NewStyle().Foreground(colorMuted).Width(14)
	valueStyle := lipgloss.NewStyle().Foreground(colorText)
	titleStyle := lipgloss.NewStyle().Foreground(colorIris).Bold(true)

	ev := d.event
	det := ev.Detail

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("event %d", ev.Identifier)))
	b.WriteString("\n\n")

	field := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	field("group", ev.GroupID)
	if det != nil {
		field("when", det.Timestamp.Format(detailTimeLayout))
		loc := det.Location
		if det.LocationLabel != "" && det.LocationLabel != det.Location {
			loc += " (" + det.LocationLabel + ")"
		}
		field("where", loc)
		kind := det.EventType
		if det.EventSubtype != "" && det.EventSubtype != "none" {
			kind += " · " + det.EventSubtype
		}
		field("kind", kind)
		if det.Amount != "" {
			field("amount", strings.TrimSpace(det.Amount+" "+det.Asset))
		}
		field("via", det.Counterparty)
		field("tx", det.TxHash)
		if det.MatchedEvent != 0 {
			field("matched", fmt.Sprintf("event %d", det.MatchedEvent))
		}
	}
	if ev.Hidden {
		field("visibility", "ignored")
	}

	if d.notes != "" {
		b.WriteString("\n" + strings.TrimRight(d.notes, "\n") + "\n")
	} else if det != nil && det.Notes != "" {
		b.WriteString("\n" + valueStyle.Render(det.Notes) + "\n")
	}

	hintStyle := lipgloss.NewStyle().Foreground(colorMuted)
	b.WriteString("\n" + hintStyle.Render("jk scroll · y copy hash · esc close"))

	return style.Render(d.clip(b.String()))
}

// clip windows the content to the overlay height, honoring the scroll
// offset. The frame adds four rows of its own.
func (d *DetailOverlay) clip(content string) string {
	if d.height <= 0 {
		return content
	}
	inner := d.height - 4
	if inner < 3 {
		inner = 3
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= inner {
		d.offset = 0
		return content
	}
	max := len(lines) - inner
	if d.offset > max {
		d.offset = max
	}
	return strings.Join(lines[d.offset:d.offset+inner], "\n")
}

// RenderMarkdown renders markdown for terminal display, word-wrapped to
// the given width.
func RenderMarkdown(md string, wrap int) (string, error) {
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
