package overlay

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/tallyview/tally/ledger"
)

const filterDateLayout = "2006-01-02"

// FilterOverlay is the timeline filter form, backed by huh.Form. List
// fields take comma-separated values; dates are YYYY-MM-DD. Submitting
// rebuilds a ledger.Query; fields the form does not own (sort direction,
// ignored visibility) ride through from the query it was opened with.
type FilterOverlay struct {
	form *huh.Form
	base ledger.Query

	assetVal        string
	locationVal     string
	eventTypeVal    string
	counterpartyVal string
	fromVal         string
	toVal           string
	matchVal        string

	submitted bool
	canceled  bool
	width     int
}

// NewFilterOverlay creates the filter form prefilled from the query.
func NewFilterOverlay(q ledger.Query) *FilterOverlay {
	f := &FilterOverlay{
		base:            q,
		assetVal:        strings.Join(q.Assets, ", "),
		locationVal:     strings.Join(q.Locations, ", "),
		eventTypeVal:    strings.Join(q.EventTypes, ", "),
		counterpartyVal: strings.Join(q.Counterparties, ", "),
		matchVal:        q.MatchStatus,
		width:           56,
	}
	if !q.FromTimestamp.IsZero() {
		f.fromVal = q.FromTimestamp.Format(filterDateLayout)
	}
	if !q.ToTimestamp.IsZero() {
		f.toVal = q.ToTimestamp.Format(filterDateLayout)
	}

	f.buildForm()
	return f
}

func (f *FilterOverlay) buildForm() {
	formWidth := f.width - 6
	if formWidth < 34 {
		formWidth = 34
	}

	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("asset").
				Title("assets").
				Value(&f.assetVal),
			huh.NewInput().
				Key("location").
				Title("locations").
				Value(&f.locationVal),
			huh.NewInput().
				Key("eventType").
				Title("event types").
				Value(&f.eventTypeVal),
			huh.NewInput().
				Key("counterparty").
				Title("counterparties").
				Value(&f.counterpartyVal),
			huh.NewInput().
				Key("from").
				Title("from date (YYYY-MM-DD)").
				Value(&f.fromVal),
			huh.NewInput().
				Key("to").
				Title("to date (YYYY-MM-DD)").
				Value(&f.toVal),
			huh.NewSelect[string]().
				Key("match").
				Title("movement match status").
				Options(
					huh.NewOption("any", ""),
					huh.NewOption("matched", "matched"),
					huh.NewOption("unmatched", "unmatched"),
				).
				Value(&f.matchVal),
		),
	).
		WithTheme(ThemeRosePine()).
		WithWidth(formWidth).
		WithShowHelp(false).
		WithShowErrors(false)

	_ = f.form.Init()
}

func (f *FilterOverlay) updateForm(msg tea.Msg) {
	updated, _ := f.form.Update(msg)
	if form, ok := updated.(*huh.Form); ok {
		f.form = form
	}
}

// SetWidth sets the overlay render width.
func (f *FilterOverlay) SetWidth(width int) {
	if width > 0 {
		f.width = width
	}
}

// HandleKeyPress processes a key and returns true when the overlay should close.
func (f *FilterOverlay) HandleKeyPress(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyEsc:
		f.canceled = true
		return true

	case tea.KeyEnter:
		f.submitted = true
		return true

	case tea.KeyTab, tea.KeyDown:
		f.updateForm(huh.NextField())
		return false

	case tea.KeyShiftTab, tea.KeyUp:
		f.updateForm(huh.PrevField())
		return false

	default:
		f.updateForm(msg)
		return false
	}
}

// IsSubmitted returns true when the form was submitted.
func (f *FilterOverlay) IsSubmitted() bool {
	return f.submitted
}

// Query rebuilds the filter query from the form values. Malformed dates
// drop silently rather than blocking submission.
func (f *FilterOverlay) Query() ledger.Query {
	q := ledger.Query{
		Assets:         splitList(f.assetVal),
		Locations:      splitList(f.locationVal),
		EventTypes:     splitList(f.eventTypeVal),
		Counterparties: splitList(f.counterpartyVal),
		MatchStatus:    f.matchVal,
		IncludeIgnored: f.base.IncludeIgnored,
		SortAscending:  f.base.SortAscending,
	}
	if ts, err := time.ParseInLocation(filterDateLayout, strings.TrimSpace(f.fromVal), time.UTC); err == nil {
		q.FromTimestamp = ts
	}
	if ts, err := time.ParseInLocation(filterDateLayout, strings.TrimSpace(f.toVal), time.UTC); err == nil {
		// Date-only input means the whole day.
		q.ToTimestamp = ts.AddDate(0, 0, 1).Add(-time.Second)
	}
	return q
}

// Render returns the styled overlay string.
func (f *FilterOverlay) Render() string {
	w := f.width
	if w < 40 {
		w = 40
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(colorIris).
		Bold(true).
		MarginBottom(1)

	hintStyle := lipgloss.NewStyle().
		Foreground(colorMuted).
		MarginTop(1)

	content := titleStyle.Render("filter timeline") + "\n"
	content += f.form.View() + "\n"
	content += hintStyle.Render("tab/↑↓ navigate · comma separates · enter apply · esc cancel")

	style := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorIris).
		Padding(1, 2).
		Width(w)

	return style.Render(content)
}

// splitList parses a comma-separated field into its non-empty entries.
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
