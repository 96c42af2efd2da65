package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/tallyview/tally/ledger"
)

const headerTimeLayout = "02 Jan 2006 15:04"
const clusterEndIcon = "└"

// seg is one styled fragment of a rendered line. Text must be plain except
// for the spinner, whose view arrives pre-styled.
type seg struct {
	text  string
	style lipgloss.Style
}

func segsWidth(segs []seg) int {
	w := 0
	for _, s := range segs {
		w += ansi.StringWidth(s.text)
	}
	return w
}

// renderLine paints one physical row at exactly width cells. Selected rows
// flatten to the base style so the selection bar reads as a single block;
// otherwise each segment keeps its color with the row background inherited.
// Overlong lines flatten too, trading segment color for a clean clip.
func renderLine(segs []seg, base lipgloss.Style, width int, flat bool) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.text)
	}
	content := b.String()
	w := ansi.StringWidth(content)

	if flat || w > width {
		plain := ansi.Strip(content)
		return base.Render(runewidth.FillRight(runewidth.Truncate(plain, width, "…"), width))
	}

	bg := base.GetBackground()
	var out strings.Builder
	for _, s := range segs {
		out.WriteString(s.style.Background(bg).Render(s.text))
	}
	if pad := width - w; pad > 0 {
		out.WriteString(base.Render(strings.Repeat(" ", pad)))
	}
	return out.String()
}

// renderAligned lays out left and right segment groups on one padded line,
// the right group flush against the pane edge.
func renderAligned(left, right []seg, base lipgloss.Style, width int, flat bool) string {
	if len(right) == 0 {
		return renderLine(left, base, width, flat)
	}
	gap := width - segsWidth(left) - segsWidth(right)
	if gap < 1 {
		gap = 1
	}
	segs := make([]seg, 0, len(left)+len(right)+1)
	segs = append(segs, left...)
	segs = append(segs, seg{strings.Repeat(" ", gap), eventTypeStyle})
	segs = append(segs, right...)
	return renderLine(segs, base, width, flat)
}

func (t *Timeline) String() string {
	if t.width <= 0 || t.height <= 0 {
		return ""
	}
	if len(t.rows) == 0 {
		return t.renderEmpty()
	}

	lines := make([]string, 0, ledger.TotalHeight(t.rows))
	groupOrd := -1
	lastGroup := ""
	for i, row := range t.rows {
		if row.GroupID != lastGroup {
			groupOrd++
			lastGroup = row.GroupID
		}
		lines = append(lines, strings.Split(t.renderRow(row, i, groupOrd%2 == 1), "\n")...)
	}

	off := t.ScrollOffset()
	if off > len(lines) {
		off = len(lines)
	}
	end := off + t.height
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[off:end], "\n")
}

// renderEmpty centers the hint text in the pane, with the animated banner
// above it when there is room.
func (t *Timeline) renderEmpty() string {
	content := emptyTimelineStyle.Render("no entries match the active filter")
	if t.width >= bannerWidth+2 && t.height >= 10 {
		content = lipgloss.JoinVertical(lipgloss.Center, FallBackText(t.bannerFrame), "", content)
	}

	contentLines := strings.Count(content, "\n") + 1
	top := (t.height - contentLines) / 2
	if top < 0 {
		top = 0
	}
	centered := lipgloss.NewStyle().Width(t.width).Align(lipgloss.Center).Render(content)
	return strings.Repeat("\n", top) + centered
}

// renderRow emits exactly row.Height() physical lines. The styles carry no
// vertical padding, so the prefix-sum scroll math stays honest.
func (t *Timeline) renderRow(row ledger.Row, idx int, alt bool) string {
	selected := idx == t.selectedIdx && t.selectable(idx)
	base := rowStyle
	flat := false
	switch {
	case selected && t.focused:
		base = selectedRowStyle
		flat = true
	case selected:
		base = inactiveSelectedRowStyle
		flat = true
	case alt:
		base = altRowStyle
	}

	switch row.Kind {
	case ledger.RowGroupHeader:
		return t.renderGroupHeader(row, alt)
	case ledger.RowEvent:
		return t.renderEntry(row, base, flat, "", "")
	case ledger.RowPlaceholder:
		return t.renderPending(row, base, flat, "", "")
	case ledger.RowCluster:
		if row.Event == nil {
			return t.renderClusterSummary(row, base, flat)
		}
		return t.renderClusterMember(row, base, flat)
	case ledger.RowClusterCollapse:
		return t.renderClusterMember(row, base, flat)
	case ledger.RowLoadMore:
		return t.renderLoadMore(row, base, flat)
	}
	return ""
}

// gutterSegs returns the 2-cell left margin. The row a jump landed on gets a
// bar pulsing between gold and rose until the user moves the selection.
func (t *Timeline) gutterSegs(row ledger.Row) []seg {
	if t.highlightKey == "" || row.Key != t.highlightKey {
		return []seg{{"  ", eventTypeStyle}}
	}
	phase := (math.Sin(float64(time.Now().UnixMilli())/300.0) + 1.0) / 2.0
	cr := lerpByte(0xf6, 0xea, phase)
	cg := lerpByte(0xc1, 0x9a, phase)
	cb := lerpByte(0x77, 0x97, phase)
	pulse := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", cr, cg, cb)))
	return []seg{{highlightIcon, pulse}, {" ", eventTypeStyle}}
}

func (t *Timeline) renderGroupHeader(row ledger.Row, alt bool) string {
	base := rowStyle
	if alt {
		base = altRowStyle
	}
	g := row.Group

	left := t.gutterSegs(row)
	left = append(left,
		seg{groupIcon + " ", groupIconStyle},
		seg{g.Timestamp.Format(headerTimeLayout), headerDateStyle},
	)
	if g.Location != "" {
		left = append(left, seg{"  ", eventTypeStyle}, seg{g.Location, headerLocStyle})
	}

	meta := fmt.Sprintf("%d %s", row.Count, plural(row.Count, "entry", "entries"))
	if g.HiddenCount > 0 {
		meta += fmt.Sprintf(" · %d ignored", g.HiddenCount)
	}
	meta += " · " + humanize.Time(g.Timestamp)
	right := []seg{{meta, headerMetaStyle}}

	// Line one is a spacer so consecutive groups don't run together.
	spacer := renderLine(nil, rowStyle, t.width, false)
	return spacer + "\n" + renderAligned(left, right, base, t.width, false)
}

// renderEntry paints a resolved event across two lines: classification and
// amount on the first, counterparty, notes and hash on the second. lead1 and
// lead2 are the per-line cluster gutter glyphs, empty for plain events.
func (t *Timeline) renderEntry(row ledger.Row, base lipgloss.Style, flat bool, lead1, lead2 string) string {
	d := row.Event.Detail
	if d == nil {
		return t.renderPending(row, base, flat, lead1, lead2)
	}

	left := t.gutterSegs(row)
	if lead1 != "" {
		left = append(left, seg{lead1 + " ", clusterChevronStyle})
	}

	var right []seg
	if d.Amount != "" {
		amt := d.Amount
		if d.Asset != "" {
			amt += " "
		}
		right = append(right, seg{amt, amountStyleFor(d.EventType, d.EventSubtype)})
	}
	if d.Asset != "" {
		right = append(right, seg{d.Asset, assetStyle})
	}
	if d.MatchedEvent != 0 {
		right = append(right, seg{" " + matchedIcon, matchedStyle})
	}

	label := eventLabel(d)
	avail := t.width - segsWidth(left) - segsWidth(right) - 1
	if avail < 4 {
		right = nil
		avail = t.width - segsWidth(left) - 1
	}
	if avail > 1 && runewidth.StringWidth(label) > avail {
		label = runewidth.Truncate(label, avail, "…")
	}
	left = append(left, seg{label, eventTypeStyle})
	line1 := renderAligned(left, right, base, t.width, flat)

	left2 := t.gutterSegs(row)
	if lead2 != "" {
		left2 = append(left2, seg{lead2 + " ", clusterChevronStyle})
	}
	if d.Counterparty != "" {
		left2 = append(left2, seg{d.Counterparty + "  ", counterpartyStyle})
	}
	var right2 []seg
	switch {
	case d.TxHash != "":
		right2 = append(right2, seg{shortHash(d.TxHash), txHashStyle})
	case d.LocationLabel != "":
		right2 = append(right2, seg{d.LocationLabel, headerMetaStyle})
	}
	notes := d.Notes
	avail2 := t.width - segsWidth(left2) - segsWidth(right2) - 1
	if avail2 < 4 {
		right2 = nil
		avail2 = t.width - segsWidth(left2) - 1
	}
	if avail2 > 1 && runewidth.StringWidth(notes) > avail2 {
		notes = runewidth.Truncate(notes, avail2, "…")
	}
	left2 = append(left2, seg{notes, notesStyle})
	line2 := renderAligned(left2, right2, base, t.width, flat)

	return line1 + "\n" + line2
}

// renderPending stands in for an event whose detail has not resolved yet.
// Same height as the resolved row, so resolution swaps in without a jump.
func (t *Timeline) renderPending(row ledger.Row, base lipgloss.Style, flat bool, lead1, lead2 string) string {
	left := t.gutterSegs(row)
	if lead1 != "" {
		left = append(left, seg{lead1 + " ", clusterChevronStyle})
	}
	left = append(left,
		seg{t.spinner.View() + " ", lipgloss.NewStyle()},
		seg{"resolving entry…", placeholderStyle},
	)
	line1 := renderLine(left, base, t.width, flat)

	left2 := t.gutterSegs(row)
	if lead2 != "" {
		left2 = append(left2, seg{lead2 + " ", clusterChevronStyle})
	}
	line2 := renderLine(left2, base, t.width, flat)

	return line1 + "\n" + line2
}

func (t *Timeline) renderClusterSummary(row ledger.Row, base lipgloss.Style, flat bool) string {
	c := row.Cluster

	left := t.gutterSegs(row)
	left = append(left,
		seg{clusterClosedIcon + " ", clusterChevronStyle},
		seg{clusterLabel(c.Category, row.Count), eventTypeStyle},
	)
	line1 := renderLine(left, base, t.width, flat)

	left2 := t.gutterSegs(row)
	if trail := clusterAssetTrail(c); trail != "" {
		left2 = append(left2, seg{"  " + trail, clusterMetaStyle})
	}
	line2 := renderLine(left2, base, t.width, flat)

	return line1 + "\n" + line2
}

func (t *Timeline) renderClusterMember(row ledger.Row, base lipgloss.Style, flat bool) string {
	lead1 := clusterRailIcon
	if row.Kind == ledger.RowClusterCollapse {
		lead1 = clusterOpenIcon
	}
	lead2 := clusterRailIcon
	if row.Cluster != nil && row.Index == len(row.Cluster.Members)-1 {
		lead2 = clusterEndIcon
	}
	return t.renderEntry(row, base, flat, lead1, lead2)
}

func (t *Timeline) renderLoadMore(row ledger.Row, base lipgloss.Style, flat bool) string {
	left := t.gutterSegs(row)
	left = append(left, seg{
		fmt.Sprintf("%s show %d ignored %s", loadMoreIcon, row.Count, plural(row.Count, "entry", "entries")),
		loadMoreStyle,
	})
	return renderLine(left, base, t.width, flat)
}

// clusterAssetTrail lists the distinct member assets in order, capped at
// three. Unresolved members contribute nothing.
func clusterAssetTrail(c *ledger.Cluster) string {
	seen := make(map[string]bool)
	var assets []string
	for _, m := range c.Members {
		if m.Detail == nil || m.Detail.Asset == "" || seen[m.Detail.Asset] {
			continue
		}
		seen[m.Detail.Asset] = true
		assets = append(assets, m.Detail.Asset)
	}
	if len(assets) == 0 {
		return ""
	}
	if len(assets) > 3 {
		assets = append(assets[:3], "…")
	}
	return strings.Join(assets, " · ")
}

func eventLabel(d *ledger.EventDetail) string {
	if d.EventSubtype != "" && d.EventSubtype != "none" {
		return d.EventType + " · " + d.EventSubtype
	}
	return d.EventType
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-4:]
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
