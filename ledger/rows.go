package ledger

import (
	"fmt"
	"strconv"
)

// RowKind tags the renderable row variants the flattener emits.
type RowKind int

const (
	// RowGroupHeader opens each rendered group.
	RowGroupHeader RowKind = iota
	// RowEvent is a plain event with resolved detail.
	RowEvent
	// RowPlaceholder stands in for a plain event whose detail has not
	// resolved yet. Same key and height as the eventual event row, so
	// resolution swaps it in place without layout shift.
	RowPlaceholder
	// RowCluster is a collapsed cluster summary, or a non-first member of
	// an expanded cluster.
	RowCluster
	// RowClusterCollapse is the first member row of an expanded cluster;
	// it carries the collapse affordance. Not an extra row: an expanded
	// N-member cluster emits exactly N rows.
	RowClusterCollapse
	// RowLoadMore reveals a group's hidden ignored-asset members.
	RowLoadMore
)

// Row heights in terminal lines, fixed per kind.
const (
	heightGroupHeader = 2
	heightEvent       = 2
	heightCluster     = 2
	heightLoadMore    = 1
)

// Height returns the fixed render height for the kind.
func (k RowKind) Height() int {
	switch k {
	case RowLoadMore:
		return heightLoadMore
	case RowGroupHeader:
		return heightGroupHeader
	case RowEvent, RowPlaceholder:
		return heightEvent
	default:
		return heightCluster
	}
}

// Row is one renderable unit of the flattened timeline. Key is stable
// across re-flattens for unchanged data (group id + logical kind +
// sub-index), which lets the viewport update rows in place.
type Row struct {
	Kind    RowKind
	GroupID string
	Key     string

	// Group is set on header rows.
	Group *Group
	// Event is set on event, placeholder and cluster member rows.
	Event *Event
	// Cluster is set on cluster summary and member rows.
	Cluster *Cluster
	// Index is the member ordinal: within the visible sequence for plain
	// events, within the cluster for member rows.
	Index int
	// Count carries the member count on collapsed summaries and the hidden
	// count on load-more rows.
	Count int
}

// Height returns the row's fixed render height.
func (r Row) Height() int { return r.Kind.Height() }

// HeightOf is the height lookup the rendering layer consumes alongside the
// row slice.
func HeightOf(r Row) int { return r.Height() }

// TotalHeight sums the heights of rows.
func TotalHeight(rows []Row) int {
	total := 0
	for _, r := range rows {
		total += r.Height()
	}
	return total
}

// Flatten transforms a page of groups into the ordered row list the
// viewport renders. Pure: same inputs, same rows. Groups are walked in
// input order; hidden members never render; hiddenCounts drives the
// trailing load-more rows. A group with no visible members and no hidden
// count is skipped entirely, header included.
func Flatten(groups []Group, expand *ExpandState, hiddenCounts map[string]int) []Row {
	rows := make([]Row, 0, len(groups)*4)
	for gi := range groups {
		g := &groups[gi]
		visible := g.VisibleMembers()
		hidden := hiddenCounts[g.GroupID]
		if len(visible) == 0 && hidden == 0 {
			continue
		}

		rows = append(rows, Row{
			Kind:    RowGroupHeader,
			GroupID: g.GroupID,
			Key:     g.GroupID + ":hdr",
			Group:   g,
			Count:   len(visible),
		})

		ord := 0
		for _, seg := range segmentMembers(visible) {
			if seg.cluster == nil {
				kind := RowEvent
				if !seg.event.Resolved() {
					kind = RowPlaceholder
				}
				rows = append(rows, Row{
					Kind:    kind,
					GroupID: g.GroupID,
					Key:     g.GroupID + ":ev:" + strconv.Itoa(ord),
					Event:   seg.event,
					Index:   ord,
				})
				ord++
				continue
			}

			c := seg.cluster
			if expand != nil && expand.Expanded(c.Key) {
				for i := range c.Members {
					kind := RowCluster
					if i == 0 {
						kind = RowClusterCollapse
					}
					rows = append(rows, Row{
						Kind:    kind,
						GroupID: g.GroupID,
						Key:     fmt.Sprintf("%s:cl:%s:%d", g.GroupID, c.Key, i),
						Event:   &c.Members[i],
						Cluster: c,
						Index:   i,
					})
				}
			} else {
				rows = append(rows, Row{
					Kind:    RowCluster,
					GroupID: g.GroupID,
					Key:     g.GroupID + ":cl:" + string(c.Key),
					Cluster: c,
					Count:   len(c.Members),
				})
			}
			ord += len(c.Members)
		}

		if hidden > 0 {
			rows = append(rows, Row{
				Kind:    RowLoadMore,
				GroupID: g.GroupID,
				Key:     g.GroupID + ":more",
				Count:   hidden,
			})
		}
	}
	return rows
}
