package ledger

import (
	"sort"
	"strconv"
	"strings"
)

// ClusterKey identifies a cluster stably across refetches. It is derived
// from the member identifiers, not from fetch order, so the same compound
// entity keeps the same key no matter how the page was assembled.
type ClusterKey string

// Cluster is a run of two or more adjacent visible members representing one
// compound entity: the legs of a swap, or an asset movement with its fee and
// matched counterpart. Members are in sequence order.
type Cluster struct {
	Key      ClusterKey
	Category string
	Members  []Event
}

// DeriveClusterKey builds the stable key for a set of clustered members.
func DeriveClusterKey(category string, members []Event) ClusterKey {
	ids := make([]int64, len(members))
	for i, m := range members {
		ids[i] = m.Identifier
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var b strings.Builder
	b.WriteString(category)
	b.WriteByte(':')
	for i, id := range ids {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return ClusterKey(b.String())
}

// segment is either one plain event or one cluster; a group's visible
// members split into an ordered list of segments.
type segment struct {
	event   *Event
	cluster *Cluster
}

// segmentMembers walks visible members in sequence order and folds adjacent
// runs of the same cluster category into clusters. Runs of length one stay
// plain events: a lone swap leg or movement renders like any other entry.
func segmentMembers(members []Event) []segment {
	var segs []segment
	i := 0
	for i < len(members) {
		cat := members[i].EntryType.clusterCategory()
		if cat == "" {
			segs = append(segs, segment{event: &members[i]})
			i++
			continue
		}
		j := i + 1
		for j < len(members) && members[j].EntryType.clusterCategory() == cat {
			j++
		}
		if j-i < 2 {
			segs = append(segs, segment{event: &members[i]})
			i++
			continue
		}
		run := members[i:j]
		segs = append(segs, segment{cluster: &Cluster{
			Key:      DeriveClusterKey(cat, run),
			Category: cat,
			Members:  run,
		}})
		i = j
	}
	return segs
}

// Clusters returns the clusters a group's visible members form, in display
// order. Used by callers that need keys without a full flatten, e.g. to
// expand everything in a group.
func (g *Group) Clusters() []Cluster {
	var clusters []Cluster
	for _, seg := range segmentMembers(g.VisibleMembers()) {
		if seg.cluster != nil {
			clusters = append(clusters, *seg.cluster)
		}
	}
	return clusters
}
