package ledger

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Route parameter names the filter codec owns. page, limit and the
// highlighted* slots belong to the navigation subsystem and pass through
// this codec untouched.
const (
	ParamFromTimestamp  = "fromTimestamp"
	ParamToTimestamp    = "toTimestamp"
	ParamAsset          = "asset"
	ParamLocation       = "location"
	ParamEventType      = "eventType"
	ParamEventSubtype   = "eventSubtype"
	ParamCounterparty   = "counterparty"
	ParamGroupID        = "groupId"
	ParamMatchStatus    = "matchStatus"
	ParamIncludeIgnored = "includeIgnored"
	ParamSortAscending  = "sortAscending"
)

// Query is the filter and sort state of the timeline. The zero value is
// the unfiltered, newest-first view.
type Query struct {
	FromTimestamp  time.Time
	ToTimestamp    time.Time
	Assets         []string
	Locations      []string
	EventTypes     []string
	EventSubtypes  []string
	Counterparties []string
	GroupIDs       []string
	// MatchStatus filters asset movements: "", "matched" or "unmatched".
	MatchStatus string
	// IncludeIgnored lifts the ignore rules, rendering hidden events too.
	IncludeIgnored bool
	// SortAscending flips the default newest-first order.
	SortAscending bool
}

// ParseQuery decodes the filter state carried in route values. Unknown
// parameters are ignored, malformed timestamps dropped.
func ParseQuery(values url.Values) Query {
	q := Query{
		Assets:         values[ParamAsset],
		Locations:      values[ParamLocation],
		EventTypes:     values[ParamEventType],
		EventSubtypes:  values[ParamEventSubtype],
		Counterparties: values[ParamCounterparty],
		GroupIDs:       values[ParamGroupID],
		MatchStatus:    values.Get(ParamMatchStatus),
		IncludeIgnored: values.Get(ParamIncludeIgnored) == "true",
		SortAscending:  values.Get(ParamSortAscending) == "true",
	}
	if ts := parseUnix(values.Get(ParamFromTimestamp)); !ts.IsZero() {
		q.FromTimestamp = ts
	}
	if ts := parseUnix(values.Get(ParamToTimestamp)); !ts.IsZero() {
		q.ToTimestamp = ts
	}
	return q
}

func parseUnix(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// Values encodes the filter state back into route values. Zero fields emit
// nothing, so the codec round-trips cleanly.
func (q Query) Values() url.Values {
	values := url.Values{}
	if !q.FromTimestamp.IsZero() {
		values.Set(ParamFromTimestamp, strconv.FormatInt(q.FromTimestamp.Unix(), 10))
	}
	if !q.ToTimestamp.IsZero() {
		values.Set(ParamToTimestamp, strconv.FormatInt(q.ToTimestamp.Unix(), 10))
	}
	setAll := func(name string, vals []string) {
		for _, v := range vals {
			if v != "" {
				values.Add(name, v)
			}
		}
	}
	setAll(ParamAsset, q.Assets)
	setAll(ParamLocation, q.Locations)
	setAll(ParamEventType, q.EventTypes)
	setAll(ParamEventSubtype, q.EventSubtypes)
	setAll(ParamCounterparty, q.Counterparties)
	setAll(ParamGroupID, q.GroupIDs)
	if q.MatchStatus != "" {
		values.Set(ParamMatchStatus, q.MatchStatus)
	}
	if q.IncludeIgnored {
		values.Set(ParamIncludeIgnored, "true")
	}
	if q.SortAscending {
		values.Set(ParamSortAscending, "true")
	}
	return values
}

// IsZero reports whether the query filters nothing and sorts by default.
func (q Query) IsZero() bool {
	return q.FromTimestamp.IsZero() && q.ToTimestamp.IsZero() &&
		len(q.Assets) == 0 && len(q.Locations) == 0 &&
		len(q.EventTypes) == 0 && len(q.EventSubtypes) == 0 &&
		len(q.Counterparties) == 0 && len(q.GroupIDs) == 0 &&
		q.MatchStatus == "" && !q.IncludeIgnored && !q.SortAscending
}

// Summary renders a compact human-readable filter description for the
// status bar, empty when nothing filters.
func (q Query) Summary() string {
	var parts []string
	if len(q.Assets) > 0 {
		parts = append(parts, "asset="+strings.Join(q.Assets, ","))
	}
	if len(q.Locations) > 0 {
		parts = append(parts, "location="+strings.Join(q.Locations, ","))
	}
	if len(q.EventTypes) > 0 {
		parts = append(parts, "type="+strings.Join(q.EventTypes, ","))
	}
	if len(q.Counterparties) > 0 {
		parts = append(parts, "via="+strings.Join(q.Counterparties, ","))
	}
	if len(q.GroupIDs) > 0 {
		parts = append(parts, "group="+strings.Join(q.GroupIDs, ","))
	}
	if q.MatchStatus != "" {
		parts = append(parts, "match="+q.MatchStatus)
	}
	if !q.FromTimestamp.IsZero() {
		parts = append(parts, "from "+q.FromTimestamp.Format("2006-01-02"))
	}
	if !q.ToTimestamp.IsZero() {
		parts = append(parts, "to "+q.ToTimestamp.Format("2006-01-02"))
	}
	if q.IncludeIgnored {
		parts = append(parts, "+ignored")
	}
	return strings.Join(parts, " · ")
}
