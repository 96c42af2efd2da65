package ui

import "fmt"

// Zone ID constants for bubblezone hit detection.
// These are used both in render paths (zone.Mark) and input paths (zone.Get().InBounds).
const (
	ZoneTabTimeline  = "zone-tab-timeline"
	ZoneTabMovements = "zone-tab-movements"
	ZonePagerPrev    = "zone-pager-prev"
	ZonePagerNext    = "zone-pager-next"
)

// TabZoneIDs maps tab index to zone ID.
// Tab order: TimelineTab=0, MovementsTab=1.
var TabZoneIDs = [2]string{ZoneTabTimeline, ZoneTabMovements}

// MovementRowZoneID returns the zone ID for a movements pane row by its rows-slice index.
func MovementRowZoneID(idx int) string {
	return fmt.Sprintf("zone-movement-row-%d", idx)
}
