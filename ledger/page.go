package ledger

// Limits are the selectable page sizes.
var Limits = []int{10, 25, 50, 100}

// DefaultLimit is used when no limit is configured or carried in the route.
const DefaultLimit = 25

// ValidLimit reports whether n is a selectable page size.
func ValidLimit(n int) bool {
	for _, l := range Limits {
		if n == l {
			return true
		}
	}
	return false
}

// NearestLimit clamps n to the closest selectable page size. Used for
// config and route input; ties resolve downward.
func NearestLimit(n int) int {
	best := Limits[0]
	for _, l := range Limits {
		if abs(n-l) < abs(n-best) {
			best = l
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Pagination owns the page window over the filtered group collection.
// Page is 1-based; Total counts groups matching the active filter.
type Pagination struct {
	Page  int
	Limit int
	Total int
}

// DefaultPagination starts at page one with the default limit.
func DefaultPagination() Pagination {
	return Pagination{Page: 1, Limit: DefaultLimit}
}

// TotalPages returns the page count, at least one.
func (p Pagination) TotalPages() int {
	if p.Total <= 0 || p.Limit <= 0 {
		return 1
	}
	pages := (p.Total + p.Limit - 1) / p.Limit
	if pages < 1 {
		pages = 1
	}
	return pages
}

// Offset returns the zero-based group offset of the page start.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ClampPage returns p with Page forced into [1, TotalPages].
func (p Pagination) ClampPage() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if max := p.TotalPages(); p.Page > max {
		p.Page = max
	}
	return p
}

// WithLimit returns p switched to the given page size, re-anchored so the
// first group of the old window stays inside the new one. Invalid sizes
// snap to the nearest selectable limit.
func (p Pagination) WithLimit(limit int) Pagination {
	if !ValidLimit(limit) {
		limit = NearestLimit(limit)
	}
	if limit == p.Limit {
		return p
	}
	first := p.Offset()
	p.Limit = limit
	p.Page = first/limit + 1
	return p.ClampPage()
}

// PageForPosition computes the 1-based page that contains the group at the
// given zero-based position: floor(position/limit) + 1. Position must be
// non-negative and limit positive; resolution never calls this for absent
// groups.
func PageForPosition(position, limit int) int {
	if limit <= 0 {
		return 1
	}
	return position/limit + 1
}
