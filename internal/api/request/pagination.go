package request

import (
	"net/http"
	"strconv"
)

// Pagination carries cursor paging for the listing endpoints (subscriptions,
// receipts, burns).
type Pagination struct {
	Limit  int
	Cursor string
}

const (
	DefaultLimit = 50
	MaxLimit     = 250
)

// ParsePagination reads limit and cursor from the query string. Missing or
// unusable limits fall back to DefaultLimit; oversized ones clamp to MaxLimit.
func ParsePagination(r *http.Request) Pagination {
	q := r.URL.Query()
	p := Pagination{
		Limit:  DefaultLimit,
		Cursor: q.Get("cursor"),
	}

	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}
