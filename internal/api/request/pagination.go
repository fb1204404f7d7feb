package request

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Pagination is the limit/cursor pair shared by the backup job, log entry,
// and restore operation listings.
type Pagination struct {
	Limit  int
	Cursor string
}

// ParsePagination reads the limit and cursor query parameters. A missing or
// unparsable limit falls back to DefaultLimit; anything above MaxLimit is
// clamped.
func ParsePagination(r *http.Request) Pagination {
	p := Pagination{
		Limit:  DefaultLimit,
		Cursor: r.URL.Query().Get("cursor"),
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			p.Limit = limit
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	return p
}
