package request

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/djcafe/cafe/internal/core"
)

// Pagination holds parsed pagination parameters.
type Pagination struct {
	Limit  int
	Cursor string
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ParsePagination extracts limit and cursor from query parameters.
func ParsePagination(r *http.Request) Pagination {
	return Pagination{
		Limit:  ParseLimit(r, DefaultLimit, MaxLimit),
		Cursor: r.URL.Query().Get("cursor"),
	}
}

// ParseLimit reads the limit parameter. Missing or invalid values give def;
// values above max are capped.
func ParseLimit(r *http.Request, def, max int) int {
	limit := def
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

// ParseProductFilter reads category, available, search and pagination. The
// cursor must be a product ID.
func ParseProductFilter(r *http.Request) (core.ProductFilter, error) {
	q := r.URL.Query()
	pg := ParsePagination(r)
	f := core.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Limit:    pg.Limit,
		Cursor:   pg.Cursor,
	}
	if f.Cursor != "" {
		if _, err := uuid.Parse(f.Cursor); err != nil {
			return f, fmt.Errorf("invalid cursor %q", f.Cursor)
		}
	}
	if s := q.Get("available"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("invalid available value %q", s)
		}
		f.Available = &b
	}
	return f, nil
}

// ParseSince reads an RFC 3339 "since" parameter, defaulting to fallback.
func ParseSince(r *http.Request, fallback time.Time) (time.Time, error) {
	s := r.URL.Query().Get("since")
	if s == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since value %q: expected RFC 3339", s)
	}
	return t, nil
}
