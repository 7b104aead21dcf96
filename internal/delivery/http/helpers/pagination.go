package helpers

import (
	"net/http"
	"strconv"

	"eventhub/internal/domain"
)

// Pagination query parameter defaults.
const (
	DefaultFrom = 0
	DefaultSize = 10
	MaxSize     = 1000
)

// ParsePage reads from and size from the query string. Missing values fall back to
// defaults; malformed or out of range values are reported as invalid input.
func ParsePage(r *http.Request) (domain.PageRequest, error) {
	page := domain.PageRequest{From: DefaultFrom, Size: DefaultSize}
	q := r.URL.Query()
	if s := q.Get("from"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return page, domain.InvalidInputf("from must be an integer, got %q", s)
		}
		page.From = v
	}
	if s := q.Get("size"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return page, domain.InvalidInputf("size must be an integer, got %q", s)
		}
		page.Size = min(v, MaxSize)
	}
	if err := page.Validate(); err != nil {
		return page, err
	}
	return page, nil
}
