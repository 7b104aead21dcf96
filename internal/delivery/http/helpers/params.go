package helpers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// DateTimeLayout is the date-time format used on the wire.
const DateTimeLayout = time.DateTime

// PathID parses the named path value as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	s := r.PathValue(name)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInputf("%s must be a positive integer, got %q", name, s)
	}
	return id, nil
}

// QueryIDs reads a repeated or comma separated list of int64 values.
func QueryIDs(r *http.Request, name string) ([]int64, error) {
	var ids []int64
	for _, raw := range queryList(r, name) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.InvalidInputf("%s must contain integers, got %q", name, raw)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// QueryStrings reads a repeated or comma separated list of strings.
func QueryStrings(r *http.Request, name string) []string {
	return queryList(r, name)
}

func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// QueryTime parses an optional DateTimeLayout value as UTC. A missing value yields nil.
func QueryTime(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return nil, domain.InvalidInputf("%s must use format %q, got %q", name, DateTimeLayout, s)
	}
	return &t, nil
}

// QueryBool parses an optional boolean. A missing value yields nil.
func QueryBool(r *http.Request, name string) (*bool, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, domain.InvalidInputf("%s must be true or false, got %q", name, s)
	}
	return &b, nil
}

// DateTime is a time.Time encoded with DateTimeLayout in JSON.
type DateTime struct {
	time.Time
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.UTC().Format(DateTimeLayout))), nil
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return domain.InvalidInputf("date-time must be a string in format %q", DateTimeLayout)
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, time.UTC)
	if err != nil {
		return domain.InvalidInputf("date-time must use format %q, got %q", DateTimeLayout, s)
	}
	d.Time = t
	return nil
}

// NewDateTime returns a pointer to t as a DateTime, or nil when t is nil.
func NewDateTime(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	return &DateTime{Time: *t}
}
