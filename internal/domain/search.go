package domain

import "time"

// SortOrder is an optional result ordering applied after counters are joined.
type SortOrder string

const (
	SortNone  SortOrder = ""
	SortViews SortOrder = "VIEWS"
	// SortEventDate is accepted for compatibility; the store's natural order is kept.
	SortEventDate SortOrder = "EVENT_DATE"
)

// ParseSortOrder returns the SortOrder for s or an invalid input error.
func ParseSortOrder(s string) (SortOrder, error) {
	switch so := SortOrder(s); so {
	case SortNone, SortViews, SortEventDate:
		return so, nil
	}
	return "", InvalidInputf("unknown sort %q", s)
}

// PublicSearchParam is a search over published events by anonymous callers.
type PublicSearchParam struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    *time.Time
	RangeEnd      *time.Time
	OnlyAvailable bool
	Sort          SortOrder
	Page          PageRequest
}

// AdminSearchParam is an unrestricted search used by moderators.
type AdminSearchParam struct {
	Users      []int64
	States     []EventState
	Categories []int64
	RangeStart *time.Time
	RangeEnd   *time.Time
	Page       PageRequest
}

// UserSearchParam lists the events proposed by one user.
type UserSearchParam struct {
	UserID int64
	Page   PageRequest
}
