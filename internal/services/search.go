package services

import (
	"time"

	"eventhub/internal/domain"
)

// BuildPublicQuery translates a public search into a store query. Only published events
// match, and events dated before now are excluded unless RangeStart is given.
func BuildPublicQuery(p domain.PublicSearchParam, now time.Time) (domain.EventQuery, error) {
	if err := validateRange(p.RangeStart, p.RangeEnd); err != nil {
		return domain.EventQuery{}, err
	}
	pred := domain.Predicate{}.And(domain.StateIn(domain.StatePublished))
	if p.Text != "" {
		pred = pred.And(domain.TextContains(p.Text))
	}
	if len(p.Categories) > 0 {
		pred = pred.And(domain.CategoryIn(p.Categories...))
	}
	if p.Paid != nil {
		pred = pred.And(domain.PaidIs(*p.Paid))
	}
	start := now
	if p.RangeStart != nil {
		start = *p.RangeStart
	}
	pred = pred.And(domain.EventDateFrom(start))
	if p.RangeEnd != nil {
		pred = pred.And(domain.EventDateTo(*p.RangeEnd))
	}
	return domain.EventQuery{Predicate: pred, Page: p.Page}, nil
}

// BuildAdminQuery translates a moderator search into a store query. No state is implied.
func BuildAdminQuery(p domain.AdminSearchParam) (domain.EventQuery, error) {
	if err := validateRange(p.RangeStart, p.RangeEnd); err != nil {
		return domain.EventQuery{}, err
	}
	var pred domain.Predicate
	if len(p.Users) > 0 {
		pred = pred.And(domain.InitiatorIn(p.Users...))
	}
	if len(p.States) > 0 {
		pred = pred.And(domain.StateIn(p.States...))
	}
	if len(p.Categories) > 0 {
		pred = pred.And(domain.CategoryIn(p.Categories...))
	}
	if p.RangeStart != nil {
		pred = pred.And(domain.EventDateFrom(*p.RangeStart))
	}
	if p.RangeEnd != nil {
		pred = pred.And(domain.EventDateTo(*p.RangeEnd))
	}
	return domain.EventQuery{Predicate: pred, Page: p.Page}, nil
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return domain.InvalidInputf("rangeStart %s is after rangeEnd %s",
			start.Format(time.DateTime), end.Format(time.DateTime))
	}
	return nil
}
