package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"eventhub/internal/domain"
)

// Views are counted over a fixed window that covers every event the platform can hold.
var (
	viewsWindowStart = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	viewsWindowEnd   = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
)

// CounterPolicy decides what a join does when a counter cannot be fetched.
type CounterPolicy int

const (
	// CounterDegrade substitutes zero and flags the affected views.
	CounterDegrade CounterPolicy = iota
	// CounterStrict fails the request with domain.ErrDependencyUnavailable.
	CounterStrict
)

// Aggregator joins events with confirmed-request and view counters.
type Aggregator struct {
	participation domain.ParticipationCounter
	views         domain.ViewCounter
	timeout       time.Duration
	policy        CounterPolicy
	logger        *slog.Logger
}

// NewAggregator returns an Aggregator. timeout bounds each counter fetch; zero means
// only the caller's context applies.
func NewAggregator(participation domain.ParticipationCounter, views domain.ViewCounter, timeout time.Duration, policy CounterPolicy, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		participation: participation,
		views:         views,
		timeout:       timeout,
		policy:        policy,
		logger:        logger,
	}
}

// Join fetches both counters concurrently and returns one view per event, in input order.
func (a *Aggregator) Join(ctx context.Context, events []*domain.Event) ([]*domain.EventView, error) {
	out := make([]*domain.EventView, 0, len(events))
	if len(events) == 0 {
		return out, nil
	}
	ids := make([]int64, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	var (
		confirmed, views       map[int64]int64
		confirmedErr, viewsErr error
		g                      errgroup.Group
	)
	// Neither fetch cancels the other: under the degrade policy a failure of one
	// counter must not cost the other one its data.
	g.Go(func() error {
		fctx, cancel := a.fetchContext(ctx)
		defer cancel()
		confirmed, confirmedErr = a.participation.CountByStatus(fctx, ids, domain.RequestConfirmed)
		return nil
	})
	g.Go(func() error {
		fctx, cancel := a.fetchContext(ctx)
		defer cancel()
		views, viewsErr = a.views.CountViews(fctx, ids, viewsWindowStart, viewsWindowEnd, true)
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	degraded := false
	if confirmedErr != nil {
		if a.policy == CounterStrict {
			return nil, domain.Unavailablef(confirmedErr, "confirmed requests counter unavailable")
		}
		a.logger.WarnContext(ctx, "confirmed requests counter unavailable, using zero", "events", len(ids), "err", confirmedErr)
		degraded = true
	}
	if viewsErr != nil {
		if a.policy == CounterStrict {
			return nil, domain.Unavailablef(viewsErr, "views counter unavailable")
		}
		a.logger.WarnContext(ctx, "views counter unavailable, using zero", "events", len(ids), "err", viewsErr)
		degraded = true
	}

	for _, e := range events {
		out = append(out, &domain.EventView{
			Event:             *e,
			ConfirmedRequests: confirmed[e.ID],
			Views:             views[e.ID],
			CountersDegraded:  degraded,
		})
	}
	return out, nil
}

// JoinOne is Join for a single event.
func (a *Aggregator) JoinOne(ctx context.Context, e *domain.Event) (*domain.EventView, error) {
	views, err := a.Join(ctx, []*domain.Event{e})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (a *Aggregator) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// FilterAvailable drops views whose participant limit is reached. A limit of zero is unlimited.
func FilterAvailable(views []*domain.EventView) []*domain.EventView {
	out := make([]*domain.EventView, 0, len(views))
	for _, v := range views {
		if v.ParticipantLimit > 0 && v.ConfirmedRequests >= int64(v.ParticipantLimit) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SortByViews orders views ascending by view count, keeping store order among equals.
func SortByViews(views []*domain.EventView) {
	slices.SortStableFunc(views, func(a, b *domain.EventView) int {
		return cmp.Compare(a.Views, b.Views)
	})
}
