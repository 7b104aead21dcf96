package services

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"eventhub/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeEventRepo is an in-memory EventRepository for tests. Modify works on a copy and
// stores it only when the callback succeeds.
type fakeEventRepo struct {
	mu      sync.Mutex
	byID    map[int64]*domain.Event
	nextID  int64
	saveErr error
	writes  int
	lastQ   domain.EventQuery
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{byID: make(map[int64]*domain.Event), nextID: 1}
	for _, e := range events {
		cp := *e
		f.byID[e.ID] = &cp
		f.nextID = max(f.nextID, e.ID+1)
	}
	return f
}

func (f *fakeEventRepo) Save(_ context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if e.ID == 0 {
		e.ID = f.nextID
		f.nextID++
	}
	cp := *e
	f.byID[e.ID] = &cp
	f.writes++
	return nil
}

func (f *fakeEventRepo) GetByID(_ context.Context, id int64) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEventRepo) GetByIDAndState(ctx context.Context, id int64, state domain.EventState) (*domain.Event, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.State != state {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) Modify(_ context.Context, id int64, fn func(e *domain.Event) error) (*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *stored
	if err := fn(&cp); err != nil {
		return nil, err
	}
	f.byID[id] = &cp
	f.writes++
	out := cp
	return &out, nil
}

func (f *fakeEventRepo) Query(_ context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQ = q
	var matched []*domain.Event
	for _, e := range f.byID {
		if q.Predicate.Match(e) {
			cp := *e
			matched = append(matched, &cp)
		}
	}
	slices.SortFunc(matched, func(a, b *domain.Event) int { return cmp.Compare(a.ID, b.ID) })
	if q.Page.From >= len(matched) {
		return nil, nil
	}
	matched = matched[q.Page.From:]
	if len(matched) > q.Page.Size {
		matched = matched[:q.Page.Size]
	}
	return matched, nil
}

func (f *fakeEventRepo) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageRequest) ([]*domain.Event, error) {
	return f.Query(ctx, domain.EventQuery{Predicate: domain.Predicate{}.And(domain.InitiatorIn(initiatorID)), Page: page})
}

// fakeCounter serves both counters from fixed maps.
type fakeCounter struct {
	counts map[int64]int64
	err    error
	delay  time.Duration
	calls  int
	mu     sync.Mutex
}

func (f *fakeCounter) fetch(ctx context.Context, ids []int64) (map[int64]int64, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[int64]int64)
	for _, id := range ids {
		if n, ok := f.counts[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (f *fakeCounter) CountByStatus(ctx context.Context, ids []int64, _ domain.RequestStatus) (map[int64]int64, error) {
	return f.fetch(ctx, ids)
}

func (f *fakeCounter) CountViews(ctx context.Context, ids []int64, _, _ time.Time, _ bool) (map[int64]int64, error) {
	return f.fetch(ctx, ids)
}

type fakeNotifier struct {
	changes []domain.StateChange
	err     error
}

func (f *fakeNotifier) NotifyStateChange(_ context.Context, change domain.StateChange) error {
	f.changes = append(f.changes, change)
	return f.err
}

type fakeWordRepo struct {
	words map[int64][]string
	err   error
}

func (f *fakeWordRepo) ListByEventID(_ context.Context, eventID int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.words[eventID]), nil
}

func (f *fakeWordRepo) Merge(_ context.Context, eventID int64, words []string) error {
	if f.err != nil {
		return f.err
	}
	if f.words == nil {
		f.words = make(map[int64][]string)
	}
	for _, w := range words {
		if !slices.Contains(f.words[eventID], w) {
			f.words[eventID] = append(f.words[eventID], w)
		}
	}
	return nil
}

type fakeHitRepo struct {
	saved []*domain.Hit
	stats []*domain.ViewStats
	lastQ domain.StatsQuery
	err   error
}

func (f *fakeHitRepo) Save(_ context.Context, hit *domain.Hit) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, hit)
	return nil
}

func (f *fakeHitRepo) Stats(_ context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	f.lastQ = q
	return f.stats, f.err
}
