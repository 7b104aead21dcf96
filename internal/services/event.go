package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventhub/internal/clock"
	"eventhub/internal/domain"
)

// publishLeadTime is how long before its start an event may still be moderated.
const publishLeadTime = time.Hour

type eventService struct {
	eventRepo      domain.EventRepository
	join           *Aggregator
	notifier       domain.EventNotifier
	clock          clock.Clock
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService wires the lifecycle engine and the read paths. notifier may be nil.
func NewEventService(eventRepo domain.EventRepository,
	join *Aggregator,
	notifier domain.EventNotifier,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		join:           join,
		notifier:       notifier,
		clock:          clk,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) ProposeEvent(ctx context.Context, draft *domain.NewEvent, initiatorID int64) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event := draft.ToEvent(initiatorID, s.clock.Now())
	if err := s.eventRepo.Save(ctx, event); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("category with id=%d was not found", draft.CategoryID)
		}
		return nil, fmt.Errorf("save event: %w", err)
	}
	s.notify(ctx, domain.StateChange{
		EventID:     event.ID,
		Title:       event.Title,
		InitiatorID: event.InitiatorID,
		To:          domain.StatePending,
		Actor:       domain.ActorUser,
		At:          event.CreatedOn,
	})
	// A new event has no requests and no hits yet.
	return &domain.EventView{Event: *event}, nil
}

func (s *eventService) UpdateByUser(ctx context.Context, eventID, initiatorID int64, upd *domain.UserEventUpdate) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var from domain.EventState
	updated, err := s.eventRepo.Modify(ctx, eventID, func(e *domain.Event) error {
		if e.InitiatorID != initiatorID {
			return domain.Conflictf("event with id=%d was not added by user with id=%d", eventID, initiatorID)
		}
		if e.State == domain.StatePublished {
			return domain.Conflictf("event with id=%d is already published and cannot be changed", eventID)
		}
		from = e.State
		upd.ApplyTo(e)
		switch upd.StateAction {
		case domain.ActionCancelReview:
			e.State = domain.StateCanceled
		case domain.ActionSendToReview:
			e.State = domain.StatePending
		}
		return nil
	})
	if err != nil {
		return nil, s.mapModifyError(err, eventID)
	}
	if updated.State != from {
		s.notify(ctx, domain.StateChange{
			EventID:     updated.ID,
			Title:       updated.Title,
			InitiatorID: updated.InitiatorID,
			From:        from,
			To:          updated.State,
			Actor:       domain.ActorUser,
			At:          s.clock.Now(),
		})
	}
	return s.join.JoinOne(ctx, updated)
}

func (s *eventService) UpdateByAdmin(ctx context.Context, eventID int64, upd *domain.AdminEventUpdate) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.clock.Now()
	var from domain.EventState
	updated, err := s.eventRepo.Modify(ctx, eventID, func(e *domain.Event) error {
		if upd.StateAction == domain.ActionPublish && e.State != domain.StatePending {
			return domain.Conflictf("cannot publish event with id=%d because it is not in the right state: %s", eventID, e.State)
		}
		if upd.StateAction == domain.ActionReject && e.State == domain.StatePublished {
			return domain.Conflictf("cannot reject event with id=%d because it is already %s", eventID, e.State)
		}
		// The stored date decides, before the patch is applied.
		if e.EventDate.Before(now.Add(publishLeadTime)) {
			return domain.Conflictf("event with id=%d starts at %s, less than %s from now; too late to change it",
				eventID, e.EventDate.Format(time.DateTime), publishLeadTime)
		}
		from = e.State
		upd.ApplyTo(e)
		switch upd.StateAction {
		case domain.ActionPublish:
			e.State = domain.StatePublished
			e.PublishedOn = &now
		case domain.ActionReject:
			e.State = domain.StateCanceled
		}
		return nil
	})
	if err != nil {
		return nil, s.mapModifyError(err, eventID)
	}
	if updated.State != from {
		s.notify(ctx, domain.StateChange{
			EventID:     updated.ID,
			Title:       updated.Title,
			InitiatorID: updated.InitiatorID,
			From:        from,
			To:          updated.State,
			Actor:       domain.ActorAdmin,
			At:          now,
		})
	}
	return s.join.JoinOne(ctx, updated)
}

func (s *eventService) Search(ctx context.Context, param domain.PublicSearchParam) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := param.Page.Validate(); err != nil {
		return nil, err
	}
	q, err := BuildPublicQuery(param, s.clock.Now())
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	views, err := s.join.Join(ctx, events)
	if err != nil {
		return nil, err
	}
	if param.OnlyAvailable {
		views = FilterAvailable(views)
	}
	if param.Sort == domain.SortViews {
		SortByViews(views)
	}
	return views, nil
}

func (s *eventService) SearchAdmin(ctx context.Context, param domain.AdminSearchParam) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := param.Page.Validate(); err != nil {
		return nil, err
	}
	q, err := BuildAdminQuery(param)
	if err != nil {
		return nil, err
	}
	events, err := s.eventRepo.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	if len(events) > param.Page.Size {
		events = events[:param.Page.Size]
	}
	return s.join.Join(ctx, events)
}

func (s *eventService) ListByInitiator(ctx context.Context, param domain.UserSearchParam) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := param.Page.Validate(); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByInitiator(ctx, param.UserID, param.Page)
	if err != nil {
		return nil, fmt.Errorf("list events of user %d: %w", param.UserID, err)
	}
	return s.join.Join(ctx, events)
}

func (s *eventService) GetPublished(ctx context.Context, id int64) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByIDAndState(ctx, id, domain.StatePublished)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("event with id=%d was not found or is not published", id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.join.JoinOne(ctx, event)
}

func (s *eventService) GetForOwner(ctx context.Context, eventID, userID int64) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFoundf("event with id=%d was not found", eventID)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.InitiatorID != userID {
		return nil, domain.Conflictf("event with id=%d was not added by user with id=%d", eventID, userID)
	}
	return s.join.JoinOne(ctx, event)
}

// mapModifyError keeps lifecycle errors from the modify callback and names the event
// when the store reports a missing row.
func (s *eventService) mapModifyError(err error, eventID int64) error {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return err
	}
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NotFoundf("event with id=%d was not found", eventID)
	}
	return fmt.Errorf("modify event %d: %w", eventID, err)
}

// notify reports a committed change. Notification failures never fail the request.
func (s *eventService) notify(ctx context.Context, change domain.StateChange) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyStateChange(ctx, change); err != nil {
		s.logger.WarnContext(ctx, "state change notification failed",
			"event_id", change.EventID, "to", change.To, "err", err)
	}
}
