package domain

import (
	"context"
	"time"
)

// EventState is the moderation state of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

// ParseEventState returns the EventState for s or an invalid input error.
func ParseEventState(s string) (EventState, error) {
	switch st := EventState(s); st {
	case StatePending, StatePublished, StateCanceled:
		return st, nil
	}
	return "", InvalidInputf("unknown event state %q", s)
}

// Location is a geographic point.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Event is a happening proposed by a user and moderated by administrators.
// swagger:model Event
type Event struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Annotation        string     `json:"annotation"`
	Description       string     `json:"description"`
	CategoryID        int64      `json:"category"`
	CreatedOn         time.Time  `json:"createdOn"`
	EventDate         time.Time  `json:"eventDate"`
	PublishedOn       *time.Time `json:"publishedOn,omitempty"`
	Location          Location   `json:"location"`
	Paid              bool       `json:"paid"`
	ParticipantLimit  int        `json:"participantLimit"`
	RequestModeration bool       `json:"requestModeration"`
	InitiatorID       int64      `json:"initiator"`
	State             EventState `json:"state"`
}

// NewEvent is a user-submitted draft.
type NewEvent struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	EventDate         time.Time
	Location          Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
}

// ToEvent builds a PENDING Event owned by initiatorID. ID is set by the repository on save.
func (d *NewEvent) ToEvent(initiatorID int64, createdOn time.Time) *Event {
	return &Event{
		Title:             d.Title,
		Annotation:        d.Annotation,
		Description:       d.Description,
		CategoryID:        d.CategoryID,
		CreatedOn:         createdOn,
		EventDate:         d.EventDate,
		Location:          d.Location,
		Paid:              d.Paid,
		ParticipantLimit:  d.ParticipantLimit,
		RequestModeration: d.RequestModeration,
		InitiatorID:       initiatorID,
		State:             StatePending,
	}
}

// EventPatch holds optional field changes. Nil fields are left untouched.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	EventDate         *time.Time
	Location          *Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
}

// ApplyTo copies the non-nil fields of p onto e.
func (p *EventPatch) ApplyTo(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Annotation != nil {
		e.Annotation = *p.Annotation
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.CategoryID != nil {
		e.CategoryID = *p.CategoryID
	}
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Paid != nil {
		e.Paid = *p.Paid
	}
	if p.ParticipantLimit != nil {
		e.ParticipantLimit = *p.ParticipantLimit
	}
	if p.RequestModeration != nil {
		e.RequestModeration = *p.RequestModeration
	}
}

// UserStateAction is a state change an initiator may request.
type UserStateAction string

const (
	ActionSendToReview UserStateAction = "SEND_TO_REVIEW"
	ActionCancelReview UserStateAction = "CANCEL_REVIEW"
)

// AdminStateAction is a moderation decision.
type AdminStateAction string

const (
	ActionPublish AdminStateAction = "PUBLISH_EVENT"
	ActionReject  AdminStateAction = "REJECT_EVENT"
)

// UserEventUpdate is an initiator's edit. An empty StateAction keeps the state.
type UserEventUpdate struct {
	EventPatch
	StateAction UserStateAction
}

// AdminEventUpdate is an administrator's edit. An empty StateAction keeps the state.
type AdminEventUpdate struct {
	EventPatch
	StateAction AdminStateAction
}

// EventView is an Event joined with its externally owned counters. It is never persisted.
// swagger:model EventView
type EventView struct {
	Event
	ConfirmedRequests int64 `json:"confirmedRequests"`
	Views             int64 `json:"views"`
	// CountersDegraded is set when a counter could not be fetched and zero was substituted.
	CountersDegraded bool `json:"-"`
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// Save inserts e when e.ID is zero and updates it otherwise. The stored row is written back into e.
	Save(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	GetByIDAndState(ctx context.Context, id int64, state EventState) (*Event, error)
	// Modify loads the event under a row lock, calls fn and persists the result in the same
	// transaction. Nothing is written when fn returns an error.
	Modify(ctx context.Context, id int64, fn func(e *Event) error) (*Event, error)
	Query(ctx context.Context, q EventQuery) ([]*Event, error)
	ListByInitiator(ctx context.Context, initiatorID int64, page PageRequest) ([]*Event, error)
}

// EventService defines the event lifecycle and read operations.
type EventService interface {
	ProposeEvent(ctx context.Context, draft *NewEvent, initiatorID int64) (*EventView, error)
	UpdateByUser(ctx context.Context, eventID, initiatorID int64, upd *UserEventUpdate) (*EventView, error)
	UpdateByAdmin(ctx context.Context, eventID int64, upd *AdminEventUpdate) (*EventView, error)
	Search(ctx context.Context, param PublicSearchParam) ([]*EventView, error)
	SearchAdmin(ctx context.Context, param AdminSearchParam) ([]*EventView, error)
	ListByInitiator(ctx context.Context, param UserSearchParam) ([]*EventView, error)
	GetPublished(ctx context.Context, id int64) (*EventView, error)
	GetForOwner(ctx context.Context, eventID, userID int64) (*EventView, error)
}
