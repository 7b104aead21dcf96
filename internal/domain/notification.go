package domain

import (
	"context"
	"time"
)

// Actor identifies who caused a state change.
type Actor string

const (
	ActorUser  Actor = "user"
	ActorAdmin Actor = "admin"
)

// StateChange describes a committed lifecycle transition.
type StateChange struct {
	EventID     int64      `json:"event_id"`
	Title       string     `json:"title"`
	InitiatorID int64      `json:"initiator_id"`
	From        EventState `json:"from,omitempty"`
	To          EventState `json:"to"`
	Actor       Actor      `json:"actor"`
	At          time.Time  `json:"at"`
}

// EventNotifier is told about state changes after they are committed.
type EventNotifier interface {
	NotifyStateChange(ctx context.Context, change StateChange) error
}
