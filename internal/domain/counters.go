package domain

import (
	"context"
	"time"
)

// RequestStatus is the status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// ParticipationCounter counts participation requests per event.
// Ids without requests are absent from the result.
type ParticipationCounter interface {
	CountByStatus(ctx context.Context, eventIDs []int64, status RequestStatus) (map[int64]int64, error)
}

// ViewCounter counts page-view hits per event within [start, end].
// With unique set, repeated hits from one origin are counted once.
// Ids without hits are absent from the result.
type ViewCounter interface {
	CountViews(ctx context.Context, eventIDs []int64, start, end time.Time, unique bool) (map[int64]int64, error)
}
