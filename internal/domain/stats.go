package domain

import (
	"context"
	"time"
)

// Hit is a single recorded access to an endpoint.
// swagger:model Hit
type Hit struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp time.Time `json:"timestamp"`
}

// ViewStats is the hit count of one uri.
// swagger:model ViewStats
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// StatsQuery selects hits in [Start, End], optionally restricted to URIs.
type StatsQuery struct {
	Start  time.Time
	End    time.Time
	URIs   []string
	Unique bool
}

// HitRepository stores hits. The IP of a saved hit is an origin hash, never a raw address.
type HitRepository interface {
	Save(ctx context.Context, hit *Hit) error
	Stats(ctx context.Context, q StatsQuery) ([]*ViewStats, error)
}

// HitRecorder records hits on behalf of a service.
type HitRecorder interface {
	RecordHit(ctx context.Context, hit *Hit) error
}

// StatsService defines the analytics service operations.
type StatsService interface {
	HitRecorder
	GetStats(ctx context.Context, q StatsQuery) ([]*ViewStats, error)
}
