package services

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"eventhub/internal/domain"
)

type statsService struct {
	hitRepo        domain.HitRepository
	originKey      []byte
	contextTimeout time.Duration
}

// NewStatsService returns the analytics service. originKey keys the hash that replaces
// client addresses before hits are stored; it must be at most 64 bytes.
func NewStatsService(hitRepo domain.HitRepository, originKey []byte, timeout time.Duration) (domain.StatsService, error) {
	if len(originKey) > blake2b.Size {
		return nil, fmt.Errorf("origin key longer than %d bytes", blake2b.Size)
	}
	return &statsService{hitRepo: hitRepo, originKey: originKey, contextTimeout: timeout}, nil
}

func (s *statsService) RecordHit(ctx context.Context, hit *domain.Hit) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if hit.App == "" || hit.URI == "" || hit.IP == "" {
		return domain.InvalidInputf("app, uri and ip are required")
	}
	origin, err := s.hashOrigin(hit.IP)
	if err != nil {
		return err
	}
	stored := *hit
	stored.IP = origin
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now().UTC()
	}
	if err := s.hitRepo.Save(ctx, &stored); err != nil {
		return fmt.Errorf("save hit: %w", err)
	}
	return nil
}

func (s *statsService) GetStats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if q.End.Before(q.Start) {
		return nil, domain.InvalidInputf("start %s is after end %s", q.Start.Format(time.DateTime), q.End.Format(time.DateTime))
	}
	stats, err := s.hitRepo.Stats(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	if stats == nil {
		stats = []*domain.ViewStats{}
	}
	return stats, nil
}

func (s *statsService) hashOrigin(ip string) (string, error) {
	h, err := blake2b.New256(s.originKey)
	if err != nil {
		return "", fmt.Errorf("origin hash: %w", err)
	}
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil)), nil
}
