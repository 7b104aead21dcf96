package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type participationRepository struct {
	DB *sql.DB
}

// NewParticipationRepository returns a domain.ParticipationCounter over the participation_requests table.
func NewParticipationRepository(db *sql.DB) domain.ParticipationCounter {
	return &participationRepository{DB: db}
}

func (r *participationRepository) CountByStatus(ctx context.Context, eventIDs []int64, status domain.RequestStatus) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT event_id, COUNT(*) FROM participation_requests
		 WHERE event_id = ANY($1) AND status = $2
		 GROUP BY event_id`, pq.Array(eventIDs), string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, n int64
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
