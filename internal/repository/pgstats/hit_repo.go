package pgstats

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"eventhub/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS hits (
	id BIGSERIAL PRIMARY KEY,
	app VARCHAR(255) NOT NULL,
	uri VARCHAR(512) NOT NULL,
	origin VARCHAR(128) NOT NULL,
	created TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS hits_uri_created_idx ON hits (uri, created);
`

// HitRepository stores hits in Postgres through a pgx pool.
type HitRepository struct {
	pool *pgxpool.Pool
}

// NewHitRepository returns a HitRepository over pool.
func NewHitRepository(pool *pgxpool.Pool) *HitRepository {
	return &HitRepository{pool: pool}
}

// EnsureSchema creates the hits table if it does not exist.
func (r *HitRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure hits schema: %w", err)
	}
	return nil
}

func (r *HitRepository) Save(ctx context.Context, hit *domain.Hit) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO hits (app, uri, origin, created) VALUES ($1, $2, $3, $4)`,
		hit.App, hit.URI, hit.IP, hit.Timestamp)
	if err != nil {
		return fmt.Errorf("insert hit: %w", err)
	}
	return nil
}

func (r *HitRepository) Stats(ctx context.Context, q domain.StatsQuery) ([]*domain.ViewStats, error) {
	query, args := statsQuery(q)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ViewStats
	for rows.Next() {
		var s domain.ViewStats
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// statsQuery builds the aggregate over [start, end]. Unique counting uses distinct origins.
func statsQuery(q domain.StatsQuery) (string, []any) {
	count := "COUNT(*)"
	if q.Unique {
		count = "COUNT(DISTINCT origin)"
	}
	cond := []string{"created >= $1", "created <= $2"}
	args := []any{q.Start, q.End}
	if len(q.URIs) > 0 {
		cond = append(cond, "uri = ANY($3)")
		args = append(args, q.URIs)
	}
	query := fmt.Sprintf(`
SELECT app, uri, %s::bigint AS hits
FROM hits
WHERE %s
GROUP BY app, uri
ORDER BY hits DESC, uri ASC`, count, strings.Join(cond, " AND "))
	return query, args
}
