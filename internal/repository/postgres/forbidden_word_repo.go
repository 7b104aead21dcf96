package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

type forbiddenWordRepository struct {
	DB *sql.DB
}

// NewForbiddenWordRepository returns a domain.ForbiddenWordRepository implemented with Postgres.
func NewForbiddenWordRepository(db *sql.DB) domain.ForbiddenWordRepository {
	return &forbiddenWordRepository{DB: db}
}

func (r *forbiddenWordRepository) ListByEventID(ctx context.Context, eventID int64) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT forbidden_word FROM comment_pre_moderation WHERE event_id = $1 ORDER BY forbidden_word`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := make([]string, 0)
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// Merge inserts the words that are not stored yet. Existing rows are never removed.
func (r *forbiddenWordRepository) Merge(ctx context.Context, eventID int64, words []string) error {
	if len(words) == 0 {
		return nil
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO comment_pre_moderation (event_id, forbidden_word)
		 SELECT $1, w FROM unnest($2::text[]) AS w
		 ON CONFLICT (event_id, forbidden_word) DO NOTHING`, eventID, pq.Array(words))
	return err
}
