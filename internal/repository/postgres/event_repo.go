package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventhub/internal/domain"
)

const eventColumns = `id, title, annotation, description, category_id, created_on, event_date, published_on,
	lat, lon, paid, participant_limit, request_moderation, initiator_id, state`

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var publishedNull sql.NullTime
	var state string
	err := row.Scan(
		&e.ID, &e.Title, &e.Annotation, &e.Description, &e.CategoryID, &e.CreatedOn, &e.EventDate, &publishedNull,
		&e.Location.Lat, &e.Location.Lon, &e.Paid, &e.ParticipantLimit, &e.RequestModeration, &e.InitiatorID, &state,
	)
	if err != nil {
		return nil, err
	}
	if publishedNull.Valid {
		e.PublishedOn = &publishedNull.Time
	}
	e.State = domain.EventState(state)
	return e, nil
}

func (r *eventRepository) Save(ctx context.Context, e *domain.Event) error {
	if e.ID == 0 {
		query := `
			INSERT INTO events (title, annotation, description, category_id, created_on, event_date, published_on,
				lat, lon, paid, participant_limit, request_moderation, initiator_id, state)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`
		err := r.DB.QueryRowContext(ctx, query,
			e.Title, e.Annotation, e.Description, e.CategoryID, e.CreatedOn, e.EventDate, e.PublishedOn,
			e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration, e.InitiatorID, string(e.State),
		).Scan(&e.ID)
		return translateWriteError(err, e)
	}
	return updateEvent(ctx, r.DB, e)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func updateEvent(ctx context.Context, db execer, e *domain.Event) error {
	query := `
		UPDATE events SET title = $1, annotation = $2, description = $3, category_id = $4, event_date = $5,
			published_on = $6, lat = $7, lon = $8, paid = $9, participant_limit = $10, request_moderation = $11,
			state = $12
		WHERE id = $13
	`
	result, err := db.ExecContext(ctx, query,
		e.Title, e.Annotation, e.Description, e.CategoryID, e.EventDate,
		e.PublishedOn, e.Location.Lat, e.Location.Lon, e.Paid, e.ParticipantLimit, e.RequestModeration,
		string(e.State), e.ID,
	)
	if err != nil {
		return translateWriteError(err, e)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByIDAndState(ctx context.Context, id int64, state domain.EventState) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 AND state = $2`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id, string(state)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Modify(ctx context.Context, id int64, fn func(e *domain.Event) error) (*domain.Event, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1 FOR UPDATE`
	e, err := scanEvent(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := updateEvent(ctx, tx, e); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

func (r *eventRepository) Query(ctx context.Context, q domain.EventQuery) ([]*domain.Event, error) {
	where, args := whereClause(q.Predicate)
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM events %s ORDER BY id LIMIT $%d OFFSET $%d`, eventColumns, where, n+1, n+2)
	args = append(args, q.Page.Size, q.Page.From)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page domain.PageRequest) ([]*domain.Event, error) {
	return r.Query(ctx, domain.EventQuery{
		Predicate: domain.Predicate{}.And(domain.InitiatorIn(initiatorID)),
		Page:      page,
	})
}

// whereClause renders p as a parameterized WHERE clause starting at $1. An empty
// predicate renders as an empty string.
func whereClause(p domain.Predicate) (string, []any) {
	conds := p.Conditions()
	if len(conds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(conds))
	args := make([]any, 0, len(conds))
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	for _, c := range conds {
		switch c.Field {
		case domain.FieldState:
			states, _ := c.Value.([]domain.EventState)
			codes := make([]string, len(states))
			for i, s := range states {
				codes[i] = string(s)
			}
			clauses = append(clauses, "state = ANY("+next(pq.Array(codes))+")")
		case domain.FieldCategory:
			ids, _ := c.Value.([]int64)
			clauses = append(clauses, "category_id = ANY("+next(pq.Array(ids))+")")
		case domain.FieldInitiator:
			ids, _ := c.Value.([]int64)
			clauses = append(clauses, "initiator_id = ANY("+next(pq.Array(ids))+")")
		case domain.FieldPaid:
			clauses = append(clauses, "paid = "+next(c.Value))
		case domain.FieldEventDate:
			op := ">="
			if c.Op == domain.OpLTE {
				op = "<="
			}
			clauses = append(clauses, "event_date "+op+" "+next(c.Value))
		case domain.FieldText:
			text, _ := c.Value.(string)
			ph := next("%" + escapeLike(text) + "%")
			clauses = append(clauses, "(annotation ILIKE "+ph+" OR description ILIKE "+ph+")")
		default:
			clauses = append(clauses, "FALSE")
		}
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// translateWriteError maps a missing category reference to a not found error.
func translateWriteError(err error, e *domain.Event) error {
	if isForeignKeyViolation(err) {
		return domain.NotFoundf("category with id=%d was not found", e.CategoryID)
	}
	return err
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
