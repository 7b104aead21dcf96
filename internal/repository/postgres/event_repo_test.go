package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"eventhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventColumnNames = []string{"id", "title", "annotation", "description", "category_id", "created_on", "event_date",
	"published_on", "lat", "lon", "paid", "participant_limit", "request_moderation", "initiator_id", "state"}

var (
	createdOn = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
	eventDate = time.Date(2030, 2, 1, 19, 0, 0, 0, time.UTC)
)

func addEventRow(rows *sqlmock.Rows, id int64, state domain.EventState) *sqlmock.Rows {
	return rows.AddRow(id, "Jazz night", "An evening of jazz standards", "Long description", int64(3), createdOn, eventDate,
		nil, 55.75, 37.61, false, 10, true, int64(7), string(state))
}

func TestEventRepository_SaveInsert(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  int64
		wantErr error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, annotation, description, category_id`).
					WithArgs("Jazz night", "An evening of jazz standards", "Long description", int64(3), createdOn, eventDate,
						sqlmock.AnyArg(), 55.75, 37.61, false, 10, true, int64(7), "PENDING").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
			},
			wantID: 42,
		},
		{
			name: "unknown category",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: sql.ErrConnDone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			e := &domain.Event{
				Title: "Jazz night", Annotation: "An evening of jazz standards", Description: "Long description",
				CategoryID: 3, CreatedOn: createdOn, EventDate: eventDate, Location: domain.Location{Lat: 55.75, Lon: 37.61},
				ParticipantLimit: 10, RequestModeration: true, InitiatorID: 7, State: domain.StatePending,
			}
			err = repo.Save(ctx, e)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, e.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      int64
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success",
			id:   5,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, annotation`).
					WithArgs(int64(5)).
					WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), 5, domain.StatePending))
			},
		},
		{
			name: "not found",
			id:   404,
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, title, annotation`).
					WithArgs(int64(404)).
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			got, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrNotFound)
				require.Nil(t, got)
				require.NoError(t, mock.ExpectationsWereMet())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, got.ID)
			assert.Equal(t, domain.StatePending, got.State)
			assert.Equal(t, domain.Location{Lat: 55.75, Lon: 37.61}, got.Location)
			assert.Nil(t, got.PublishedOn)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByIDAndState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events WHERE id = \$1 AND state = \$2`).
		WithArgs(int64(5), "PUBLISHED").
		WillReturnError(sql.ErrNoRows)

	_, err = NewEventRepository(db).GetByIDAndState(context.Background(), 5, domain.StatePublished)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Modify(t *testing.T) {
	ctx := context.Background()

	t.Run("applies callback in a locked transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(5)).
			WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), 5, domain.StatePending))
		mock.ExpectExec(`UPDATE events SET title = \$1`).
			WithArgs("Jazz night", "An evening of jazz standards", "Long description", int64(3), eventDate,
				sqlmock.AnyArg(), 55.75, 37.61, false, 10, true, "CANCELED", int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		got, err := NewEventRepository(db).Modify(ctx, 5, func(e *domain.Event) error {
			e.State = domain.StateCanceled
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StateCanceled, got.State)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error rolls back without writing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).
			WithArgs(int64(5)).
			WillReturnRows(addEventRow(sqlmock.NewRows(eventColumnNames), 5, domain.StatePublished))
		mock.ExpectRollback()

		rejected := domain.Conflictf("event with id=5 is already published")
		_, err = NewEventRepository(db).Modify(ctx, 5, func(e *domain.Event) error {
			return rejected
		})
		require.True(t, errors.Is(err, domain.ErrConflict))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`FOR UPDATE`).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		called := false
		_, err = NewEventRepository(db).Modify(ctx, 9, func(e *domain.Event) error {
			called = true
			return nil
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.False(t, called)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Query(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM events WHERE state = ANY\(\$1\) AND event_date >= \$2 ORDER BY id LIMIT \$3 OFFSET \$4`).
		WithArgs(pq.Array([]string{"PUBLISHED"}), from, 10, 20).
		WillReturnRows(addEventRow(addEventRow(sqlmock.NewRows(eventColumnNames), 1, domain.StatePublished), 2, domain.StatePublished))

	got, err := NewEventRepository(db).Query(context.Background(), domain.EventQuery{
		Predicate: domain.Predicate{}.And(domain.StateIn(domain.StatePublished), domain.EventDateFrom(from)),
		Page:      domain.PageRequest{From: 20, Size: 10},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_QueryWithoutConditions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM events ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(5, 0).
		WillReturnRows(sqlmock.NewRows(eventColumnNames))

	got, err := NewEventRepository(db).Query(context.Background(), domain.EventQuery{Page: domain.PageRequest{Size: 5}})
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWhereClause(t *testing.T) {
	paid := domain.Predicate{}.And(
		domain.InitiatorIn(1, 2),
		domain.CategoryIn(3),
		domain.PaidIs(true),
		domain.EventDateTo(eventDate),
		domain.TextContains("50%_off"),
	)

	where, args := whereClause(paid)

	assert.Equal(t, "WHERE initiator_id = ANY($1) AND category_id = ANY($2) AND paid = $3 AND event_date <= $4"+
		" AND (annotation ILIKE $5 OR description ILIKE $5)", where)
	require.Len(t, args, 5)
	assert.Equal(t, true, args[2])
	assert.Equal(t, eventDate, args[3])
	assert.Equal(t, `%50\%\_off%`, args[4])

	where, args = whereClause(domain.Predicate{})
	assert.Empty(t, where)
	assert.Empty(t, args)
}
