// Package recurringrepo manages repository layer of recurring transactions.
package recurringrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/entryrepo"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates recurring transaction repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewRepoPGS returns recurring RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

// NewTxRepoPGS returns recurring RepoPGS bound to db, usually a transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const recurringColumns = `
	id, owner, account_id, name, amount, entry_type, description, frequency,
	start_date, end_date, last_processed, is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecurring(row scanner) (domain.Recurring, error) {
	var (
		r                      domain.Recurring
		endDate, lastProcessed sql.NullTime
	)

	err := row.Scan(
		&r.ID,
		&r.Owner,
		&r.AccountID,
		&r.Name,
		&r.Amount,
		&r.EntryType,
		&r.Description,
		&r.Frequency,
		&r.StartDate,
		&endDate,
		&lastProcessed,
		&r.IsActive,
		&r.CreatedAt,
	)

	if endDate.Valid {
		r.EndDate = &endDate.Time
	}

	if lastProcessed.Valid {
		r.LastProcessed = &lastProcessed.Time
	}

	return r, err
}

const createQuery = `
INSERT INTO recurring_transactions (
    owner, account_id, name, amount, entry_type, description, frequency, start_date, end_date
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
) RETURNING` + recurringColumns

// Create creates the schedule and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateRecurringParams) (domain.Recurring, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.AccountID,
		arg.Name,
		arg.Amount,
		arg.EntryType,
		arg.Description,
		arg.Frequency,
		arg.StartDate,
		arg.EndDate,
	)

	rec, err := scanRecurring(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "recurring_transactions_account_id_fkey":
				return domain.Recurring{}, domain.ErrAccountNotFound
			case "recurring_transactions_amount_check":
				return domain.Recurring{}, domain.ErrNegativeAmount
			case "recurring_transactions_frequency_check":
				return domain.Recurring{}, domain.ErrInvalidFrequency
			}
		}

		return domain.Recurring{}, errorspkg.ErrInternal
	}

	return rec, nil
}

const listQuery = `SELECT` + recurringColumns + `
FROM recurring_transactions
WHERE owner = $1 AND is_active
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the active schedules of the owner.
func (r *RepoPGS) List(ctx context.Context, owner uuid.UUID, arg domain.ListParams) ([]domain.Recurring, error) {
	return r.list(ctx, listQuery, owner, arg.Limit, arg.Offset)
}

const listActiveQuery = `SELECT` + recurringColumns + `
FROM recurring_transactions
WHERE is_active
    AND start_date <= $1
    AND (end_date IS NULL OR end_date >= $1)
ORDER BY id
`

// ListActive returns the schedules of all owners running on day.
func (r *RepoPGS) ListActive(ctx context.Context, day time.Time) ([]domain.Recurring, error) {
	return r.list(ctx, listActiveQuery, day)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Recurring, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Recurring{}

	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, rec)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const insertRunQuery = `
INSERT INTO recurring_runs (recurring_id, period, entry_id)
VALUES ($1, $2, $3)
`

const markProcessedQuery = `
UPDATE recurring_transactions
SET last_processed = $2
WHERE id = $1
`

// Materialize books the schedule's entry for day, records the run and moves last_processed
// in one transaction. A second run for the same schedule and day returns ErrAlreadyProcessed
// and changes nothing.
func (r *RepoPGS) Materialize(ctx context.Context, rec domain.Recurring, day time.Time) (domain.AccountTxResult, error) {
	var result domain.AccountTxResult

	arg := rec.EntryFor(day)

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		var err error

		result, err = entryrepo.NewTxRepoPGS(tx).Apply(ctx, arg)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, insertRunQuery, rec.ID, arg.Date, result.Entry.ID); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
				return domain.ErrAlreadyProcessed
			}

			zerolog.Ctx(ctx).Error().Err(err).Send()

			return errorspkg.ErrInternal
		}

		if _, err := tx.ExecContext(ctx, markProcessedQuery, rec.ID, arg.Date); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Send()
			return errorspkg.ErrInternal
		}

		return nil
	})

	return result, err
}
