// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const accountColumns = `
	id, owner, name, account_number, bank_name, balance, is_active, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var a domain.Account

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Name,
		&a.AccountNumber,
		&a.BankName,
		&a.Balance,
		&a.IsActive,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	return a, err
}

const addBalanceQuery = `
UPDATE accounts
SET balance = balance + $1, updated_at = now()
WHERE id = $2
RETURNING` + accountColumns

// AddBalance changes the account's balance and returns the changed account.
func (r *RepoPGS) AddBalance(ctx context.Context, amount decimal.Decimal, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, addBalanceQuery, amount, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrTransient
	}

	return a, nil
}

const createQuery = `
INSERT INTO 
    accounts (owner, name, account_number, bank_name)
VALUES
    ($1, $2, $3, $4)
RETURNING` + accountColumns

// Create creates the account with zero balance and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, arg.Owner, arg.Name, arg.AccountNumber, arg.BankName)

	a, err := scanAccount(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "accounts_owner_fkey":
				return domain.Account{}, domain.ErrOwnerNotFound
			case "accounts_account_number_key":
				return domain.Account{}, domain.ErrAccountNumberExists
			}
		}

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const softDeleteQuery = `
UPDATE accounts
SET is_active = false, updated_at = now()
WHERE id = $1 AND is_active
`

// SoftDelete deactivates the account. Its entries and transfers stay.
func (r *RepoPGS) SoftDelete(ctx context.Context, id int64) error {
	return r.exec(ctx, softDeleteQuery, id)
}

const purgeQuery = `
DELETE FROM accounts
WHERE id = $1
`

// Purge removes the account together with its entries, transfers and schedules.
func (r *RepoPGS) Purge(ctx context.Context, id int64) error {
	return r.exec(ctx, purgeQuery, id)
}

func (r *RepoPGS) exec(ctx context.Context, query string, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const getQuery = `SELECT` + accountColumns + `
FROM accounts
WHERE id = $1
`

// Get returns the account with the given id, active or not.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Account, error) {
	return r.get(ctx, getQuery, id)
}

const getForUpdateQuery = getQuery + `FOR UPDATE`

// GetForUpdate returns the account and locks its row until the end of the transaction.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Account, error) {
	return r.get(ctx, getForUpdateQuery, id)
}

func (r *RepoPGS) get(ctx context.Context, query string, id int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrAccountNotFound
		}

		l.Error().Err(err).Send()

		return domain.Account{}, errorspkg.ErrInternal
	}

	return a, nil
}

const listAccounts = `SELECT` + accountColumns + `
FROM accounts
WHERE owner = $1 AND is_active
ORDER BY id
LIMIT $2 OFFSET $3
`

// List returns the specified number of active accounts for the given user.
func (r *RepoPGS) List(ctx context.Context, owner uuid.UUID, arg domain.ListParams) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listAccounts, owner, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}
