// Package entryrepo manages repository layer of entries.
package entryrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/internal/accountrepo"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates entry repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns entry RepoPGS bound to db, usually a transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns entry RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const entryColumns = `
	id, owner, account_id, amount, entry_type, category, subcategory, description, date, transfer_id, is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (domain.Entry, error) {
	var (
		e          domain.Entry
		transferID sql.NullInt64
	)

	err := row.Scan(
		&e.ID,
		&e.Owner,
		&e.AccountID,
		&e.Amount,
		&e.EntryType,
		&e.Category,
		&e.Subcategory,
		&e.Description,
		&e.Date,
		&transferID,
		&e.IsActive,
		&e.CreatedAt,
	)

	if transferID.Valid {
		e.TransferID = &transferID.Int64
	}

	return e, err
}

const createQuery = `
INSERT INTO entries (
    owner, account_id, amount, entry_type, category, subcategory, description, date, transfer_id
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9
) RETURNING` + entryColumns

// Create inserts the entry as is. Amount is signed. It does not touch the balance.
func (r *RepoPGS) Create(ctx context.Context, arg domain.Entry) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.AccountID,
		arg.Amount,
		arg.EntryType,
		arg.Category,
		arg.Subcategory,
		arg.Description,
		arg.Date,
		arg.TransferID,
	)

	e, err := scanEntry(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "entries_account_id_fkey":
				return domain.Entry{}, domain.ErrAccountNotFound
			case "entries_entry_type_check":
				return domain.Entry{}, domain.ErrInvalidEntryType
			}
		}

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

const getQuery = `SELECT` + entryColumns + `
FROM entries
WHERE id = $1
`

// Get returns the entry with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	e, err := scanEntry(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Entry{}, domain.ErrEntryNotFound
		}

		l.Error().Err(err).Send()

		return domain.Entry{}, errorspkg.ErrInternal
	}

	return e, nil
}

const listQuery = `SELECT` + entryColumns + `
FROM entries
WHERE owner = $1
    AND is_active
    AND ($2::bigint IS NULL OR account_id = $2)
    AND ($3::text = '' OR entry_type = $3)
    AND ($4::timestamptz IS NULL OR date >= $4)
    AND ($5::timestamptz IS NULL OR date <= $5)
ORDER BY date DESC, id DESC
LIMIT $6 OFFSET $7
`

// List returns the active entries of the owner matching the filters.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListEntriesParams) ([]domain.Entry, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery,
		arg.Owner,
		arg.AccountID,
		arg.EntryType,
		arg.From,
		arg.To,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Entry{}

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const softDeleteQuery = `
UPDATE entries
SET is_active = false
WHERE id = $1 AND is_active
`

// SoftDelete hides the entry from lists and summaries. The balance is left untouched.
func (r *RepoPGS) SoftDelete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, softDeleteQuery, id)
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
		return domain.ErrEntryNotFound
	}

	return nil
}

const summaryQuery = `
SELECT
    COALESCE(SUM(amount) FILTER (WHERE entry_type = 'INCOME'), 0),
    COALESCE(-SUM(amount) FILTER (WHERE entry_type IN ('EXPENSE', 'PAYMENT')), 0),
    COALESCE(SUM(amount) FILTER (WHERE entry_type = 'TRANSFER' AND amount > 0), 0)
FROM entries
WHERE owner = $1
    AND is_active
    AND ($2::timestamptz IS NULL OR date >= $2)
    AND ($3::timestamptz IS NULL OR date <= $3)
`

// Summary returns the entry totals of the owner.
func (r *RepoPGS) Summary(ctx context.Context, arg domain.SummaryParams) (domain.Summary, error) {
	l := zerolog.Ctx(ctx)

	var s domain.Summary

	err := r.db.QueryRowContext(ctx, summaryQuery, arg.Owner, arg.From, arg.To).Scan(
		&s.TotalDeposits,
		&s.TotalWithdrawals,
		&s.TotalTransfers,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.Summary{}, errorspkg.ErrInternal
	}

	s.NetChange = s.TotalDeposits.Sub(s.TotalWithdrawals)

	return s, nil
}

// Apply books the entry and changes the account balance by its signed amount.
//
// It must run inside a transaction: the account row stays locked until commit.
func (r *RepoPGS) Apply(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error) {
	var result domain.AccountTxResult

	accountRepo := accountrepo.NewRepoPGS(r.db)

	account, err := accountRepo.GetForUpdate(ctx, arg.AccountID)
	if err != nil {
		return result, err
	}

	if err := account.CheckAccess(arg.Owner); err != nil {
		return result, err
	}

	amount := arg.SignedAmount()

	if account.Balance.Add(amount).IsNegative() {
		return result, domain.ErrInsufficientFunds
	}

	result.Entry, err = r.Create(ctx, domain.Entry{
		Owner:       arg.Owner,
		AccountID:   arg.AccountID,
		Amount:      amount,
		EntryType:   arg.EntryType,
		Category:    arg.Category,
		Subcategory: arg.Subcategory,
		Description: arg.Description,
		Date:        arg.Date,
	})
	if err != nil {
		return result, err
	}

	result.Account, err = accountRepo.AddBalance(ctx, amount, arg.AccountID)
	if err != nil {
		return result, err
	}

	return result, nil
}

// Book runs Apply in its own transaction.
func (r *RepoPGS) Book(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error) {
	var result domain.AccountTxResult

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		var err error
		result, err = NewTxRepoPGS(tx).Apply(ctx, arg)

		return err
	})

	return result, err
}

// OpeningBalanceCategory is the category of the entry booking an opening balance.
const OpeningBalanceCategory = "Opening balance"

// CreateAccount creates the account and books a positive opening balance
// as an INCOME entry in the same transaction.
func (r *RepoPGS) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.AccountTxResult, error) {
	var result domain.AccountTxResult

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		account, err := accountrepo.NewRepoPGS(tx).Create(ctx, arg)
		if err != nil {
			return err
		}

		result.Account = account

		if !arg.OpeningBalance.IsPositive() {
			return nil
		}

		result, err = NewTxRepoPGS(tx).Apply(ctx, domain.CreateEntryParams{
			Owner:     arg.Owner,
			AccountID: account.ID,
			Amount:    arg.OpeningBalance,
			EntryType: domain.EntryTypeIncome,
			Category:  OpeningBalanceCategory,
			Date:      account.CreatedAt,
		})

		return err
	})

	return result, err
}
