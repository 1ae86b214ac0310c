// Package transferrepo manages repository layer of transfers.
package transferrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/internal/accountrepo"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/entryrepo"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transfer repository layer logic.
type RepoPGS struct {
	db   dbpkg.SQLInterface
	conn *sql.DB
}

// NewTxRepoPGS returns transfer RepoPGS bound to db, usually a transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

// NewRepoPGS returns transfer RepoPGS wiht connection to start transactions.
func NewRepoPGS(db *sql.DB) *RepoPGS {
	return &RepoPGS{
		db:   db,
		conn: db,
	}
}

const transferColumns = `
	id, owner, source_account_id, destination_account_id, amount, description, date, is_active, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row scanner) (domain.Transfer, error) {
	var t domain.Transfer

	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.SourceAccountID,
		&t.DestinationAccountID,
		&t.Amount,
		&t.Description,
		&t.Date,
		&t.IsActive,
		&t.CreatedAt,
	)

	return t, err
}

const createQuery = `
INSERT INTO
    transfers (owner, source_account_id, destination_account_id, amount, description, date)
VALUES
    ($1, $2, $3, $4, $5, $6)
RETURNING` + transferColumns

// Create creates the transfer row and then returns it. Balances are not touched.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateTransferParams) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.SourceAccountID,
		arg.DestinationAccountID,
		arg.Amount,
		arg.Description,
		arg.Date,
	)

	t, err := scanTransfer(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transfers_source_account_id_fkey", "transfers_destination_account_id_fkey":
				return domain.Transfer{}, domain.ErrAccountNotFound
			case "transfers_amount_check":
				return domain.Transfer{}, domain.ErrNegativeAmount
			case "transfers_accounts_check":
				return domain.Transfer{}, domain.ErrSameAccount
			}
		}

		return domain.Transfer{}, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `SELECT` + transferColumns + `
FROM transfers
WHERE id = $1
`

// Get returns the transfer with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransfer(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, domain.ErrTransferNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transfer{}, errorspkg.ErrInternal
	}

	return t, nil
}

const listTransfers = `SELECT` + transferColumns + `
FROM transfers
WHERE owner = $1
    AND is_active
    AND ($2::bigint IS NULL OR source_account_id = $2 OR destination_account_id = $2)
ORDER BY date DESC, id DESC
LIMIT $3 OFFSET $4
`

// List returns the active transfers of the owner, optionally touching one account.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listTransfers,
		arg.Owner,
		arg.AccountID,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transfer{}

	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const softDeleteQuery = `
UPDATE transfers
SET is_active = false
WHERE id = $1 AND is_active
`

// SoftDelete hides the transfer. Its entries and the balances stay.
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
		return domain.ErrTransferNotFound
	}

	return nil
}

// Transfer moves money between two accounts of one owner.
//
// It locks both accounts, re-checks ownership and funds on the locked rows,
// creates a transfer record, adds account entries, and updates accounts' balance
// within a single db transaction. Store failures are reported as errorspkg.ErrTransient.
func (r *RepoPGS) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	var result domain.TransferTxResult

	err := dbpkg.WithTx(ctx, r.conn, func(tx *sql.Tx) error {
		var err error
		result, err = transferTx(ctx, tx, arg)

		return err
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msgf("Transfer(ctx context.Context, %+v)", arg)
		return domain.TransferTxResult{}, err
	}

	return result, nil
}

func transferTx(ctx context.Context, tx *sql.Tx, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	var result domain.TransferTxResult

	accountRepo := accountrepo.NewRepoPGS(tx)
	entryRepo := entryrepo.NewTxRepoPGS(tx)

	// To avoid deadlocks lock rows in consistent id order
	firstID, secondID := arg.SourceAccountID, arg.DestinationAccountID
	if firstID > secondID {
		firstID, secondID = secondID, firstID
	}

	first, err := accountRepo.GetForUpdate(ctx, firstID)
	if err != nil {
		return result, err
	}

	second, err := accountRepo.GetForUpdate(ctx, secondID)
	if err != nil {
		return result, err
	}

	source, destination := first, second
	if source.ID != arg.SourceAccountID {
		source, destination = second, first
	}

	if err := source.CheckAccess(arg.Owner); err != nil {
		return result, err
	}

	if err := destination.CheckAccess(arg.Owner); err != nil {
		return result, err
	}

	if source.Balance.LessThan(arg.Amount) {
		return result, domain.ErrInsufficientFunds
	}

	result.Transfer, err = NewTxRepoPGS(tx).Create(ctx, arg)
	if err != nil {
		return result, err
	}

	transferID := result.Transfer.ID

	result.SourceEntry, err = entryRepo.Create(ctx, domain.Entry{
		Owner:       arg.Owner,
		AccountID:   arg.SourceAccountID,
		Amount:      arg.Amount.Neg(),
		EntryType:   domain.EntryTypeTransfer,
		Description: arg.Description,
		Date:        arg.Date,
		TransferID:  &transferID,
	})
	if err != nil {
		return result, err
	}

	result.DestinationEntry, err = entryRepo.Create(ctx, domain.Entry{
		Owner:       arg.Owner,
		AccountID:   arg.DestinationAccountID,
		Amount:      arg.Amount,
		EntryType:   domain.EntryTypeTransfer,
		Description: arg.Description,
		Date:        arg.Date,
		TransferID:  &transferID,
	})
	if err != nil {
		return result, err
	}

	firstAmount, secondAmount := arg.Amount.Neg(), arg.Amount
	if firstID != arg.SourceAccountID {
		firstAmount, secondAmount = secondAmount, firstAmount
	}

	first, err = accountRepo.AddBalance(ctx, firstAmount, firstID)
	if err != nil {
		return result, err
	}

	second, err = accountRepo.AddBalance(ctx, secondAmount, secondID)
	if err != nil {
		return result, err
	}

	result.SourceAccount, result.DestinationAccount = first, second
	if firstID != arg.SourceAccountID {
		result.SourceAccount, result.DestinationAccount = second, first
	}

	return result, nil
}
