// Package investmentrepo manages repository layer of investments.
package investmentrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates investment repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns investment RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const investmentColumns = `
	id, owner, investment_type, name, symbol, purchase_date,
	quantity, purchase_price, current_price, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanInvestment(row scanner) (domain.Investment, error) {
	var (
		i            domain.Investment
		currentPrice decimal.NullDecimal
	)

	err := row.Scan(
		&i.ID,
		&i.Owner,
		&i.InvestmentType,
		&i.Name,
		&i.Symbol,
		&i.PurchaseDate,
		&i.Quantity,
		&i.PurchasePrice,
		&currentPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)

	if currentPrice.Valid {
		i.CurrentPrice = &currentPrice.Decimal
	}

	i.ProfitLoss = i.CalcProfitLoss()

	return i, err
}

func constraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Constraint {
	case "investments_owner_fkey":
		return domain.ErrOwnerNotFound
	case "investments_investment_type_check":
		return domain.ErrInvalidInvestmentType
	case "investments_quantity_check":
		return domain.ErrInvalidQuantity
	case "investments_price_check":
		return domain.ErrNegativePrice
	}

	return nil
}

const createQuery = `
INSERT INTO investments (
    owner, investment_type, name, symbol, purchase_date, quantity, purchase_price, current_price
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8
) RETURNING` + investmentColumns

// Create creates the investment and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateInvestmentParams) (domain.Investment, error) {
	l := zerolog.Ctx(ctx)

	var currentPrice decimal.NullDecimal
	if arg.CurrentPrice != nil {
		currentPrice = decimal.NewNullDecimal(*arg.CurrentPrice)
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Owner,
		arg.InvestmentType,
		arg.Name,
		arg.Symbol,
		arg.PurchaseDate,
		arg.Quantity,
		arg.PurchasePrice,
		currentPrice,
	)

	i, err := scanInvestment(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		if cerr := constraintError(err); cerr != nil {
			return domain.Investment{}, cerr
		}

		return domain.Investment{}, errorspkg.ErrInternal
	}

	return i, nil
}

const getQuery = `SELECT` + investmentColumns + `
FROM investments
WHERE id = $1
`

// Get returns the investment with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Investment, error) {
	l := zerolog.Ctx(ctx)

	i, err := scanInvestment(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Investment{}, domain.ErrInvestmentNotFound
		}

		l.Error().Err(err).Send()

		return domain.Investment{}, errorspkg.ErrInternal
	}

	return i, nil
}

const listQuery = `SELECT` + investmentColumns + `
FROM investments
WHERE owner = $1
    AND ($2::text = '' OR investment_type = $2)
ORDER BY purchase_date DESC, id DESC
LIMIT $3 OFFSET $4
`

// List returns the investments of the owner, optionally of one type.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListInvestmentsParams) ([]domain.Investment, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery,
		arg.Owner,
		arg.InvestmentType,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Investment{}

	for rows.Next() {
		i, err := scanInvestment(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, i)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateCurrentPriceQuery = `
UPDATE investments
SET current_price = $2, updated_at = now()
WHERE id = $1
RETURNING` + investmentColumns

// UpdateCurrentPrice sets the current price of the investment and then returns it.
func (r *RepoPGS) UpdateCurrentPrice(ctx context.Context, id int64, price decimal.Decimal) (domain.Investment, error) {
	l := zerolog.Ctx(ctx)

	i, err := scanInvestment(r.db.QueryRowContext(ctx, updateCurrentPriceQuery, id, price))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Investment{}, domain.ErrInvestmentNotFound
		}

		l.Error().Err(err).Send()

		if cerr := constraintError(err); cerr != nil {
			return domain.Investment{}, cerr
		}

		return domain.Investment{}, errorspkg.ErrInternal
	}

	return i, nil
}

const deleteQuery = `
DELETE FROM investments
WHERE id = $1
`

// Delete deletes the investment.
func (r *RepoPGS) Delete(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, deleteQuery, id)
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
		return domain.ErrInvestmentNotFound
	}

	return nil
}
