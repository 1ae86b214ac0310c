package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Investment types.
const (
	InvestmentTypeStock      = "STOCK"
	InvestmentTypeBond       = "BOND"
	InvestmentTypeMutualFund = "MUTUAL_FUND"
	InvestmentTypeETF        = "ETF"
	InvestmentTypeRealEstate = "REAL_ESTATE"
	InvestmentTypeCrypto     = "CRYPTO"
	InvestmentTypeGold       = "GOLD"
	InvestmentTypeOther      = "OTHER"
)

// InvestmentTypes holds the supported investment types.
var InvestmentTypes = map[string]struct{}{
	InvestmentTypeStock:      {},
	InvestmentTypeBond:       {},
	InvestmentTypeMutualFund: {},
	InvestmentTypeETF:        {},
	InvestmentTypeRealEstate: {},
	InvestmentTypeCrypto:     {},
	InvestmentTypeGold:       {},
	InvestmentTypeOther:      {},
}

var (
	// ErrInvestmentNotFound indicates that the investment is not found or belongs to another user.
	ErrInvestmentNotFound = errorspkg.New(errorspkg.KindNotFound, "investment not found")
	// ErrInvalidInvestmentType indicates an unknown investment type.
	ErrInvalidInvestmentType = errorspkg.New(errorspkg.KindValidation, "invalid investment type")
	// ErrInvalidQuantity indicates zero or negative quantity.
	ErrInvalidQuantity = errorspkg.New(errorspkg.KindValidation, "quantity must be positive")
	// ErrNegativePrice indicates a negative price.
	ErrNegativePrice = errorspkg.New(errorspkg.KindValidation, "price must not be negative")
)

// Investment is a holding of a user. CurrentPrice is unknown until the user sets it.
type Investment struct {
	ID             int64            `json:"id"`
	Owner          uuid.UUID        `json:"owner"`
	InvestmentType string           `json:"investment_type"`
	Name           string           `json:"name"`
	Symbol         string           `json:"symbol"`
	PurchaseDate   time.Time        `json:"purchase_date"`
	Quantity       decimal.Decimal  `json:"quantity"`
	PurchasePrice  decimal.Decimal  `json:"purchase_price"`
	CurrentPrice   *decimal.Decimal `json:"current_price"`
	ProfitLoss     *decimal.Decimal `json:"profit_loss"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// CalcProfitLoss returns (current price - purchase price) * quantity,
// or nil while the current price is unknown.
func (i Investment) CalcProfitLoss() *decimal.Decimal {
	if i.CurrentPrice == nil {
		return nil
	}

	pl := i.CurrentPrice.Sub(i.PurchasePrice).Mul(i.Quantity).Round(2)

	return &pl
}

// CreateInvestmentParams is the input data to create an investment.
type CreateInvestmentParams struct {
	Owner          uuid.UUID
	InvestmentType string
	Name           string
	Symbol         string
	PurchaseDate   time.Time
	Quantity       decimal.Decimal
	PurchasePrice  decimal.Decimal
	CurrentPrice   *decimal.Decimal
}

// ListInvestmentsParams holds the filters and paging of an investment listing.
type ListInvestmentsParams struct {
	Owner          uuid.UUID
	InvestmentType string
	Limit          int32
	Offset         int32
}
