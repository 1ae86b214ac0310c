package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrAccountNotFound indicates that the account is not found or was deleted.
	ErrAccountNotFound = errorspkg.New(errorspkg.KindNotFound, "account not found")
	// ErrAccountOwnerMismatch indicates that the account belongs to another user.
	ErrAccountOwnerMismatch = errorspkg.New(errorspkg.KindOwnership, "account owner mismatch")
	// ErrAccountNumberExists indicates that the account number is already registered.
	ErrAccountNumberExists = errorspkg.New(errorspkg.KindConflict, "account number already exists")
	// ErrOwnerNotFound indicates that the owner for the account is not found.
	ErrOwnerNotFound = errorspkg.New(errorspkg.KindNotFound, "owner not found")
	// ErrInsufficientFunds indicates that the account does not have sufficient balance.
	ErrInsufficientFunds = errorspkg.New(errorspkg.KindInsufficientFunds, "insufficient funds")
	// ErrInvalidAmount indicates an amount that is not a decimal number.
	ErrInvalidAmount = errorspkg.New(errorspkg.KindValidation, "invalid amount")
	// ErrNegativeAmount indicates zero or negative amount.
	ErrNegativeAmount = errorspkg.New(errorspkg.KindValidation, "amount must be positive")
)

// Account holds a bank account of a user.
type Account struct {
	ID            int64           `json:"id"`
	Owner         uuid.UUID       `json:"owner"`
	Name          string          `json:"name"`
	AccountNumber string          `json:"account_number"`
	BankName      string          `json:"bank_name"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateAccountParams is the input data to create an account.
// A positive OpeningBalance is booked as an INCOME entry.
type CreateAccountParams struct {
	Owner          uuid.UUID
	Name           string
	AccountNumber  string
	BankName       string
	OpeningBalance decimal.Decimal
}

// BalanceChangeParams is the input data for a deposit or a withdrawal.
// Amount is always positive, the direction comes from the operation.
type BalanceChangeParams struct {
	Owner       uuid.UUID
	AccountID   int64
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        time.Time
}

// AccountTxResult is the result of a single account balance transaction.
type AccountTxResult struct {
	Account Account `json:"account"`
	Entry   Entry   `json:"entry"`
}

// ListParams holds paging parameters.
type ListParams struct {
	Limit  int32
	Offset int32
}

// ParseAmount parses a positive money amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}

	if !amount.IsPositive() {
		return decimal.Decimal{}, ErrNegativeAmount
	}

	return amount, nil
}

// CheckAccess returns ErrAccountNotFound for a deleted account and
// ErrAccountOwnerMismatch for an account of another user.
func (a Account) CheckAccess(owner uuid.UUID) error {
	if !a.IsActive {
		return ErrAccountNotFound
	}

	if a.Owner != owner {
		return ErrAccountOwnerMismatch
	}

	return nil
}
