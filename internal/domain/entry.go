package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry types.
const (
	EntryTypeIncome   = "INCOME"
	EntryTypeExpense  = "EXPENSE"
	EntryTypeTransfer = "TRANSFER"
	EntryTypePayment  = "PAYMENT"
)

var (
	// ErrEntryNotFound indicates that the entry is not found.
	ErrEntryNotFound = errorspkg.New(errorspkg.KindNotFound, "entry not found")
	// ErrInvalidEntryType indicates an entry type that cannot be created directly.
	ErrInvalidEntryType = errorspkg.New(errorspkg.KindValidation, "invalid entry type")
)

// Entry holds balance change data for an account.
type Entry struct {
	ID          int64           `json:"id"`
	Owner       uuid.UUID       `json:"owner"`
	AccountID   int64           `json:"account_id"`
	Amount      decimal.Decimal `json:"amount"` // can be negative or positive
	EntryType   string          `json:"entry_type"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	TransferID  *int64          `json:"transfer_id"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CreateEntryParams is the input data to book a manual entry. Amount is positive,
// INCOME adds it to the balance, EXPENSE and PAYMENT subtract it.
type CreateEntryParams struct {
	Owner       uuid.UUID
	AccountID   int64
	Amount      decimal.Decimal
	EntryType   string
	Category    string
	Subcategory string
	Description string
	Date        time.Time
}

// SignedAmount returns the balance delta of the entry.
func (p CreateEntryParams) SignedAmount() decimal.Decimal {
	if p.EntryType == EntryTypeIncome {
		return p.Amount
	}

	return p.Amount.Neg()
}

// ListEntriesParams filters the entries of an owner.
type ListEntriesParams struct {
	Owner     uuid.UUID
	AccountID *int64
	EntryType string
	From      *time.Time
	To        *time.Time
	Limit     int32
	Offset    int32
}

// SummaryParams limits the summary to a date range.
type SummaryParams struct {
	Owner uuid.UUID
	From  *time.Time
	To    *time.Time
}

// Summary holds entry totals of an owner. Withdrawals are reported as a positive sum
// of EXPENSE and PAYMENT entries, transfers count only the credited legs.
type Summary struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	TotalTransfers   decimal.Decimal `json:"total_transfers"`
	NetChange        decimal.Decimal `json:"net_change"`
}
