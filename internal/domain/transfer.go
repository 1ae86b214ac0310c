package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrSameAccount indicates a transfer from an account to itself.
	ErrSameAccount = errorspkg.New(errorspkg.KindSameAccount, "source and destination accounts must differ")
	// ErrTransferNotFound indicates that the transfer is not found.
	ErrTransferNotFound = errorspkg.New(errorspkg.KindNotFound, "transfer not found")
)

// Transfer holds transfer data between two accounts of one owner.
type Transfer struct {
	ID                   int64           `json:"id"`
	Owner                uuid.UUID       `json:"owner"`
	SourceAccountID      int64           `json:"source_account_id"`
	DestinationAccountID int64           `json:"destination_account_id"`
	Amount               decimal.Decimal `json:"amount"` // must be positive
	Description          string          `json:"description"`
	Date                 time.Time       `json:"date"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
}

// CreateTransferParams is the input data for the transfer transaction.
type CreateTransferParams struct {
	Owner                uuid.UUID
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	Description          string
	Date                 time.Time
}

// ListTransfersParams is the input data to list transfers of an owner,
// optionally touching one account.
type ListTransfersParams struct {
	Owner     uuid.UUID
	AccountID *int64
	Limit     int32
	Offset    int32
}

// TransferTxResult is the result of the transfer transaction.
type TransferTxResult struct {
	Transfer           Transfer `json:"transfer"`
	SourceAccount      Account  `json:"source_account"`
	DestinationAccount Account  `json:"destination_account"`
	SourceEntry        Entry    `json:"source_entry"`
	DestinationEntry   Entry    `json:"destination_entry"`
}
