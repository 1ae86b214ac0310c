// Package entryservice manages business logic layer of ledger entries.
package entryservice

import (
	"context"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/google/uuid"
)

//go:generate mockgen -source service.go -destination service_mock.go -package entryservice

// Repo provides data access layer interface needed by entry service layer.
type Repo interface {
	Book(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error)
	Get(ctx context.Context, id int64) (domain.Entry, error)
	List(ctx context.Context, arg domain.ListEntriesParams) ([]domain.Entry, error)
	SoftDelete(ctx context.Context, id int64) error
	Summary(ctx context.Context, arg domain.SummaryParams) (domain.Summary, error)
}

// Service facilitates entry service layer logic.
type Service struct {
	repo Repo
}

// New returns entry service.
func New(er Repo) *Service {
	return &Service{repo: er}
}

// Create books a manual INCOME, EXPENSE or PAYMENT entry and updates the account balance.
// Transfer entries are only created by transfers.
func (s *Service) Create(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error) {
	switch arg.EntryType {
	case domain.EntryTypeIncome, domain.EntryTypeExpense, domain.EntryTypePayment:
	default:
		return domain.AccountTxResult{}, domain.ErrInvalidEntryType
	}

	if !arg.Amount.IsPositive() {
		return domain.AccountTxResult{}, domain.ErrNegativeAmount
	}

	if arg.Date.IsZero() {
		arg.Date = time.Now().UTC()
	}

	return s.repo.Book(ctx, arg)
}

// Get returns the active entry with the given ID. Entries of other users are reported as not found.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Entry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Entry{}, err
	}

	if !entry.IsActive || entry.Owner != owner {
		return domain.Entry{}, domain.ErrEntryNotFound
	}

	return entry, nil
}

// List returns the active entries of the owner matching the filters, newest first.
func (s *Service) List(ctx context.Context, arg domain.ListEntriesParams) ([]domain.Entry, error) {
	if arg.From != nil && arg.To != nil && arg.From.After(*arg.To) {
		return nil, domain.ErrInvalidDateRange
	}

	return s.repo.List(ctx, arg)
}

// Delete hides the entry from history. The account balance is left as is.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, id)
}

// Summary totals the owner's entries over an optional date range.
func (s *Service) Summary(ctx context.Context, arg domain.SummaryParams) (domain.Summary, error) {
	if arg.From != nil && arg.To != nil && arg.From.After(*arg.To) {
		return domain.Summary{}, domain.ErrInvalidDateRange
	}

	return s.repo.Summary(ctx, arg)
}
