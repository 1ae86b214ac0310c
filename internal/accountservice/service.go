// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/google/uuid"
)

// Categories of the entries booked by deposits and withdrawals.
const (
	DepositCategory    = "Deposit"
	WithdrawalCategory = "Withdrawal"
)

//go:generate mockgen -source service.go -destination service_mock.go -package accountservice

// Repo provides data access layer interface needed by account service layer.
type Repo interface {
	Get(ctx context.Context, id int64) (domain.Account, error)
	List(ctx context.Context, owner uuid.UUID, arg domain.ListParams) ([]domain.Account, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Ledger books balance changes together with their entries.
type Ledger interface {
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.AccountTxResult, error)
	Book(ctx context.Context, arg domain.CreateEntryParams) (domain.AccountTxResult, error)
}

// Service facilitates account service layer logic.
type Service struct {
	repo   Repo
	ledger Ledger
}

// New returns account service struct to manage account bussines logic.
func New(ar Repo, l Ledger) *Service {
	return &Service{repo: ar, ledger: l}
}

// Create creates and returns account. A positive opening balance is booked as income.
func (s *Service) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if arg.OpeningBalance.IsNegative() {
		return domain.Account{}, domain.ErrNegativeAmount
	}

	result, err := s.ledger.CreateAccount(ctx, arg)
	if err != nil {
		return domain.Account{}, err
	}

	return result.Account, nil
}

// Get returns the active account with the given ID owned by owner.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Account, error) {
	account, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if err := account.CheckAccess(owner); err != nil {
		return domain.Account{}, err
	}

	return account, nil
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner uuid.UUID, pageSize, pageID int32) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx, owner, domain.ListParams{
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	return accounts, nil
}

// Delete deactivates the account. Its entries stay in history.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, id)
}

// Deposit adds the amount to the account and books an INCOME entry.
func (s *Service) Deposit(ctx context.Context, arg domain.BalanceChangeParams) (domain.AccountTxResult, error) {
	return s.book(ctx, arg, domain.EntryTypeIncome, DepositCategory)
}

// Withdraw subtracts the amount from the account and books an EXPENSE entry.
// The balance never goes below zero.
func (s *Service) Withdraw(ctx context.Context, arg domain.BalanceChangeParams) (domain.AccountTxResult, error) {
	return s.book(ctx, arg, domain.EntryTypeExpense, WithdrawalCategory)
}

func (s *Service) book(ctx context.Context, arg domain.BalanceChangeParams, entryType, category string) (domain.AccountTxResult, error) {
	if !arg.Amount.IsPositive() {
		return domain.AccountTxResult{}, domain.ErrNegativeAmount
	}

	if arg.Category != "" {
		category = arg.Category
	}

	date := arg.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}

	return s.ledger.Book(ctx, domain.CreateEntryParams{
		Owner:       arg.Owner,
		AccountID:   arg.AccountID,
		Amount:      arg.Amount,
		EntryType:   entryType,
		Category:    category,
		Description: arg.Description,
		Date:        date,
	})
}
