// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"strconv"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/eventpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:generate mockgen -source service.go -destination service_mock.go -package transferservice

// Repo provides data access layer interface needed by transfer service layer.
type Repo interface {
	Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error)
	Get(ctx context.Context, id int64) (domain.Transfer, error)
	List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error)
	SoftDelete(ctx context.Context, id int64) error
}

// AccountService returns accounts visible to their owner.
type AccountService interface {
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Account, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo           Repo
	accountService AccountService
	publisher      eventpkg.Publisher
}

// New return transfer service struct to manage transfer bussines logic.
func New(tr Repo, as AccountService, p eventpkg.Publisher) *Service {
	return &Service{
		repo:           tr,
		accountService: as,
		publisher:      p,
	}
}

// validRequest rejects the transfer before the transaction is opened.
// Both accounts are resolved before the balance is looked at, so a foreign
// account is reported as such even when funds are short.
// The repository repeats the account checks on the locked rows.
func (s *Service) validRequest(ctx context.Context, arg domain.CreateTransferParams) error {
	l := zerolog.Ctx(ctx)

	if !arg.Amount.IsPositive() {
		return domain.ErrNegativeAmount
	}

	if arg.SourceAccountID == arg.DestinationAccountID {
		return domain.ErrSameAccount
	}

	source, err := s.accountService.Get(ctx, arg.Owner, arg.SourceAccountID)
	if err != nil {
		l.Info().Err(err).Int64("account_id", arg.SourceAccountID).Send()
		return err
	}

	if _, err := s.accountService.Get(ctx, arg.Owner, arg.DestinationAccountID); err != nil {
		l.Info().Err(err).Int64("account_id", arg.DestinationAccountID).Send()
		return err
	}

	if source.Balance.LessThan(arg.Amount) {
		return domain.ErrInsufficientFunds
	}

	return nil
}

// Transfer checks if transfer request is valid and then executes transfer.
// The transfer.completed event is published after commit, a failed publish is only logged.
func (s *Service) Transfer(ctx context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
	if arg.Date.IsZero() {
		arg.Date = time.Now().UTC()
	}

	if err := s.validRequest(ctx, arg); err != nil {
		return domain.TransferTxResult{}, err
	}

	result, err := s.repo.Transfer(ctx, arg)
	if err != nil {
		return domain.TransferTxResult{}, err
	}

	key := strconv.FormatInt(result.Transfer.ID, 10)
	if err := s.publisher.Publish(ctx, eventpkg.TransferCompleted, key, result.Transfer); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("transfer_id", result.Transfer.ID).Msg("publishing transfer event")
	}

	return result, nil
}

// Get returns the active transfer of the owner.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Transfer, error) {
	transfer, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Transfer{}, err
	}

	if !transfer.IsActive || transfer.Owner != owner {
		return domain.Transfer{}, domain.ErrTransferNotFound
	}

	return transfer, nil
}

// List returns the owner's transfers, optionally only those touching one account.
func (s *Service) List(ctx context.Context, arg domain.ListTransfersParams) ([]domain.Transfer, error) {
	return s.repo.List(ctx, arg)
}

// Delete hides the transfer from history. Balances and entries are left as is.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}

	return s.repo.SoftDelete(ctx, id)
}
