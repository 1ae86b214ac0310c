// Package recurringservice manages recurring transaction schedules and books their entries.
package recurringservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LockName is the name of the lock serializing processing runs.
const LockName = "recurring:process"

//go:generate mockgen -source service.go -destination service_mock.go -package recurringservice

// Repo provides data access layer interface needed by recurring service layer.
type Repo interface {
	Create(ctx context.Context, arg domain.CreateRecurringParams) (domain.Recurring, error)
	List(ctx context.Context, owner uuid.UUID, arg domain.ListParams) ([]domain.Recurring, error)
	ListActive(ctx context.Context, day time.Time) ([]domain.Recurring, error)
	Materialize(ctx context.Context, rec domain.Recurring, day time.Time) (domain.AccountTxResult, error)
}

// AccountService returns accounts visible to their owner.
type AccountService interface {
	Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Account, error)
}

// Locker runs fn while holding a named lock.
type Locker interface {
	WithLock(ctx context.Context, name string, fn func(context.Context) error) error
}

// Service facilitates recurring service layer logic.
type Service struct {
	repo           Repo
	accountService AccountService
	locker         Locker
}

// New returns recurring service.
func New(rr Repo, as AccountService, locker Locker) *Service {
	return &Service{
		repo:           rr,
		accountService: as,
		locker:         locker,
	}
}

// Create validates and stores a schedule for an account of the owner.
func (s *Service) Create(ctx context.Context, arg domain.CreateRecurringParams) (domain.Recurring, error) {
	if _, ok := domain.FrequencyDays[arg.Frequency]; !ok {
		return domain.Recurring{}, domain.ErrInvalidFrequency
	}

	switch arg.EntryType {
	case domain.EntryTypeIncome, domain.EntryTypeExpense, domain.EntryTypePayment:
	default:
		return domain.Recurring{}, domain.ErrInvalidEntryType
	}

	if !arg.Amount.IsPositive() {
		return domain.Recurring{}, domain.ErrNegativeAmount
	}

	if arg.StartDate.IsZero() {
		arg.StartDate = time.Now().UTC()
	}

	if arg.EndDate != nil && arg.EndDate.Before(arg.StartDate) {
		return domain.Recurring{}, domain.ErrInvalidDateRange
	}

	if _, err := s.accountService.Get(ctx, arg.Owner, arg.AccountID); err != nil {
		return domain.Recurring{}, err
	}

	return s.repo.Create(ctx, arg)
}

// List returns the schedules of the owner.
func (s *Service) List(ctx context.Context, owner uuid.UUID, pageSize, pageID int32) ([]domain.Recurring, error) {
	return s.repo.List(ctx, owner, domain.ListParams{
		Limit:  pageSize,
		Offset: (pageID - 1) * pageSize,
	})
}

// Process books the entries of every schedule due on day. Runs are serialized by
// the lock and a schedule is booked at most once per day, so a repeated run is a no-op.
//
// A failing schedule does not stop the others, it is counted in the result.
func (s *Service) Process(ctx context.Context, day time.Time) (domain.ProcessResult, error) {
	var result domain.ProcessResult

	err := s.locker.WithLock(ctx, LockName, func(ctx context.Context) error {
		l := zerolog.Ctx(ctx)

		schedules, err := s.repo.ListActive(ctx, day)
		if err != nil {
			return err
		}

		for _, rec := range schedules {
			if !rec.IsDue(day) {
				continue
			}

			_, err := s.repo.Materialize(ctx, rec, day)

			switch {
			case err == nil:
				result.Processed++
			case errors.Is(err, domain.ErrAlreadyProcessed):
				result.Skipped++
			default:
				result.Failed++

				l.Error().Err(err).Int64("recurring_id", rec.ID).Msg("processing recurring transaction")
			}
		}

		return nil
	})
	if err != nil {
		return domain.ProcessResult{}, err
	}

	return result, nil
}
