// Package investmentservice manages investments of users.
package investmentservice

import (
	"context"
	"strings"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source service.go -destination service_mock.go -package investmentservice

// Repo provides data access layer interface needed by investment service layer.
type Repo interface {
	Create(ctx context.Context, arg domain.CreateInvestmentParams) (domain.Investment, error)
	Get(ctx context.Context, id int64) (domain.Investment, error)
	List(ctx context.Context, arg domain.ListInvestmentsParams) ([]domain.Investment, error)
	UpdateCurrentPrice(ctx context.Context, id int64, price decimal.Decimal) (domain.Investment, error)
	Delete(ctx context.Context, id int64) error
}

// Service facilitates investment service layer logic.
type Service struct {
	repo Repo
}

// New returns investment service.
func New(ir Repo) *Service {
	return &Service{
		repo: ir,
	}
}

// Create validates and stores an investment of the owner.
// The type defaults to STOCK and the purchase date to today.
func (s *Service) Create(ctx context.Context, arg domain.CreateInvestmentParams) (domain.Investment, error) {
	if arg.InvestmentType == "" {
		arg.InvestmentType = domain.InvestmentTypeStock
	}

	if _, ok := domain.InvestmentTypes[arg.InvestmentType]; !ok {
		return domain.Investment{}, domain.ErrInvalidInvestmentType
	}

	if !arg.Quantity.IsPositive() {
		return domain.Investment{}, domain.ErrInvalidQuantity
	}

	if arg.PurchasePrice.IsNegative() || (arg.CurrentPrice != nil && arg.CurrentPrice.IsNegative()) {
		return domain.Investment{}, domain.ErrNegativePrice
	}

	if arg.PurchaseDate.IsZero() {
		y, m, d := time.Now().UTC().Date()
		arg.PurchaseDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	arg.Symbol = strings.ToUpper(arg.Symbol)

	return s.repo.Create(ctx, arg)
}

// Get returns the investment of the owner.
func (s *Service) Get(ctx context.Context, owner uuid.UUID, id int64) (domain.Investment, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Investment{}, err
	}

	if inv.Owner != owner {
		return domain.Investment{}, domain.ErrInvestmentNotFound
	}

	return inv, nil
}

// List returns the investments of the owner.
func (s *Service) List(ctx context.Context, arg domain.ListInvestmentsParams) ([]domain.Investment, error) {
	if arg.InvestmentType != "" {
		if _, ok := domain.InvestmentTypes[arg.InvestmentType]; !ok {
			return nil, domain.ErrInvalidInvestmentType
		}
	}

	return s.repo.List(ctx, arg)
}

// UpdateCurrentPrice records the latest price of the owner's investment.
func (s *Service) UpdateCurrentPrice(ctx context.Context, owner uuid.UUID, id int64, price decimal.Decimal) (domain.Investment, error) {
	if price.IsNegative() {
		return domain.Investment{}, domain.ErrNegativePrice
	}

	if _, err := s.Get(ctx, owner, id); err != nil {
		return domain.Investment{}, err
	}

	return s.repo.UpdateCurrentPrice(ctx, id, price)
}

// Delete deletes the investment of the owner.
func (s *Service) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	if _, err := s.Get(ctx, owner, id); err != nil {
		return err
	}

	return s.repo.Delete(ctx, id)
}
