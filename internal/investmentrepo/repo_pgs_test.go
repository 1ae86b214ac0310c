//go:build integration

package investmentrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/integrationtest"
	"github.com/go-petr/lifemanager/internal/investmentrepo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testDSN string

func TestMain(m *testing.M) {
	integrationtest.RunMain(m, &testDSN)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateGetList(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := investmentrepo.NewRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)
	bought := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	current := dec("120.50")

	stock, err := repo.Create(context.Background(), domain.CreateInvestmentParams{
		Owner:          user.ID,
		InvestmentType: domain.InvestmentTypeStock,
		Name:           "Acme Corp",
		Symbol:         "ACME",
		PurchaseDate:   bought,
		Quantity:       dec("2.5"),
		PurchasePrice:  dec("100"),
		CurrentPrice:   &current,
	})
	require.NoError(t, err)
	require.NotZero(t, stock.ID)
	require.True(t, stock.PurchaseDate.Equal(bought))
	require.NotNil(t, stock.ProfitLoss)
	require.True(t, stock.ProfitLoss.Equal(dec("51.25")), "profit_loss = %v", stock.ProfitLoss)

	gold, err := repo.Create(context.Background(), domain.CreateInvestmentParams{
		Owner:          user.ID,
		InvestmentType: domain.InvestmentTypeGold,
		Name:           "Bullion",
		PurchaseDate:   bought.AddDate(0, 1, 0),
		Quantity:       dec("1"),
		PurchasePrice:  dec("1900"),
	})
	require.NoError(t, err)
	require.Nil(t, gold.CurrentPrice)
	require.Nil(t, gold.ProfitLoss)

	got, err := repo.Get(context.Background(), stock.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.Owner)
	require.True(t, got.ProfitLoss.Equal(dec("51.25")))

	all, err := repo.List(context.Background(), domain.ListInvestmentsParams{Owner: user.ID, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, gold.ID, all[0].ID, "newest purchase first")

	stocks, err := repo.List(context.Background(), domain.ListInvestmentsParams{
		Owner: user.ID, InvestmentType: domain.InvestmentTypeStock, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, stocks, 1)
	require.Equal(t, stock.ID, stocks[0].ID)

	others, err := repo.List(context.Background(), domain.ListInvestmentsParams{Owner: uuid.New(), Limit: 10})
	require.NoError(t, err)
	require.Empty(t, others)

	_, err = repo.Get(context.Background(), stock.ID+1000)
	require.ErrorIs(t, err, domain.ErrInvestmentNotFound)
}

func TestUpdateCurrentPriceAndDelete(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := investmentrepo.NewRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)

	inv, err := repo.Create(context.Background(), domain.CreateInvestmentParams{
		Owner:          user.ID,
		InvestmentType: domain.InvestmentTypeCrypto,
		Name:           "Bitcoin",
		Symbol:         "BTC",
		PurchaseDate:   time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Quantity:       dec("0.0125"),
		PurchasePrice:  dec("40000"),
	})
	require.NoError(t, err)

	updated, err := repo.UpdateCurrentPrice(context.Background(), inv.ID, dec("36000"))
	require.NoError(t, err)
	require.True(t, updated.CurrentPrice.Equal(dec("36000")))
	require.True(t, updated.ProfitLoss.Equal(dec("-50")), "profit_loss = %v", updated.ProfitLoss)

	_, err = repo.UpdateCurrentPrice(context.Background(), inv.ID+1000, dec("1"))
	require.ErrorIs(t, err, domain.ErrInvestmentNotFound)

	require.NoError(t, repo.Delete(context.Background(), inv.ID))
	require.ErrorIs(t, repo.Delete(context.Background(), inv.ID), domain.ErrInvestmentNotFound)

	_, err = repo.Get(context.Background(), inv.ID)
	require.ErrorIs(t, err, domain.ErrInvestmentNotFound)
}

func TestUpdateCurrentPriceNegative(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := investmentrepo.NewRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)

	inv, err := repo.Create(context.Background(), domain.CreateInvestmentParams{
		Owner:          user.ID,
		InvestmentType: domain.InvestmentTypeETF,
		Name:           "World Index",
		PurchaseDate:   time.Now().UTC(),
		Quantity:       dec("3"),
		PurchasePrice:  dec("80"),
	})
	require.NoError(t, err)

	// The failed statement aborts the transaction, nothing may follow it.
	_, err = repo.UpdateCurrentPrice(context.Background(), inv.ID, dec("-1"))
	require.ErrorIs(t, err, domain.ErrNegativePrice)
}

func TestCreateConstraints(t *testing.T) {
	valid := func(owner uuid.UUID) domain.CreateInvestmentParams {
		return domain.CreateInvestmentParams{
			Owner:          owner,
			InvestmentType: domain.InvestmentTypeBond,
			Name:           "Treasury",
			PurchaseDate:   time.Now().UTC(),
			Quantity:       dec("1"),
			PurchasePrice:  dec("1000"),
		}
	}

	testCases := []struct {
		name    string
		modify  func(arg *domain.CreateInvestmentParams)
		wantErr error
	}{
		{
			name:    "UnknownType",
			modify:  func(arg *domain.CreateInvestmentParams) { arg.InvestmentType = "OPTION" },
			wantErr: domain.ErrInvalidInvestmentType,
		},
		{
			name:    "ZeroQuantity",
			modify:  func(arg *domain.CreateInvestmentParams) { arg.Quantity = decimal.Zero },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "NegativePrice",
			modify:  func(arg *domain.CreateInvestmentParams) { arg.PurchasePrice = dec("-1") },
			wantErr: domain.ErrNegativePrice,
		},
		{
			name:    "UnknownOwner",
			modify:  func(arg *domain.CreateInvestmentParams) { arg.Owner = uuid.New() },
			wantErr: domain.ErrOwnerNotFound,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tx := integrationtest.SetupTX(t, testDSN)
			user := integrationtest.SeedUser(t, tx, false)

			arg := valid(user.ID)
			tc.modify(&arg)

			_, err := investmentrepo.NewRepoPGS(tx).Create(context.Background(), arg)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
