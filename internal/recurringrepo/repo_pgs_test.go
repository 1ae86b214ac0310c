//go:build integration

package recurringrepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/accountrepo"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/integrationtest"
	"github.com/go-petr/lifemanager/internal/recurringrepo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testDSN string

func TestMain(m *testing.M) {
	integrationtest.RunMain(m, &testDSN)
}

func TestCreateAndList(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := recurringrepo.NewTxRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)
	account := integrationtest.SeedAccount(t, tx, user.ID, "0")

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	rec, err := repo.Create(context.Background(), domain.CreateRecurringParams{
		Owner:     user.ID,
		AccountID: account.ID,
		Name:      "Salary",
		Amount:    decimal.NewFromInt(3000),
		EntryType: domain.EntryTypeIncome,
		Frequency: domain.FrequencyMonthly,
		StartDate: start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.True(t, rec.IsActive)
	require.Nil(t, rec.LastProcessed)
	require.NotNil(t, rec.EndDate)
	require.True(t, rec.StartDate.Equal(start))

	list, err := repo.List(context.Background(), user.ID, domain.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)

	active, err := repo.ListActive(context.Background(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Contains(t, ids(active), rec.ID)

	after, err := repo.ListActive(context.Background(), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotContains(t, ids(after), rec.ID)
}

func ids(items []domain.Recurring) []int64 {
	out := make([]int64, 0, len(items))
	for _, r := range items {
		out = append(out, r.ID)
	}

	return out
}

func TestMaterializeIsIdempotent(t *testing.T) {
	db := integrationtest.SetupDB(t, testDSN)
	repo := recurringrepo.NewRepoPGS(db)

	user := integrationtest.SeedUser(t, db, false)
	account := integrationtest.SeedAccount(t, db, user.ID, "100")

	rec, err := repo.Create(context.Background(), domain.CreateRecurringParams{
		Owner:     user.ID,
		AccountID: account.ID,
		Name:      "Gym",
		Amount:    decimal.NewFromInt(40),
		EntryType: domain.EntryTypePayment,
		Frequency: domain.FrequencyMonthly,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	day := time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC)

	got, err := repo.Materialize(context.Background(), rec, day)
	require.NoError(t, err)
	require.True(t, got.Entry.Amount.Equal(decimal.NewFromInt(-40)))
	require.Equal(t, domain.EntryTypePayment, got.Entry.EntryType)
	require.True(t, got.Account.Balance.Equal(decimal.NewFromInt(60)))

	_, err = repo.Materialize(context.Background(), rec, day)
	require.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	stored, err := accountrepo.NewRepoPGS(db).Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.True(t, stored.Balance.Equal(decimal.NewFromInt(60)), "duplicate run must not change the balance, got %v", stored.Balance)

	list, err := repo.List(context.Background(), user.ID, domain.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastProcessed)
	require.Equal(t, "2024-02-01", list[0].LastProcessed.Format("2006-01-02"))
}
