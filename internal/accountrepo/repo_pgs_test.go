//go:build integration

package accountrepo_test

import (
	"context"
	"testing"

	"github.com/go-petr/lifemanager/internal/accountrepo"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/integrationtest"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testDSN string

func TestMain(m *testing.M) {
	integrationtest.RunMain(m, &testDSN)
}

func TestCreate(t *testing.T) {
	testCases := []struct {
		name    string
		owner   func(t *testing.T, db dbpkg.SQLInterface) uuid.UUID
		number  func(t *testing.T, db dbpkg.SQLInterface, owner uuid.UUID) string
		wantErr error
	}{
		{
			name: "OK",
			owner: func(t *testing.T, db dbpkg.SQLInterface) uuid.UUID {
				return integrationtest.SeedUser(t, db, false).ID
			},
			number: func(t *testing.T, db dbpkg.SQLInterface, owner uuid.UUID) string {
				return randompkg.AccountNumber()
			},
		},
		{
			name: "ErrOwnerNotFound",
			owner: func(t *testing.T, db dbpkg.SQLInterface) uuid.UUID {
				return uuid.New()
			},
			number: func(t *testing.T, db dbpkg.SQLInterface, owner uuid.UUID) string {
				return randompkg.AccountNumber()
			},
			wantErr: domain.ErrOwnerNotFound,
		},
		{
			name: "ErrAccountNumberExists",
			owner: func(t *testing.T, db dbpkg.SQLInterface) uuid.UUID {
				return integrationtest.SeedUser(t, db, false).ID
			},
			number: func(t *testing.T, db dbpkg.SQLInterface, owner uuid.UUID) string {
				return integrationtest.SeedAccount(t, db, owner, "0").AccountNumber
			},
			wantErr: domain.ErrAccountNumberExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			tx := integrationtest.SetupTX(t, testDSN)
			repo := accountrepo.NewRepoPGS(tx)

			owner := tc.owner(t, tx)
			arg := domain.CreateAccountParams{
				Owner:         owner,
				Name:          randompkg.Name(),
				AccountNumber: tc.number(t, tx, owner),
				BankName:      "Test Bank",
			}

			got, err := repo.Create(context.Background(), arg)
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantErr != nil {
				return
			}

			want := domain.Account{
				Owner:         arg.Owner,
				Name:          arg.Name,
				AccountNumber: arg.AccountNumber,
				BankName:      arg.BankName,
				Balance:       decimal.Zero,
				IsActive:      true,
			}

			if diff := cmp.Diff(want, got,
				cmpopts.IgnoreFields(domain.Account{}, "ID", "CreatedAt", "UpdatedAt"),
				cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
			); diff != "" {
				t.Errorf("repo.Create(context.Background(), %+v) returned unexpected difference (-want +got):\n%s", arg, diff)
			}
		})
	}
}

func TestGetAndAddBalance(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := accountrepo.NewRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)
	account := integrationtest.SeedAccount(t, tx, user.ID, "100.00")

	got, err := repo.GetForUpdate(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, account.AccountNumber, got.AccountNumber)

	updated, err := repo.AddBalance(context.Background(), decimal.RequireFromString("-30.50"), account.ID)
	require.NoError(t, err)
	require.True(t, updated.Balance.Equal(decimal.RequireFromString("69.50")), "balance = %v", updated.Balance)

	_, err = repo.Get(context.Background(), account.ID+1000)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)

	_, err = repo.AddBalance(context.Background(), decimal.NewFromInt(1), account.ID+1000)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestListSoftDeleteAndPurge(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, testDSN)
	repo := accountrepo.NewRepoPGS(tx)

	user := integrationtest.SeedUser(t, tx, false)
	other := integrationtest.SeedUser(t, tx, false)

	a1 := integrationtest.SeedAccount(t, tx, user.ID, "10")
	a2 := integrationtest.SeedAccount(t, tx, user.ID, "20")
	integrationtest.SeedAccount(t, tx, other.ID, "30")

	list, err := repo.List(context.Background(), user.ID, domain.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, repo.SoftDelete(context.Background(), a1.ID))
	require.ErrorIs(t, repo.SoftDelete(context.Background(), a1.ID), domain.ErrAccountNotFound)

	deleted, err := repo.Get(context.Background(), a1.ID)
	require.NoError(t, err)
	require.False(t, deleted.IsActive)

	list, err = repo.List(context.Background(), user.ID, domain.ListParams{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, a2.ID, list[0].ID)

	require.NoError(t, repo.Purge(context.Background(), a2.ID))

	_, err = repo.Get(context.Background(), a2.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
