package recurringservice

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/lockpkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func runLocked(_ context.Context, _ string, fn func(context.Context) error) error {
	return fn(context.Background())
}

func TestCreate(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)

	valid := domain.CreateRecurringParams{
		Owner:     owner,
		AccountID: 1,
		Name:      "Rent",
		Amount:    decimal.NewFromInt(900),
		EntryType: domain.EntryTypePayment,
		Frequency: domain.FrequencyMonthly,
		StartDate: start,
	}

	with := func(modify func(arg *domain.CreateRecurringParams)) domain.CreateRecurringParams {
		arg := valid
		modify(&arg)

		return arg
	}

	testCases := []struct {
		name       string
		arg        domain.CreateRecurringParams
		accountErr error
		wantCreate bool
		wantError  error
	}{
		{name: "OK", arg: valid, wantCreate: true},
		{
			name:      "InvalidFrequency",
			arg:       with(func(arg *domain.CreateRecurringParams) { arg.Frequency = "HOURLY" }),
			wantError: domain.ErrInvalidFrequency,
		},
		{
			name:      "TransferType",
			arg:       with(func(arg *domain.CreateRecurringParams) { arg.EntryType = domain.EntryTypeTransfer }),
			wantError: domain.ErrInvalidEntryType,
		},
		{
			name:      "ZeroAmount",
			arg:       with(func(arg *domain.CreateRecurringParams) { arg.Amount = decimal.Zero }),
			wantError: domain.ErrNegativeAmount,
		},
		{
			name:      "EndBeforeStart",
			arg:       with(func(arg *domain.CreateRecurringParams) { arg.EndDate = &before }),
			wantError: domain.ErrInvalidDateRange,
		},
		{
			name:       "ForeignAccount",
			arg:        valid,
			accountErr: domain.ErrAccountOwnerMismatch,
			wantError:  domain.ErrAccountOwnerMismatch,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repoMock := NewMockRepo(ctrl)
			accountMock := NewMockAccountService(ctrl)

			if tc.wantError == nil || tc.accountErr != nil {
				accountMock.EXPECT().Get(gomock.Any(), owner, tc.arg.AccountID).Times(1).Return(domain.Account{}, tc.accountErr)
			}

			if tc.wantCreate {
				repoMock.EXPECT().Create(gomock.Any(), gomock.Eq(tc.arg)).Times(1).Return(domain.Recurring{ID: 1, Name: tc.arg.Name}, nil)
			} else {
				repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			}

			_, err := New(repoMock, accountMock, NewMockLocker(ctrl)).Create(context.Background(), tc.arg)
			if err != tc.wantError {
				t.Fatalf("recurringService.Create(context.Background(), %+v) returned error: %v, want %v", tc.arg, err, tc.wantError)
			}
		})
	}
}

func TestProcess(t *testing.T) {
	t.Parallel()

	day := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	yesterday := day.AddDate(0, 0, -1)

	never := domain.Recurring{ID: 1, Frequency: domain.FrequencyMonthly, StartDate: start, IsActive: true}
	daily := domain.Recurring{ID: 2, Frequency: domain.FrequencyDaily, StartDate: start, LastProcessed: &yesterday, IsActive: true}
	notDue := domain.Recurring{ID: 3, Frequency: domain.FrequencyWeekly, StartDate: start, LastProcessed: &yesterday, IsActive: true}
	failing := domain.Recurring{ID: 4, Frequency: domain.FrequencyDaily, StartDate: start, IsActive: true}

	testCases := []struct {
		name       string
		buildStubs func(repo *MockRepo, locker *MockLocker)
		want       domain.ProcessResult
		wantError  error
	}{
		{
			name: "OK",
			buildStubs: func(repo *MockRepo, locker *MockLocker) {
				locker.EXPECT().WithLock(gomock.Any(), LockName, gomock.Any()).Times(1).DoAndReturn(runLocked)
				repo.EXPECT().ListActive(gomock.Any(), day).Times(1).Return([]domain.Recurring{never, daily, notDue, failing}, nil)
				repo.EXPECT().Materialize(gomock.Any(), never, day).Times(1).Return(domain.AccountTxResult{}, nil)
				repo.EXPECT().Materialize(gomock.Any(), daily, day).Times(1).Return(domain.AccountTxResult{}, domain.ErrAlreadyProcessed)
				repo.EXPECT().Materialize(gomock.Any(), failing, day).Times(1).Return(domain.AccountTxResult{}, domain.ErrInsufficientFunds)
			},
			want: domain.ProcessResult{Processed: 1, Skipped: 1, Failed: 1},
		},
		{
			name: "LockHeld",
			buildStubs: func(repo *MockRepo, locker *MockLocker) {
				locker.EXPECT().WithLock(gomock.Any(), LockName, gomock.Any()).Times(1).Return(lockpkg.ErrNotAcquired)
				repo.EXPECT().ListActive(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: lockpkg.ErrNotAcquired,
		},
		{
			name: "ListFails",
			buildStubs: func(repo *MockRepo, locker *MockLocker) {
				locker.EXPECT().WithLock(gomock.Any(), LockName, gomock.Any()).Times(1).DoAndReturn(runLocked)
				repo.EXPECT().ListActive(gomock.Any(), day).Times(1).Return(nil, errorspkg.ErrInternal)
				repo.EXPECT().Materialize(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repoMock := NewMockRepo(ctrl)
			lockerMock := NewMockLocker(ctrl)
			tc.buildStubs(repoMock, lockerMock)

			got, err := New(repoMock, NewMockAccountService(ctrl), lockerMock).Process(context.Background(), day)
			if err != tc.wantError {
				t.Fatalf("recurringService.Process(context.Background(), %v) returned error: %v, want %v", day, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("recurringService.Process() returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}
