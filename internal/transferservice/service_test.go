package transferservice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/eventpkg"
	"github.com/go-petr/lifemanager/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type event struct {
	eventType string
	key       string
	payload   any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event{eventType, key, payload})

	return p.err
}

func randomAccount(id int64, owner uuid.UUID, balance string) domain.Account {
	return domain.Account{
		ID:        id,
		Owner:     owner,
		Name:      randompkg.Name(),
		Balance:   decimal.RequireFromString(balance),
		IsActive:  true,
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	testAccount1 := randomAccount(1, owner, "1000")
	testAccount2 := randomAccount(2, owner, "500")
	testAmount := decimal.NewFromInt(200)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	validArg := domain.CreateTransferParams{
		Owner:                owner,
		SourceAccountID:      testAccount1.ID,
		DestinationAccountID: testAccount2.ID,
		Amount:               testAmount,
		Description:          "savings",
		Date:                 date,
	}

	testTxResult := domain.TransferTxResult{
		Transfer: domain.Transfer{
			ID:                   42,
			Owner:                owner,
			SourceAccountID:      testAccount1.ID,
			DestinationAccountID: testAccount2.ID,
			Amount:               testAmount,
			Description:          "savings",
			Date:                 date,
			IsActive:             true,
		},
		SourceAccount:      testAccount1,
		DestinationAccount: testAccount2,
		SourceEntry:        domain.Entry{AccountID: testAccount1.ID, Amount: testAmount.Neg()},
		DestinationEntry:   domain.Entry{AccountID: testAccount2.ID, Amount: testAmount},
	}

	with := func(modify func(arg *domain.CreateTransferParams)) domain.CreateTransferParams {
		arg := validArg
		modify(&arg)

		return arg
	}

	testCases := []struct {
		name          string
		arg           domain.CreateTransferParams
		publishErr    error
		buildStubs    func(repo *MockRepo, accountService *MockAccountService)
		checkResponse func(t *testing.T, res domain.TransferTxResult, err error, p *fakePublisher)
	}{
		{
			name: "Zero amount",
			arg:  with(func(arg *domain.CreateTransferParams) { arg.Amount = decimal.Zero }),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrNegativeAmount)
			},
		},
		{
			name: "Same account",
			arg:  with(func(arg *domain.CreateTransferParams) { arg.DestinationAccountID = arg.SourceAccountID }),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrSameAccount)
			},
		},
		{
			name: "Source account of another owner",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountOwnerMismatch)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrAccountOwnerMismatch)
			},
		},
		{
			name: "Insufficient funds",
			arg:  with(func(arg *domain.CreateTransferParams) { arg.Amount = decimal.NewFromInt(10000) }),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).Times(1).Return(testAccount2, nil)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			},
		},
		{
			name: "Foreign destination is reported before insufficient funds",
			arg:  with(func(arg *domain.CreateTransferParams) { arg.Amount = decimal.NewFromInt(10000) }),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountOwnerMismatch)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrAccountOwnerMismatch)
			},
		},
		{
			name: "Destination not found",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(0)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, _ *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, domain.ErrAccountNotFound)
			},
		},
		{
			name: "Transient store failure",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).Times(1).Return(testAccount2, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Eq(validArg)).Times(1).
					Return(domain.TransferTxResult{}, errorspkg.ErrTransient)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, p *fakePublisher) {
				require.Empty(t, res)
				require.ErrorIs(t, err, errorspkg.ErrTransient)
				require.Empty(t, p.events)
			},
		},
		{
			name: "OK",
			arg:  validArg,
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).Times(1).Return(testAccount2, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Eq(validArg)).Times(1).Return(testTxResult, nil)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, p *fakePublisher) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
				require.Len(t, p.events, 1)
				require.Equal(t, eventpkg.TransferCompleted, p.events[0].eventType)
				require.Equal(t, "42", p.events[0].key)
				require.Equal(t, testTxResult.Transfer, p.events[0].payload)
			},
		},
		{
			name:       "Publish failure keeps the transfer",
			arg:        validArg,
			publishErr: errors.New("broker down"),
			buildStubs: func(repo *MockRepo, accountService *MockAccountService) {
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount1.ID).Times(1).Return(testAccount1, nil)
				accountService.EXPECT().Get(gomock.Any(), owner, testAccount2.ID).Times(1).Return(testAccount2, nil)
				repo.EXPECT().Transfer(gomock.Any(), gomock.Any()).Times(1).Return(testTxResult, nil)
			},
			checkResponse: func(t *testing.T, res domain.TransferTxResult, err error, p *fakePublisher) {
				require.NoError(t, err)
				require.Equal(t, testTxResult, res)
				require.Len(t, p.events, 1)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transferRepo := NewMockRepo(ctrl)
			accountService := NewMockAccountService(ctrl)
			publisher := &fakePublisher{err: tc.publishErr}
			transferService := New(transferRepo, accountService, publisher)

			tc.buildStubs(transferRepo, accountService)

			res, err := transferService.Transfer(context.Background(), tc.arg)
			tc.checkResponse(t, res, err, publisher)
		})
	}
}

func TestTransferDefaultsDate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	source := randomAccount(1, owner, "100")
	destination := randomAccount(2, owner, "0")

	transferRepo := NewMockRepo(ctrl)
	accountService := NewMockAccountService(ctrl)

	accountService.EXPECT().Get(gomock.Any(), owner, source.ID).Return(source, nil)
	accountService.EXPECT().Get(gomock.Any(), owner, destination.ID).Return(destination, nil)
	transferRepo.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, arg domain.CreateTransferParams) (domain.TransferTxResult, error) {
			require.False(t, arg.Date.IsZero())
			require.Equal(t, time.UTC, arg.Date.Location())

			return domain.TransferTxResult{}, nil
		})

	_, err := New(transferRepo, accountService, eventpkg.LogPublisher{}).Transfer(context.Background(), domain.CreateTransferParams{
		Owner:                owner,
		SourceAccountID:      source.ID,
		DestinationAccountID: destination.ID,
		Amount:               decimal.NewFromInt(10),
	})
	require.NoError(t, err)
}

func TestGet(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	transfer := domain.Transfer{ID: 5, Owner: owner, IsActive: true}

	testCases := []struct {
		name      string
		owner     uuid.UUID
		stored    domain.Transfer
		storeErr  error
		wantError error
	}{
		{name: "OK", owner: owner, stored: transfer},
		{name: "OtherOwner", owner: uuid.New(), stored: transfer, wantError: domain.ErrTransferNotFound},
		{name: "Deleted", owner: owner, stored: domain.Transfer{ID: 5, Owner: owner}, wantError: domain.ErrTransferNotFound},
		{name: "NotFound", owner: owner, storeErr: domain.ErrTransferNotFound, wantError: domain.ErrTransferNotFound},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			transferRepo := NewMockRepo(ctrl)
			transferRepo.EXPECT().Get(gomock.Any(), transfer.ID).Times(1).Return(tc.stored, tc.storeErr)

			got, err := New(transferRepo, NewMockAccountService(ctrl), &fakePublisher{}).Get(context.Background(), tc.owner, transfer.ID)
			if tc.wantError != nil {
				require.ErrorIs(t, err, tc.wantError)
				require.Empty(t, got)

				return
			}

			require.NoError(t, err)
			require.Equal(t, transfer, got)
		})
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	transfer := domain.Transfer{ID: 5, Owner: owner, IsActive: true}

	transferRepo := NewMockRepo(ctrl)
	gomock.InOrder(
		transferRepo.EXPECT().Get(gomock.Any(), transfer.ID).Return(transfer, nil),
		transferRepo.EXPECT().SoftDelete(gomock.Any(), transfer.ID).Return(nil),
	)

	err := New(transferRepo, NewMockAccountService(ctrl), &fakePublisher{}).Delete(context.Background(), owner, transfer.ID)
	require.NoError(t, err)
}
