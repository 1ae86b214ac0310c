package loginservice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/mailpkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

const otpTTL = 5 * time.Minute

type recordingSender struct {
	mu   sync.Mutex
	sent []mailpkg.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg mailpkg.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, msg)

	return nil
}

type mocks struct {
	users    *MockUserService
	sessions *MockSessionService
	otps     *MockOTPRepo
	pending  *MockPendingRepo
}

func newUser(use2FA bool) domain.User {
	return domain.User{
		ID:       uuid.New(),
		Email:    "jane@example.com",
		Name:     "Jane",
		IsActive: true,
		Use2FA:   use2FA,
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()

	client := domain.ClientInfo{UserAgent: "go-test", ClientIP: "127.0.0.1"}
	tokens := domain.SessionTokens{SessionID: uuid.New(), AccessToken: "access", RefreshToken: "refresh"}
	plainUser := newUser(false)
	twoFAUser := newUser(true)
	errRedis := errors.New("redis down")

	testCases := []struct {
		name       string
		user       domain.User
		mailErr    error
		buildStubs func(m mocks)
		checkMail  func(t *testing.T, sent []mailpkg.Message)
		want       domain.LoginResult
		wantError  error
	}{
		{
			name: "WithoutTwoFactor",
			user: plainUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), plainUser.Email, "password").Times(1).Return(plainUser, nil)
				m.sessions.EXPECT().Create(gomock.Any(), plainUser.ID, client).Times(1).Return(tokens, nil)
				m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
				m.pending.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkMail: func(t *testing.T, sent []mailpkg.Message) {
				if len(sent) != 0 {
					t.Errorf("sent %d emails, want none", len(sent))
				}
			},
			want: domain.LoginResult{User: plainUser.WithoutPassword(), Tokens: &tokens},
		},
		{
			name: "WithTwoFactor",
			user: twoFAUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), twoFAUser.Email, "password").Times(1).Return(twoFAUser, nil)
				m.otps.EXPECT().
					Create(gomock.Any(), gomock.AssignableToTypeOf(domain.CreateOTPParams{})).
					Times(1).
					DoAndReturn(func(_ context.Context, arg domain.CreateOTPParams) (domain.OTP, error) {
						return domain.OTP{ID: 1, UserID: arg.UserID, Code: arg.Code, ExpiresAt: arg.ExpiresAt}, nil
					})
				m.pending.EXPECT().Set(gomock.Any(), twoFAUser.ID, otpTTL).Times(1).Return(nil)
				m.sessions.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkMail: func(t *testing.T, sent []mailpkg.Message) {
				if len(sent) != 1 {
					t.Fatalf("sent %d emails, want exactly one", len(sent))
				}

				if sent[0].To != twoFAUser.Email || sent[0].Subject != OTPSubject {
					t.Errorf("sent %+v, want an email to %v with subject %q", sent[0], twoFAUser.Email, OTPSubject)
				}

				if !strings.Contains(sent[0].Body, "5 minutes") {
					t.Errorf("body %q does not state the code validity", sent[0].Body)
				}
			},
			want: domain.LoginResult{User: twoFAUser.WithoutPassword(), OTPRequired: true},
		},
		{
			name: "CodeCollisionRetried",
			user: twoFAUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), twoFAUser.Email, "password").Times(1).Return(twoFAUser, nil)
				gomock.InOrder(
					m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(2).Return(domain.OTP{}, domain.ErrOTPCodeExists),
					m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.OTP{ID: 3, Code: "Ab12Cd"}, nil),
				)
				m.pending.EXPECT().Set(gomock.Any(), twoFAUser.ID, otpTTL).Times(1).Return(nil)
			},
			checkMail: func(t *testing.T, sent []mailpkg.Message) {
				if len(sent) != 1 || !strings.Contains(sent[0].Body, "Ab12Cd") {
					t.Errorf("sent %+v, want one email with the stored code", sent)
				}
			},
			want: domain.LoginResult{User: twoFAUser.WithoutPassword(), OTPRequired: true},
		},
		{
			name: "CodeCollisionsExhausted",
			user: twoFAUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), twoFAUser.Email, "password").Times(1).Return(twoFAUser, nil)
				m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(maxCodeAttempts).Return(domain.OTP{}, domain.ErrOTPCodeExists)
				m.pending.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrOTPCodeExists,
		},
		{
			name:    "MailUnavailable",
			user:    twoFAUser,
			mailErr: mailpkg.ErrUnavailable,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), twoFAUser.Email, "password").Times(1).Return(twoFAUser, nil)
				m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.OTP{ID: 7, Code: "Zz99Yy"}, nil)
				m.otps.EXPECT().Invalidate(gomock.Any(), int64(7)).Times(1).Return(nil)
				m.pending.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrMailUnavailable,
		},
		{
			name: "PendingMarkerFails",
			user: twoFAUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().CheckPassword(gomock.Any(), twoFAUser.Email, "password").Times(1).Return(twoFAUser, nil)
				m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(1).Return(domain.OTP{ID: 8, Code: "Qq11Ww"}, nil)
				m.pending.EXPECT().Set(gomock.Any(), twoFAUser.ID, otpTTL).Times(1).Return(errRedis)
				m.otps.EXPECT().Invalidate(gomock.Any(), int64(8)).Times(1).Return(nil)
				m.sessions.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			checkMail: func(t *testing.T, sent []mailpkg.Message) {
				if len(sent) != 1 {
					t.Errorf("sent %d emails, want exactly one", len(sent))
				}
			},
			wantError: errRedis,
		},
		{
			name: "InvalidCredentials",
			user: plainUser,
			buildStubs: func(m mocks) {
				m.users.EXPECT().
					CheckPassword(gomock.Any(), plainUser.Email, "password").
					Times(1).
					Return(domain.User{}, domain.ErrInvalidCredentials)
				m.sessions.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				m.otps.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidCredentials,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{
				users:    NewMockUserService(ctrl),
				sessions: NewMockSessionService(ctrl),
				otps:     NewMockOTPRepo(ctrl),
				pending:  NewMockPendingRepo(ctrl),
			}
			tc.buildStubs(m)

			sender := &recordingSender{err: tc.mailErr}
			loginService := New(m.users, m.sessions, m.otps, m.pending, sender, otpTTL)

			got, err := loginService.Login(context.Background(), tc.user.Email, "password", client)
			if !errors.Is(err, tc.wantError) {
				t.Fatalf("loginService.Login(context.Background(), %q, %q, %v) returned error: %v, want %v",
					tc.user.Email, "password", client, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("loginService.Login() returned unexpected difference (-want +got):\n%s", diff)
			}

			if tc.checkMail != nil {
				tc.checkMail(t, sender.sent)
			}
		})
	}
}

func TestVerifyOTP(t *testing.T) {
	t.Parallel()

	client := domain.ClientInfo{UserAgent: "go-test", ClientIP: "127.0.0.1"}
	tokens := domain.SessionTokens{SessionID: uuid.New(), AccessToken: "access", RefreshToken: "refresh"}
	user := newUser(true).WithoutPassword()
	code := "Ab12Cd"

	testCases := []struct {
		name       string
		buildStubs func(m mocks)
		want       domain.LoginResult
		wantError  error
	}{
		{
			name: "OK",
			buildStubs: func(m mocks) {
				gomock.InOrder(
					m.pending.EXPECT().Check(gomock.Any(), user.ID).Times(1).Return(nil),
					m.otps.EXPECT().Consume(gomock.Any(), user.ID, code, gomock.Any()).Times(1).Return(domain.OTP{IsUsed: true}, nil),
					m.pending.EXPECT().Delete(gomock.Any(), user.ID).Times(1).Return(nil),
					m.users.EXPECT().Get(gomock.Any(), user.ID).Times(1).Return(user, nil),
					m.sessions.EXPECT().Create(gomock.Any(), user.ID, client).Times(1).Return(tokens, nil),
				)
			},
			want: domain.LoginResult{User: user, Tokens: &tokens},
		},
		{
			name: "NoPendingLogin",
			buildStubs: func(m mocks) {
				m.pending.EXPECT().Check(gomock.Any(), user.ID).Times(1).Return(domain.ErrNoPendingLogin)
				m.otps.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrNoPendingLogin,
		},
		{
			name: "ExpiredOTP",
			buildStubs: func(m mocks) {
				m.pending.EXPECT().Check(gomock.Any(), user.ID).Times(1).Return(nil)
				m.otps.EXPECT().Consume(gomock.Any(), user.ID, code, gomock.Any()).Times(1).Return(domain.OTP{}, domain.ErrExpiredOTP)
				m.pending.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
				m.sessions.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrExpiredOTP,
		},
		{
			name: "InvalidOTP",
			buildStubs: func(m mocks) {
				m.pending.EXPECT().Check(gomock.Any(), user.ID).Times(1).Return(nil)
				m.otps.EXPECT().Consume(gomock.Any(), user.ID, code, gomock.Any()).Times(1).Return(domain.OTP{}, domain.ErrInvalidOTP)
				m.sessions.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantError: domain.ErrInvalidOTP,
		},
		{
			name: "MarkerDeleteFails",
			buildStubs: func(m mocks) {
				m.pending.EXPECT().Check(gomock.Any(), user.ID).Times(1).Return(nil)
				m.otps.EXPECT().Consume(gomock.Any(), user.ID, code, gomock.Any()).Times(1).Return(domain.OTP{IsUsed: true}, nil)
				m.pending.EXPECT().Delete(gomock.Any(), user.ID).Times(1).Return(errors.New("redis down"))
				m.users.EXPECT().Get(gomock.Any(), user.ID).Times(1).Return(user, nil)
				m.sessions.EXPECT().Create(gomock.Any(), user.ID, client).Times(1).Return(tokens, nil)
			},
			want: domain.LoginResult{User: user, Tokens: &tokens},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			m := mocks{
				users:    NewMockUserService(ctrl),
				sessions: NewMockSessionService(ctrl),
				otps:     NewMockOTPRepo(ctrl),
				pending:  NewMockPendingRepo(ctrl),
			}
			tc.buildStubs(m)

			loginService := New(m.users, m.sessions, m.otps, m.pending, &recordingSender{}, otpTTL)

			got, err := loginService.VerifyOTP(context.Background(), user.ID, code, client)
			if err != tc.wantError {
				t.Fatalf("loginService.VerifyOTP(context.Background(), %v, %q, %v) returned error: %v, want %v",
					user.ID, code, client, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("loginService.VerifyOTP() returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}
