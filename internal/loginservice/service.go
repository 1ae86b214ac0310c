// Package loginservice drives the password and one-time code login flow.
package loginservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/mailpkg"
	"github.com/go-petr/lifemanager/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxCodeAttempts bounds the redraws after a code collision.
const maxCodeAttempts = 5

// OTPSubject is the subject of the login code email.
const OTPSubject = "Your OTP for Login"

//go:generate mockgen -source service.go -destination service_mock.go -package loginservice

// UserService provides user checks needed by login service layer.
type UserService interface {
	CheckPassword(ctx context.Context, email, pass string) (domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (domain.UserWithoutPassword, error)
}

// SessionService issues token pairs.
type SessionService interface {
	Create(ctx context.Context, userID uuid.UUID, client domain.ClientInfo) (domain.SessionTokens, error)
}

// OTPRepo stores one-time codes.
type OTPRepo interface {
	Create(ctx context.Context, arg domain.CreateOTPParams) (domain.OTP, error)
	Consume(ctx context.Context, userID uuid.UUID, code string, now time.Time) (domain.OTP, error)
	Invalidate(ctx context.Context, id int64) error
}

// PendingRepo stores the marker of a login awaiting its code.
type PendingRepo interface {
	Set(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	Check(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Service facilitates login service layer logic.
type Service struct {
	users    UserService
	sessions SessionService
	otps     OTPRepo
	pending  PendingRepo
	mailer   mailpkg.Sender
	otpTTL   time.Duration
}

// New returns login service.
func New(us UserService, ss SessionService, or OTPRepo, pr PendingRepo, mailer mailpkg.Sender, otpTTL time.Duration) *Service {
	return &Service{
		users:    us,
		sessions: ss,
		otps:     or,
		pending:  pr,
		mailer:   mailer,
		otpTTL:   otpTTL,
	}
}

// Login checks the credentials. Users without 2FA get tokens right away,
// the others get a code by email and must call VerifyOTP.
func (s *Service) Login(ctx context.Context, email, password string, client domain.ClientInfo) (domain.LoginResult, error) {
	user, err := s.users.CheckPassword(ctx, email, password)
	if err != nil {
		return domain.LoginResult{}, err
	}

	if !user.Use2FA {
		tokens, err := s.sessions.Create(ctx, user.ID, client)
		if err != nil {
			return domain.LoginResult{}, err
		}

		return domain.LoginResult{User: user.WithoutPassword(), Tokens: &tokens}, nil
	}

	if err := s.sendOTP(ctx, user); err != nil {
		return domain.LoginResult{}, err
	}

	return domain.LoginResult{User: user.WithoutPassword(), OTPRequired: true}, nil
}

func (s *Service) sendOTP(ctx context.Context, user domain.User) error {
	l := zerolog.Ctx(ctx)

	otp, err := s.createOTP(ctx, user.ID)
	if err != nil {
		return err
	}

	err = s.mailer.Send(ctx, mailpkg.Message{
		To:      user.Email,
		Subject: OTPSubject,
		Body:    otpBody(otp.Code, s.otpTTL),
	})
	if err != nil {
		l.Error().Err(err).Str("user_id", user.ID.String()).Msg("sending otp")
		s.invalidate(ctx, otp.ID)

		return domain.ErrMailUnavailable
	}

	// Without the marker the code can never be verified.
	if err := s.pending.Set(ctx, user.ID, s.otpTTL); err != nil {
		l.Error().Err(err).Str("user_id", user.ID.String()).Msg("marking pending login")
		s.invalidate(ctx, otp.ID)

		return err
	}

	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.otps.Invalidate(ctx, id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("otp_id", id).Msg("invalidating unusable otp")
	}
}

func (s *Service) createOTP(ctx context.Context, userID uuid.UUID) (domain.OTP, error) {
	l := zerolog.Ctx(ctx)

	for attempt := 1; ; attempt++ {
		otp, err := s.otps.Create(ctx, domain.CreateOTPParams{
			UserID:    userID,
			Code:      randompkg.Code(domain.OTPLength),
			ExpiresAt: time.Now().Add(s.otpTTL),
		})
		if errors.Is(err, domain.ErrOTPCodeExists) && attempt < maxCodeAttempts {
			l.Warn().Int("attempt", attempt).Msg("otp code collision")
			continue
		}

		return otp, err
	}
}

func otpBody(code string, ttl time.Duration) string {
	return fmt.Sprintf("Your OTP for login is: %s\nThis code is valid for %d minutes.", code, int(ttl.Minutes()))
}

// VerifyOTP consumes the code of a pending login and issues tokens.
func (s *Service) VerifyOTP(ctx context.Context, userID uuid.UUID, code string, client domain.ClientInfo) (domain.LoginResult, error) {
	l := zerolog.Ctx(ctx)

	if err := s.pending.Check(ctx, userID); err != nil {
		return domain.LoginResult{}, err
	}

	if _, err := s.otps.Consume(ctx, userID, code, time.Now()); err != nil {
		return domain.LoginResult{}, err
	}

	// The marker expires on its own, a failed delete only leaves it to the TTL.
	if err := s.pending.Delete(ctx, userID); err != nil {
		l.Warn().Err(err).Str("user_id", userID.String()).Msg("deleting pending login")
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return domain.LoginResult{}, err
	}

	tokens, err := s.sessions.Create(ctx, userID, client)
	if err != nil {
		return domain.LoginResult{}, err
	}

	return domain.LoginResult{User: user, Tokens: &tokens}, nil
}
