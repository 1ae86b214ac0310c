package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
)

// OTPLength is the number of symbols in a one-time password.
const OTPLength = 6

var (
	// ErrInvalidOTP indicates a code that does not exist or was already used.
	ErrInvalidOTP = errorspkg.New(errorspkg.KindInvalidOTP, "invalid OTP")
	// ErrExpiredOTP indicates an unused code past its expiry.
	ErrExpiredOTP = errorspkg.New(errorspkg.KindExpiredOTP, "OTP has expired")
	// ErrNoPendingLogin indicates that no login is waiting for a second factor.
	ErrNoPendingLogin = errorspkg.New(errorspkg.KindInvalidOTP, "no pending login for this user")
	// ErrOTPCodeExists indicates that the drawn code collides with a stored one.
	ErrOTPCodeExists = errorspkg.New(errorspkg.KindConflict, "otp code already exists")
	// ErrMailUnavailable indicates that the code could not be mailed.
	ErrMailUnavailable = errorspkg.New(errorspkg.KindMailUnavailable, "could not send the OTP email, please try again later")
)

// OTP is a single-use login code.
type OTP struct {
	ID        int64
	UserID    uuid.UUID
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsUsed    bool
}

// CreateOTPParams holds data needed for OTP creation.
type CreateOTPParams struct {
	UserID    uuid.UUID
	Code      string
	ExpiresAt time.Time
}

// LoginResult is the outcome of a login step. Tokens is nil while a code is awaited.
type LoginResult struct {
	User        UserWithoutPassword
	OTPRequired bool
	Tokens      *SessionTokens
}
