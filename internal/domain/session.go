package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
)

var (
	// ErrBlockedSession indicates that the session is blocked.
	ErrBlockedSession = errorspkg.New(errorspkg.KindUnauthorized, "blocked session")
	// ErrMismatchedRefreshToken indicates mismatch between the given token and the session token.
	ErrMismatchedRefreshToken = errorspkg.New(errorspkg.KindUnauthorized, "mismatched session token")
	// ErrInvalidUser indicates that the session belongs to another user.
	ErrInvalidUser = errorspkg.New(errorspkg.KindUnauthorized, "incorrect session user")
	// ErrExpiredSession indicates that the expired session.
	ErrExpiredSession = errorspkg.New(errorspkg.KindUnauthorized, "expired session")
	// ErrSessionNotFound indicates that the session is not found.
	ErrSessionNotFound = errorspkg.New(errorspkg.KindNotFound, "session not found")
	// ErrInvalidToken indicates a malformed, forged or expired token.
	ErrInvalidToken = errorspkg.New(errorspkg.KindUnauthorized, "invalid token")
)

// Session holds refresh token data. Its ID equals the refresh token ID.
type Session struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	IsBlocked    bool      `json:"is_blocked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateSessionParams holds data nedeed for Session creation.
type CreateSessionParams struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	RefreshToken string
	UserAgent    string
	ClientIP     string
	ExpiresAt    time.Time
}

// ClientInfo identifies the client a session is issued to.
type ClientInfo struct {
	UserAgent string
	ClientIP  string
}

// SessionTokens is the access and refresh token pair issued on login.
type SessionTokens struct {
	SessionID             uuid.UUID
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}
