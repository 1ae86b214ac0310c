// Package tokenpkg creates and verifies access and refresh tokens.
package tokenpkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Different types of error returned by the VerifyToken function.
var (
	ErrInvalidToken = errors.New("token is invalid")
	ErrExpiredToken = errors.New("token has expired")
)

// Supported token types.
const (
	TypePaseto = "paseto"
	TypeJWT    = "jwt"
)

// Maker is an interface for managing tokens.
type Maker interface {
	// CreateToken creates a new token for a specific user and duration.
	CreateToken(userID uuid.UUID, duration time.Duration) (string, *Payload, error)
	// VerifyToken checks if the token is valid or not.
	VerifyToken(token string) (*Payload, error)
}

// New returns the Maker of the given type.
func New(tokenType, symmetricKey string) (Maker, error) {
	switch tokenType {
	case TypePaseto, "":
		return NewPasetoMaker(symmetricKey)
	case TypeJWT:
		return NewJWTMaker(symmetricKey)
	}

	return nil, fmt.Errorf("unsupported token type %q", tokenType)
}

// Payload contains the payload data of the token.
type Payload struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// NewPayload creates a new token payload with a specific user and duration.
func NewPayload(userID uuid.UUID, duration time.Duration) (*Payload, error) {
	tokenID, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	payload := &Payload{
		ID:        tokenID,
		UserID:    userID,
		IssuedAt:  time.Now(),
		ExpiredAt: time.Now().Add(duration),
	}

	return payload, nil
}

// Valid checks if the token payload is valid or not.
func (p *Payload) Valid() error {
	if time.Now().After(p.ExpiredAt) {
		return ErrExpiredToken
	}

	return nil
}
