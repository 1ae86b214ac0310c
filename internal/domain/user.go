// Package domain provides defenitions of all entities.
package domain

import (
	"time"

	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
)

var (
	// ErrEmailAlreadyExists indicates the the user with the given email already exists.
	ErrEmailAlreadyExists = errorspkg.New(errorspkg.KindConflict, "email already exists")
	// ErrUserNotFound indicates the the user is not found.
	ErrUserNotFound = errorspkg.New(errorspkg.KindNotFound, "user not found")
	// ErrInvalidCredentials is returned for an unknown email, an inactive user or a wrong password alike.
	ErrInvalidCredentials = errorspkg.New(errorspkg.KindInvalidCredentials, "invalid email or password")
)

// User holds user data.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	Name           string    `json:"name"`
	IsActive       bool      `json:"is_active"`
	IsStaff        bool      `json:"is_staff"`
	IsSuperuser    bool      `json:"is_superuser"`
	Use2FA         bool      `json:"use_2fa"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateUserParams is the input data to create a user.
type CreateUserParams struct {
	ID             uuid.UUID
	Email          string
	HashedPassword string
	Name           string
	Use2FA         bool
}

// UpdateUserParams holds the profile fields to change. Nil fields are left as is.
type UpdateUserParams struct {
	Name   *string
	Use2FA *bool
}

// UserWithoutPassword is User data excluding password data.
type UserWithoutPassword struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Use2FA    bool      `json:"use_2fa"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WithoutPassword strips the hash and the staff flags.
func (u User) WithoutPassword() UserWithoutPassword {
	return UserWithoutPassword{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Use2FA:    u.Use2FA,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
