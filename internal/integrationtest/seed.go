package integrationtest

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/passpkg"
	"github.com/go-petr/lifemanager/pkg/randompkg"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "secret-password"

// SeedUser inserts an active user with DefaultPassword.
func SeedUser(t *testing.T, db dbpkg.SQLInterface, use2FA bool) domain.User {
	t.Helper()

	hashed, err := passpkg.Hash(DefaultPassword)
	if err != nil {
		t.Fatalf("passpkg.Hash() returned error: %v", err)
	}

	const query = `
	INSERT INTO users (id, email, hashed_password, name, use_2fa)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, email, hashed_password, name, is_active, is_staff, is_superuser, use_2fa, created_at, updated_at`

	var u domain.User

	err = db.QueryRowContext(context.Background(), query,
		uuid.New(), randompkg.Email(), hashed, randompkg.Name(), use2FA,
	).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.Name, &u.IsActive,
		&u.IsStaff, &u.IsSuperuser, &u.Use2FA, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("SeedUser() returned error: %v", err)
	}

	return u
}

// SeedAccount inserts an active account of owner with the given balance.
func SeedAccount(t *testing.T, db dbpkg.SQLInterface, owner uuid.UUID, balance string) domain.Account {
	t.Helper()

	const query = `
	INSERT INTO accounts (owner, name, account_number, bank_name, balance)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, owner, name, account_number, bank_name, balance, is_active, created_at, updated_at`

	var a domain.Account

	err := db.QueryRowContext(context.Background(), query,
		owner, randompkg.Name(), randompkg.AccountNumber(), "Test Bank", decimal.RequireFromString(balance),
	).Scan(
		&a.ID, &a.Owner, &a.Name, &a.AccountNumber, &a.BankName,
		&a.Balance, &a.IsActive, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("SeedAccount() returned error: %v", err)
	}

	return a
}

// SeedOTP inserts an unused code for user that expires at expiresAt.
func SeedOTP(t *testing.T, db dbpkg.SQLInterface, userID uuid.UUID, code string, expiresAt time.Time) domain.OTP {
	t.Helper()

	const query = `
	INSERT INTO otps (user_id, code, expires_at)
	VALUES ($1, $2, $3)
	RETURNING id, user_id, code, created_at, expires_at, is_used`

	var o domain.OTP

	err := db.QueryRowContext(context.Background(), query, userID, code, expiresAt).Scan(
		&o.ID, &o.UserID, &o.Code, &o.CreatedAt, &o.ExpiresAt, &o.IsUsed,
	)
	if err != nil {
		t.Fatalf("SeedOTP() returned error: %v", err)
	}

	return o
}
