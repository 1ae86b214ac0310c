// Package otprepo manages repository layer of one-time passwords.
package otprepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates otp repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns otp RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO otps (user_id, code, expires_at)
VALUES ($1, $2, $3)
RETURNING id, user_id, code, created_at, expires_at, is_used
`

// Create stores a new code. A code already present in the table yields ErrOTPCodeExists.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateOTPParams) (domain.OTP, error) {
	l := zerolog.Ctx(ctx)

	o, err := scanOTP(r.db.QueryRowContext(ctx, createQuery, arg.UserID, arg.Code, arg.ExpiresAt))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "otps_code_key":
				l.Warn().Err(err).Send()
				return domain.OTP{}, domain.ErrOTPCodeExists
			case "otps_user_id_fkey":
				l.Error().Err(err).Send()
				return domain.OTP{}, domain.ErrUserNotFound
			}
		}

		l.Error().Err(err).Send()

		return domain.OTP{}, errorspkg.ErrInternal
	}

	return o, nil
}

const consumeQuery = `
UPDATE otps
SET is_used = true
WHERE user_id = $1 AND code = $2 AND is_used = false AND expires_at >= $3
RETURNING id, user_id, code, created_at, expires_at, is_used
`

const unusedQuery = `
SELECT EXISTS (
    SELECT 1 FROM otps
    WHERE user_id = $1 AND code = $2 AND is_used = false
)
`

// Consume marks the matching unused, unexpired code as used in one statement,
// so of concurrent calls with the same code at most one succeeds.
//
// It returns ErrExpiredOTP when the code exists unused but is past its expiry
// and ErrInvalidOTP otherwise.
func (r *RepoPGS) Consume(ctx context.Context, userID uuid.UUID, code string, now time.Time) (domain.OTP, error) {
	l := zerolog.Ctx(ctx)

	o, err := scanOTP(r.db.QueryRowContext(ctx, consumeQuery, userID, code, now))
	if err == nil {
		return o, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		l.Error().Err(err).Send()
		return domain.OTP{}, errorspkg.ErrInternal
	}

	var unused bool
	if err := r.db.QueryRowContext(ctx, unusedQuery, userID, code).Scan(&unused); err != nil {
		l.Error().Err(err).Send()
		return domain.OTP{}, errorspkg.ErrInternal
	}

	if unused {
		return domain.OTP{}, domain.ErrExpiredOTP
	}

	return domain.OTP{}, domain.ErrInvalidOTP
}

const invalidateQuery = `
UPDATE otps
SET is_used = true
WHERE id = $1
`

// Invalidate marks the code as used without a login.
func (r *RepoPGS) Invalidate(ctx context.Context, id int64) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, invalidateQuery, id); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func scanOTP(row *sql.Row) (domain.OTP, error) {
	var o domain.OTP

	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Code,
		&o.CreatedAt,
		&o.ExpiresAt,
		&o.IsUsed,
	)

	return o, err
}
