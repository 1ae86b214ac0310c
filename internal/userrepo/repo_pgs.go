// Package userrepo manages repository layer of users.
package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/dbpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const userColumns = `
	id,
	email,
	hashed_password,
	name,
	is_active,
	is_staff,
	is_superuser,
	use_2fa,
	created_at,
	updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var u domain.User

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.Name,
		&u.IsActive,
		&u.IsStaff,
		&u.IsSuperuser,
		&u.Use2FA,
		&u.CreatedAt,
		&u.UpdatedAt,
	)

	return u, err
}

// CreateQuery inserts into users table.
const CreateQuery = `
INSERT INTO users (
    id,
    email,
    hashed_password,
    name,
    use_2fa
) VALUES (
    $1, $2, $3, $4, $5
) RETURNING` + userColumns

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, CreateQuery,
		arg.ID,
		arg.Email,
		arg.HashedPassword,
		arg.Name,
		arg.Use2FA,
	)

	u, err := scanUser(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "users_email_key" {
				return domain.User{}, domain.ErrEmailAlreadyExists
			}
		}

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}

const getByIDQuery = `SELECT` + userColumns + `
FROM users
WHERE id = $1
`

// GetByID returns the user with the given id.
func (r *RepoPGS) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return r.get(ctx, getByIDQuery, id)
}

const getByEmailQuery = `SELECT` + userColumns + `
FROM users
WHERE email = $1
`

// GetByEmail returns the user with exactly the given email.
func (r *RepoPGS) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.get(ctx, getByEmailQuery, email)
}

func (r *RepoPGS) get(ctx context.Context, query string, arg any) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}

const updateQuery = `
UPDATE users
SET
    name = COALESCE($2, name),
    use_2fa = COALESCE($3, use_2fa),
    updated_at = now()
WHERE id = $1
RETURNING` + userColumns

// Update changes the non-nil profile fields and returns the updated user.
func (r *RepoPGS) Update(ctx context.Context, id uuid.UUID, arg domain.UpdateUserParams) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	var (
		name   sql.NullString
		use2FA sql.NullBool
	)

	if arg.Name != nil {
		name = sql.NullString{String: *arg.Name, Valid: true}
	}

	if arg.Use2FA != nil {
		use2FA = sql.NullBool{Bool: *arg.Use2FA, Valid: true}
	}

	u, err := scanUser(r.db.QueryRowContext(ctx, updateQuery, id, name, use2FA))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return domain.User{}, errorspkg.ErrInternal
	}

	return u, nil
}
