// Package sessionrepo manages repository layer of sessions.
package sessionrepo

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

// RepoPGS facilitates session repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns session RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO sessions (
	id,
	user_id,
	refresh_token,
	user_agent,
	client_ip,
	expires_at
	) VALUES (
		$1, $2, $3, $4, $5, $6
	) RETURNING id, user_id, refresh_token, user_agent, client_ip, is_blocked, expires_at, created_at;
`

// Create creates the session and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.ID,
		arg.UserID,
		arg.RefreshToken,
		arg.UserAgent,
		arg.ClientIP,
		arg.ExpiresAt,
	)

	s, err := scanSession(row)
	if err != nil {
		l.Error().Err(err).Send()

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "sessions_user_id_fkey" {
			return domain.Session{}, domain.ErrUserNotFound
		}

		return domain.Session{}, errorspkg.ErrInternal
	}

	return s, nil
}

const getQuery = `
SELECT 
	id,
	user_id,
	refresh_token,
	user_agent,
	client_ip,
	is_blocked,
	expires_at,
	created_at
FROM sessions
WHERE id = $1
`

// Get returns session with the given id.
func (r *RepoPGS) Get(ctx context.Context, id uuid.UUID) (domain.Session, error) {
	l := zerolog.Ctx(ctx)

	s, err := scanSession(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, domain.ErrSessionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Session{}, errorspkg.ErrInternal
	}

	return s, nil
}

const blockQuery = `
UPDATE sessions
SET is_blocked = true
WHERE id = $1 AND is_blocked = false
`

// Block blocks the session. Blocking an already blocked session returns ErrBlockedSession,
// so of two concurrent refreshes with the same token only one wins.
func (r *RepoPGS) Block(ctx context.Context, id uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, blockQuery, id)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrBlockedSession
	}

	return nil
}

func scanSession(row *sql.Row) (domain.Session, error) {
	var s domain.Session

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.RefreshToken,
		&s.UserAgent,
		&s.ClientIP,
		&s.IsBlocked,
		&s.ExpiresAt,
		&s.CreatedAt,
	)

	return s, err
}
