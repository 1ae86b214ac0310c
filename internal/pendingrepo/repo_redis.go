// Package pendingrepo keeps track of logins waiting for a second factor.
package pendingrepo

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "2fa:pending:"

// RepoRedis stores pending markers in Redis with a TTL.
type RepoRedis struct {
	client redis.UniversalClient
}

// NewRepoRedis returns pending RepoRedis.
func NewRepoRedis(client redis.UniversalClient) *RepoRedis {
	return &RepoRedis{
		client: client,
	}
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// Set marks the user as awaiting a code for ttl. A newer login replaces the marker.
func (r *RepoRedis) Set(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	l := zerolog.Ctx(ctx)

	if err := r.client.Set(ctx, key(userID), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrTransient
	}

	return nil
}

// Check returns ErrNoPendingLogin when the user has no live marker.
func (r *RepoRedis) Check(ctx context.Context, userID uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	err := r.client.Get(ctx, key(userID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.ErrNoPendingLogin
		}

		l.Error().Err(err).Send()

		return errorspkg.ErrTransient
	}

	return nil
}

// Delete removes the marker.
func (r *RepoRedis) Delete(ctx context.Context, userID uuid.UUID) error {
	l := zerolog.Ctx(ctx)

	if err := r.client.Del(ctx, key(userID)).Err(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrTransient
	}

	return nil
}
