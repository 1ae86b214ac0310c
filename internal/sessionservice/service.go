// Package sessionservice manages business logic layer of sessions.
package sessionservice

import (
	"context"
	"time"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/configpkg"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/tokenpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by session service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package sessionservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateSessionParams) (domain.Session, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Session, error)
	Block(ctx context.Context, id uuid.UUID) error
}

// Service facilitates session service layer logic.
type Service struct {
	repo       Repo
	config     configpkg.Config
	tokenMaker tokenpkg.Maker
}

// New return session service struct to manage session bussines logic.
func New(sr Repo, config configpkg.Config, tm tokenpkg.Maker) (*Service, error) {
	if config.AccessTokenDuration <= 0 || config.RefreshTokenDuration <= 0 {
		return nil, errorspkg.New(errorspkg.KindInternal, "token durations must be positive")
	}

	return &Service{
		repo:       sr,
		config:     config,
		tokenMaker: tm,
	}, nil
}

// Create issues an access token and a refresh token and stores the refresh token session.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, client domain.ClientInfo) (domain.SessionTokens, error) {
	l := zerolog.Ctx(ctx)

	accessToken, accessPayload, err := s.tokenMaker.CreateToken(userID, s.config.AccessTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.SessionTokens{}, errorspkg.ErrInternal
	}

	refreshToken, refreshPayload, err := s.tokenMaker.CreateToken(userID, s.config.RefreshTokenDuration)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.SessionTokens{}, errorspkg.ErrInternal
	}

	sess, err := s.repo.Create(ctx, domain.CreateSessionParams{
		ID:           refreshPayload.ID,
		UserID:       userID,
		RefreshToken: refreshToken,
		UserAgent:    client.UserAgent,
		ClientIP:     client.ClientIP,
		ExpiresAt:    refreshPayload.ExpiredAt,
	})
	if err != nil {
		return domain.SessionTokens{}, err
	}

	return domain.SessionTokens{
		SessionID:             sess.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessPayload.ExpiredAt,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: refreshPayload.ExpiredAt,
	}, nil
}

// RenewAccessToken checks the refresh token session, blocks it and issues a new token pair.
//
// A refresh token can be used once: the rotated session is blocked.
func (s *Service) RenewAccessToken(ctx context.Context, refreshToken string, client domain.ClientInfo) (domain.SessionTokens, error) {
	l := zerolog.Ctx(ctx)

	refreshPayload, err := s.tokenMaker.VerifyToken(refreshToken)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.SessionTokens{}, domain.ErrInvalidToken
	}

	sess, err := s.repo.Get(ctx, refreshPayload.ID)
	if err != nil {
		return domain.SessionTokens{}, err
	}

	if sess.IsBlocked {
		l.Warn().Str("session_id", sess.ID.String()).Msg("blocked refresh token reused")
		return domain.SessionTokens{}, domain.ErrBlockedSession
	}

	if sess.UserID != refreshPayload.UserID {
		return domain.SessionTokens{}, domain.ErrInvalidUser
	}

	if sess.RefreshToken != refreshToken {
		return domain.SessionTokens{}, domain.ErrMismatchedRefreshToken
	}

	if time.Now().After(sess.ExpiresAt) {
		return domain.SessionTokens{}, domain.ErrExpiredSession
	}

	if err := s.repo.Block(ctx, sess.ID); err != nil {
		return domain.SessionTokens{}, err
	}

	return s.Create(ctx, sess.UserID, client)
}
