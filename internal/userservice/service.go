// Package userservice manages business logic layer of users.
package userservice

import (
	"context"
	"errors"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/passpkg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	Create(ctx context.Context, arg domain.CreateUserParams) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, id uuid.UUID, arg domain.UpdateUserParams) (domain.User, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New return user service struct to manage user bussines logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// Create creates and returns user.
func (s *Service) Create(ctx context.Context, email, password, name string, use2FA bool) (domain.UserWithoutPassword, error) {
	l := zerolog.Ctx(ctx)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		l.Error().Err(err).Send()
		return domain.UserWithoutPassword{}, errorspkg.ErrInternal
	}

	arg := domain.CreateUserParams{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		Name:           name,
		Use2FA:         use2FA,
	}

	gotUser, err := s.repo.Create(ctx, arg)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return gotUser.WithoutPassword(), nil
}

// Get returns the profile of the user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.UserWithoutPassword, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return u.WithoutPassword(), nil
}

// Update changes the profile of the user.
func (s *Service) Update(ctx context.Context, id uuid.UUID, arg domain.UpdateUserParams) (domain.UserWithoutPassword, error) {
	u, err := s.repo.Update(ctx, id, arg)
	if err != nil {
		return domain.UserWithoutPassword{}, err
	}

	return u.WithoutPassword(), nil
}

// CheckPassword returns the active user with the given email and password.
//
// An unknown email, an inactive user and a wrong password all yield ErrInvalidCredentials.
func (s *Service) CheckPassword(ctx context.Context, email, pass string) (domain.User, error) {
	l := zerolog.Ctx(ctx)

	gotUser, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Hash anyway so response time does not reveal unknown emails.
			_ = passpkg.Check(pass, dummyHash)
			return domain.User{}, domain.ErrInvalidCredentials
		}

		return domain.User{}, err
	}

	if err := passpkg.Check(pass, gotUser.HashedPassword); err != nil {
		l.Warn().Err(err).Str("user_id", gotUser.ID.String()).Msg("wrong password")
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if !gotUser.IsActive {
		l.Warn().Str("user_id", gotUser.ID.String()).Msg("inactive user login")
		return domain.User{}, domain.ErrInvalidCredentials
	}

	return gotUser, nil
}

var dummyHash, _ = passpkg.Hash("dummy password for unknown emails")
