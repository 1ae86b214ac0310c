package userservice

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/passpkg"
	"github.com/go-petr/lifemanager/pkg/randompkg"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func randomUser(t *testing.T) (domain.User, string) {
	password := randompkg.String(10)

	hashedPassword, err := passpkg.Hash(password)
	if err != nil {
		t.Fatalf("passpkg.Hash(%v) failed: %v", password, err)
	}

	user := domain.User{
		ID:             uuid.New(),
		HashedPassword: hashedPassword,
		Name:           randompkg.Name(),
		Email:          randompkg.Email(),
		IsActive:       true,
		Use2FA:         true,
	}

	return user, password
}

type eqCreateUserParamsMatcher struct {
	arg      domain.CreateUserParams
	password string
}

func (e eqCreateUserParamsMatcher) Matches(x interface{}) bool {
	arg, ok := x.(domain.CreateUserParams)
	if !ok {
		return false
	}

	if err := passpkg.Check(e.password, arg.HashedPassword); err != nil {
		return false
	}

	if arg.ID == uuid.Nil {
		return false
	}

	e.arg.HashedPassword = arg.HashedPassword
	e.arg.ID = arg.ID

	return reflect.DeepEqual(e.arg, arg)
}

func (e eqCreateUserParamsMatcher) String() string {
	return fmt.Sprintf("matches arg %v and password %v", e.arg, e.password)
}

func EqCreateUserParams(arg domain.CreateUserParams, password string) gomock.Matcher {
	return eqCreateUserParamsMatcher{arg, password}
}

func TestCreate(t *testing.T) {
	t.Parallel()

	user, password := randomUser(t)

	type input struct {
		Email    string
		Password string
		Name     string
		Use2FA   bool
	}

	testCases := []struct {
		name       string
		input      input
		buildStubs func(userRepo *MockRepo)
		want       domain.UserWithoutPassword
		wantError  error
	}{
		{
			name:  "OK",
			input: input{user.Email, password, user.Name, true},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), EqCreateUserParams(
						domain.CreateUserParams{
							Email:  user.Email,
							Name:   user.Name,
							Use2FA: true,
						}, password)).
					Times(1).
					Return(user, nil)
			},
			want: user.WithoutPassword(),
		},
		{
			name:  "HashPasswordErr",
			input: input{user.Email, strings.Repeat("long", 100), user.Name, true},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantError: errorspkg.ErrInternal,
		},
		{
			name:  "EmailAlreadyExists",
			input: input{user.Email, password, user.Name, false},
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.User{}, domain.ErrEmailAlreadyExists)
			},
			wantError: domain.ErrEmailAlreadyExists,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			userService := New(userRepo)

			tc.buildStubs(userRepo)

			got, err := userService.Create(context.Background(),
				tc.input.Email,
				tc.input.Password,
				tc.input.Name,
				tc.input.Use2FA,
			)
			if err != tc.wantError {
				t.Fatalf("userService.Create(context.Background(), %v, %v, %v, %v) got error %v, want %v",
					tc.input.Email, tc.input.Password, tc.input.Name, tc.input.Use2FA, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("userService.Create() returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	user, password := randomUser(t)

	inactive := user
	inactive.IsActive = false

	testCases := []struct {
		name       string
		email      string
		password   string
		buildStubs func(userRepo *MockRepo)
		want       domain.User
		wantError  error
	}{
		{
			name:     "OK",
			email:    user.Email,
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(user, nil)
			},
			want: user,
		},
		{
			name:     "UnknownEmail",
			email:    "nobody@example.com",
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), "nobody@example.com").
					Times(1).
					Return(domain.User{}, domain.ErrUserNotFound)
			},
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:     "WrongPassword",
			email:    user.Email,
			password: "wrong",
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(user, nil)
			},
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:     "InactiveUser",
			email:    user.Email,
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(inactive, nil)
			},
			wantError: domain.ErrInvalidCredentials,
		},
		{
			name:     "RepoInternalError",
			email:    user.Email,
			password: password,
			buildStubs: func(userRepo *MockRepo) {
				userRepo.EXPECT().
					GetByEmail(gomock.Any(), user.Email).
					Times(1).
					Return(domain.User{}, errorspkg.ErrInternal)
			},
			wantError: errorspkg.ErrInternal,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			userRepo := NewMockRepo(ctrl)
			userService := New(userRepo)

			tc.buildStubs(userRepo)

			got, err := userService.CheckPassword(context.Background(), tc.email, tc.password)
			if err != tc.wantError {
				t.Fatalf("userService.CheckPassword(context.Background(), %v, %v) got error %v, want %v",
					tc.email, tc.password, err, tc.wantError)
			}

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("userService.CheckPassword() returned unexpected difference (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	user, _ := randomUser(t)
	name := "New Name"

	ctrl := gomock.NewController(t)
	userRepo := NewMockRepo(ctrl)

	updated := user
	updated.Name = name

	userRepo.EXPECT().
		Update(gomock.Any(), user.ID, domain.UpdateUserParams{Name: &name}).
		Times(1).
		Return(updated, nil)

	userRepo.EXPECT().
		GetByID(gomock.Any(), user.ID).
		Times(1).
		Return(updated, nil)

	userService := New(userRepo)

	got, err := userService.Update(context.Background(), user.ID, domain.UpdateUserParams{Name: &name})
	if err != nil {
		t.Fatalf("userService.Update() returned error: %v", err)
	}

	if got.Name != name {
		t.Errorf("userService.Update().Name = %q, want %q", got.Name, name)
	}

	profile, err := userService.Get(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("userService.Get() returned error: %v", err)
	}

	if diff := cmp.Diff(updated.WithoutPassword(), profile); diff != "" {
		t.Errorf("userService.Get() returned unexpected difference (-want +got):\n%s", diff)
	}
}
