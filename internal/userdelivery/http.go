// Package userdelivery manages delivery layer of users.
package userdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/internal/middleware"
	"github.com/go-petr/lifemanager/pkg/web"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// OTPSentMessage is returned by login when a code was mailed.
const OTPSentMessage = "OTP sent to your email."

//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery

// Service provides service layer interface needed by user delivery layer.
type Service interface {
	Create(ctx context.Context, email, password, name string, use2FA bool) (domain.UserWithoutPassword, error)
	Get(ctx context.Context, id uuid.UUID) (domain.UserWithoutPassword, error)
	Update(ctx context.Context, id uuid.UUID, arg domain.UpdateUserParams) (domain.UserWithoutPassword, error)
}

// LoginService drives the login flow.
type LoginService interface {
	Login(ctx context.Context, email, password string, client domain.ClientInfo) (domain.LoginResult, error)
	VerifyOTP(ctx context.Context, userID uuid.UUID, code string, client domain.ClientInfo) (domain.LoginResult, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service      Service
	loginService LoginService
}

// NewHandler returns user handler.
func NewHandler(us Service, ls LoginService) *Handler {
	return &Handler{
		service:      us,
		loginService: ls,
	}
}

type userData struct {
	User domain.UserWithoutPassword `json:"user"`
}

type otpData struct {
	UserID uuid.UUID `json:"user_id"`
}

func clientInfo(gctx *gin.Context) domain.ClientInfo {
	return domain.ClientInfo{
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}
}

func loginResponse(result domain.LoginResult) web.Response {
	if result.Tokens == nil {
		return web.Response{
			Message: OTPSentMessage,
			Data:    otpData{UserID: result.User.ID},
		}
	}

	return web.Response{
		AccessToken:           result.Tokens.AccessToken,
		AccessTokenExpiresAt:  &result.Tokens.AccessTokenExpiresAt,
		RefreshToken:          result.Tokens.RefreshToken,
		RefreshTokenExpiresAt: &result.Tokens.RefreshTokenExpiresAt,
		Data:                  userData{User: result.User},
	}
}

type createRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=255"`
	Use2FA   bool   `json:"use_2fa"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	createdUser, err := h.service.Create(ctx, req.Email, req.Password, req.Name, req.Use2FA)
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: userData{User: createdUser}})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles http login request. Users with 2FA get a code by email instead of tokens.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	result, err := h.loginService.Login(ctx, req.Email, req.Password, clientInfo(gctx))
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, loginResponse(result))
}

type verifyOTPRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	OTP    string `json:"otp" binding:"required,len=6,alphanum"`
}

// VerifyOTP handles http request with the emailed code and returns tokens.
func (h *Handler) VerifyOTP(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req verifyOTPRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	result, err := h.loginService.VerifyOTP(ctx, uuid.MustParse(req.UserID), req.OTP, clientInfo(gctx))
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, loginResponse(result))
}

// Me handles http request to get the profile of the authenticated user.
func (h *Handler) Me(gctx *gin.Context) {
	user, err := h.service.Get(gctx.Request.Context(), middleware.UserID(gctx))
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: userData{User: user}})
}

type updateRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=255"`
	Use2FA *bool   `json:"use_2fa"`
}

// UpdateMe handles http request to partially update the profile of the authenticated user.
func (h *Handler) UpdateMe(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	user, err := h.service.Update(ctx, middleware.UserID(gctx), domain.UpdateUserParams{
		Name:   req.Name,
		Use2FA: req.Use2FA,
	})
	if err != nil {
		gctx.JSON(web.StatusOf(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: userData{User: user}})
}
