// Package sessiondelivery manages delivery layer of sessions.
package sessiondelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/lifemanager/internal/domain"
	"github.com/go-petr/lifemanager/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	RenewAccessToken(ctx context.Context, refreshToken string, client domain.ClientInfo) (domain.SessionTokens, error)
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(ss Service) *Handler {
	return &Handler{
		service: ss,
	}
}

type renewAccessTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RenewAccessToken handles http request to rotate the token pair.
// The presented refresh token can not be used again.
func (h *Handler) RenewAccessToken(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req renewAccessTokenRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	client := domain.ClientInfo{
		UserAgent: gctx.Request.UserAgent(),
		ClientIP:  gctx.ClientIP(),
	}

	tokens, err := h.service.RenewAccessToken(ctx, req.RefreshToken, client)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusOf(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{
		AccessToken:           tokens.AccessToken,
		AccessTokenExpiresAt:  &tokens.AccessTokenExpiresAt,
		RefreshToken:          tokens.RefreshToken,
		RefreshTokenExpiresAt: &tokens.RefreshTokenExpiresAt,
	})
}
