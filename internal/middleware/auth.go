// Package middleware provides gin middlewares shared by all routes.
package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/lifemanager/pkg/errorspkg"
	"github.com/go-petr/lifemanager/pkg/tokenpkg"
	"github.com/go-petr/lifemanager/pkg/web"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Authorization header keys.
const (
	AuthHeaderKey  = "authorization"
	AuthTypeBearer = "bearer"
	AuthPayloadKey = "authorization_payload"
)

// Authorization errors.
var (
	ErrAuthHeaderNotFound  = errorspkg.New(errorspkg.KindUnauthorized, "authorization header is not provided")
	ErrBadAuthHeaderFormat = errorspkg.New(errorspkg.KindUnauthorized, "invalid authorization header format")
	ErrUnsupportedAuthType = errorspkg.New(errorspkg.KindUnauthorized, "unsupported authorization type")
	ErrInvalidAccessToken  = errorspkg.New(errorspkg.KindUnauthorized, "invalid or expired access token")
)

// AddAuthorization creates a token for userID and sets it as the authorization header of r.
func AddAuthorization(r *http.Request, tokenMaker tokenpkg.Maker, authType string, userID uuid.UUID, duration time.Duration) error {
	token, _, err := tokenMaker.CreateToken(userID, duration)
	if err != nil {
		return err
	}

	r.Header.Set(AuthHeaderKey, fmt.Sprintf("%s %s", authType, token))

	return nil
}

// AuthMiddleware verifies the bearer access token and stores its payload under AuthPayloadKey.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		l := zerolog.Ctx(gctx.Request.Context())

		authHeader := gctx.GetHeader(AuthHeaderKey)
		if len(authHeader) == 0 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrAuthHeaderNotFound))
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrBadAuthHeaderFormat))
			return
		}

		if strings.ToLower(fields[0]) != AuthTypeBearer {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrUnsupportedAuthType))
			return
		}

		payload, err := tokenMaker.VerifyToken(fields[1])
		if err != nil {
			l.Info().Err(err).Send()
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(ErrInvalidAccessToken))

			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// UserID returns the id of the authenticated user. It must run behind AuthMiddleware.
func UserID(gctx *gin.Context) uuid.UUID {
	return gctx.MustGet(AuthPayloadKey).(*tokenpkg.Payload).UserID
}
