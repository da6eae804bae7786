package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usdrop-admin/internal/core/auth"
	"usdrop-admin/internal/domain"
	"usdrop-admin/internal/transport/http/ez"
	resp "usdrop-admin/internal/transport/http/response"
)

// Authenticator turns a raw token into a caller. service.SessionService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (auth.Caller, error)
}

// TokenFrom reads the session cookie first, then an Authorization bearer header.
func TokenFrom(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer "))
	}
	return ""
}

// RequireSession attaches the caller or answers 401.
func RequireSession(a Authenticator, cookieName string, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, err := a.Authenticate(c.Request.Context(), TokenFrom(c, cookieName))
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				resp.Abort(c, http.StatusUnauthorized, "")
				return
			}
			l.Error("session check", zap.String("rid", ez.RequestIDFrom(c)), zap.Error(err))
			resp.Abort(c, http.StatusInternalServerError, "")
			return
		}
		ez.SetCaller(c, caller)
		c.Next()
	}
}
