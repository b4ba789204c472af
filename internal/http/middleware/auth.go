package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/salesdojo/backend/internal/domain"
	"github.com/salesdojo/backend/internal/logger"
	"github.com/salesdojo/backend/internal/session"
)

// CookieName carries the session token for browser clients.
const CookieName = "auth-token"

const (
	ctxUser   = "user"
	ctxClaims = "claims"
)

// Authenticator turns a presented token into its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, *session.Claims, error)
}

// TokenFromRequest reads the bearer header first, then the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// Authenticate resolves the session when one is presented. Requests without
// a valid token pass through anonymously; use RequireUser to enforce one.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(ctxUser, user)
			c.Set(ctxClaims, claims)
		case errors.Is(err, domain.ErrUnauthorized):
		default:
			logger.Error("session lookup failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous requests and non-admin users.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !u.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func CurrentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.User)
	return u
}

func CurrentClaims(c *gin.Context) *session.Claims {
	v, ok := c.Get(ctxClaims)
	if !ok {
		return nil
	}
	cl, _ := v.(*session.Claims)
	return cl
}
