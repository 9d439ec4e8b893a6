package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/campushub/registrar/internal/auth"
	"github.com/campushub/registrar/internal/authz"
	"github.com/campushub/registrar/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Small interfaces so tests can fake both sides easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserResolver
}

func NewAuthMiddleware(jwt TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"msg": message,
		"error": gin.H{
			"code":    "unauthenticated",
			"message": message,
		},
	})
}

// RequireAuth verifies the bearer token and then re-resolves the user
// against the store. A token for a since-deleted account is rejected,
// and the stored role wins over the one baked into the token, so role
// changes take effect immediately rather than at next login.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthenticated(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthenticated(c, "Missing or invalid access token")
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			abortUnauthenticated(c, "Invalid or expired access token")
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := m.users.GetByID(cctx, claims.UserID)
		if err != nil {
			// deleted account or lookup failure: either way the token
			// no longer proves a live identity
			abortUnauthenticated(c, "Invalid or expired access token")
			return
		}

		SetIdentity(c, u)

		c.Next()
	}
}

// SetIdentity stashes the resolved account on the request context. It
// is what RequireAuth calls on success, and what tests use to fake an
// authenticated request.
func SetIdentity(c *gin.Context, u user.User) {
	c.Set(ctxUserIDKey, u.ID)
	c.Set(ctxEmailKey, u.Email)
	c.Set(ctxRoleKey, u.Role)
	c.Set(ctxUsernameKey, u.Username)
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok
}

// PrincipalFromContext assembles the acting principal for the
// authorization rules.
func PrincipalFromContext(c *gin.Context) (authz.Principal, bool) {
	id, ok := UserIDFromContext(c)
	if !ok {
		return authz.Principal{}, false
	}

	role, ok := RoleFromContext(c)
	if !ok {
		return authz.Principal{}, false
	}

	return authz.Principal{UserID: id, Role: role}, true
}
