package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/shared/auth"
	"legalaid-backend/internal/shared/server/respond"
	"legalaid-backend/internal/shared/telemetry"
)

const (
	identityKey = "identity"
	userIDKey   = "userId"
)

// Identity is the resolved account behind a verified token.
type Identity struct {
	ID         string
	Email      string
	Role       auth.Role
	IsApproved bool
	IsActive   bool
}

// IdentityLoader resolves a token subject (email) to an account.
// It is supplied by bootstrap to keep this package decoupled from the
// account store.
type IdentityLoader func(ctx context.Context, email string) (Identity, error)

// Auth verifies the bearer token, resolves the subject to an account, and
// stores the identity in context. Bad tokens and vanished subjects both map
// to the same unauthorized response; the log line keeps them apart.
func Auth(tokens *auth.TokenService, load IdentityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		claims, err := tokens.Verify(token)
		if err != nil {
			unauthorized(c, "bad token", "")
			return
		}
		if claims.Kind != auth.KindAccess {
			unauthorized(c, "wrong token kind", claims.Subject)
			return
		}

		ident, err := load(c.Request.Context(), claims.Subject)
		if err != nil {
			unauthorized(c, "user not found", claims.Subject)
			return
		}

		c.Set(identityKey, ident)
		c.Set(userIDKey, ident.ID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, reason, subject string) {
	telemetry.Info("auth.rejected", map[string]any{
		"request_id": RequestIDFromContext(c),
		"reason":     reason,
		"subject":    subject,
		"path":       c.Request.URL.Path,
	})
	respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
}

// RequireRoles rejects identities whose role is outside the allowed set.
// It must run after Auth.
func RequireRoles(allowed ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := IdentityFromContext(c)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}
		if !ident.Role.OneOf(allowed...) {
			respond.Error(c, http.StatusForbidden, "forbidden", "not enough permissions", nil)
			return
		}
		c.Next()
	}
}

// IdentityFromContext fetches the identity stored by Auth.
func IdentityFromContext(c *gin.Context) (Identity, bool) {
	if c == nil {
		return Identity{}, false
	}
	val, _ := c.Get(identityKey)
	ident, ok := val.(Identity)
	return ident, ok
}

// UserIDFromContext fetches the account ID set by Auth.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}
