package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/shared/auth"
)

func newAuthTestRouter(t *testing.T, load IdentityLoader) (*gin.Engine, *auth.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenService("test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}

	r := gin.New()
	r.Use(Auth(tokens, load))
	r.GET("/protected", func(c *gin.Context) {
		ident, _ := IdentityFromContext(c)
		c.JSON(http.StatusOK, gin.H{"id": ident.ID})
	})
	r.GET("/admin", RequireRoles(auth.RoleAdmin, auth.RoleSuperadmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, tokens
}

func staticLoader(ident Identity) IdentityLoader {
	return func(ctx context.Context, email string) (Identity, error) {
		if email != ident.Email {
			return Identity{}, errors.New("not found")
		}
		return ident, nil
	}
}

func TestAuthMissingTokenRejected(t *testing.T) {
	r, _ := newAuthTestRouter(t, staticLoader(Identity{ID: "u1", Email: "a@x.com", Role: auth.RoleUser}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthValidTokenLoadsIdentity(t *testing.T) {
	r, tokens := newAuthTestRouter(t, staticLoader(Identity{ID: "u1", Email: "a@x.com", Role: auth.RoleUser}))

	token, err := tokens.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthRefreshTokenRejectedOnProtectedRoute(t *testing.T) {
	r, tokens := newAuthTestRouter(t, staticLoader(Identity{ID: "u1", Email: "a@x.com", Role: auth.RoleUser}))

	token, err := tokens.IssueRefresh("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthVanishedSubjectRejected(t *testing.T) {
	r, tokens := newAuthTestRouter(t, staticLoader(Identity{ID: "u1", Email: "a@x.com", Role: auth.RoleUser}))

	token, err := tokens.IssueAccess("gone@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireRolesForbidsNonModerator(t *testing.T) {
	r, tokens := newAuthTestRouter(t, staticLoader(Identity{ID: "u1", Email: "a@x.com", Role: auth.RoleUser}))

	token, err := tokens.IssueAccess("a@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestRequireRolesAllowsAdmin(t *testing.T) {
	r, tokens := newAuthTestRouter(t, staticLoader(Identity{ID: "a1", Email: "admin@x.com", Role: auth.RoleAdmin}))

	token, err := tokens.IssueAccess("admin@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}
