package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"legalaid-backend/internal/bootstrap"
	"legalaid-backend/internal/shared/config"
)

func newTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		JWTSecret:       "test-secret",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app.Router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func registerAndLogin(t *testing.T, router *gin.Engine, email, role string) (string, string) {
	t.Helper()

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", email, resp.Code, resp.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": "secret123",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", email, resp.Code, resp.Body.String())
	}
	var session struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return session.Tokens.AccessToken, created.ID
}

func TestRegisterLoginMe(t *testing.T) {
	router := newTestApp(t)

	token, _ := registerAndLogin(t, router, "a@x.com", "user")

	resp := doJSON(t, router, http.MethodGet, "/api/v1/auth/users/me", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var me struct {
		Email      string `json:"email"`
		Role       string `json:"role"`
		IsApproved bool   `json:"isApproved"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Email != "a@x.com" || me.Role != "user" || !me.IsApproved {
		t.Fatalf("unexpected me response: %+v", me)
	}
}

func TestMeWithoutTokenUnauthorized(t *testing.T) {
	router := newTestApp(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/auth/users/me", "", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	router := newTestApp(t)

	registerAndLogin(t, router, "a@x.com", "user")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "other456",
		"role":     "user",
	})
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestLawyerApprovalWorkflow(t *testing.T) {
	router := newTestApp(t)

	lawyerToken, lawyerID := registerAndLogin(t, router, "lawyer@x.com", "lawyer")
	adminToken, adminID := registerAndLogin(t, router, "admin@x.com", "admin")

	// Lawyer starts unapproved.
	resp := doJSON(t, router, http.MethodGet, "/api/v1/auth/users/me", lawyerToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.Code)
	}
	var me struct {
		IsApproved bool `json:"isApproved"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.IsApproved {
		t.Fatalf("lawyer must start unapproved")
	}

	// Lawyer may not view the moderation queue.
	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/lawyers/pending", lawyerToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for lawyer, got %d", resp.Code)
	}

	// Admin sees the pending lawyer.
	resp = doJSON(t, router, http.MethodGet, "/api/v1/auth/lawyers/pending", adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var pending []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pending); err != nil {
		t.Fatalf("decode pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != lawyerID {
		t.Fatalf("expected pending lawyer %s, got %+v", lawyerID, pending)
	}

	// Approve, then a second approve conflicts.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/lawyers/"+lawyerID+"/approve", adminToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var approved struct {
		IsApproved bool    `json:"isApproved"`
		ApprovedBy *string `json:"approvedBy"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&approved); err != nil {
		t.Fatalf("decode approve: %v", err)
	}
	if !approved.IsApproved || approved.ApprovedBy == nil || *approved.ApprovedBy != adminID {
		t.Fatalf("unexpected approval state: %+v", approved)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/lawyers/"+lawyerID+"/approve", adminToken, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second approve, got %d", resp.Code)
	}
}

func TestDeclineLawyerRemovesAccount(t *testing.T) {
	router := newTestApp(t)

	_, lawyerID := registerAndLogin(t, router, "lawyer@x.com", "lawyer")
	adminToken, _ := registerAndLogin(t, router, "admin@x.com", "admin")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/lawyers/"+lawyerID+"/decline", adminToken, map[string]string{
		"reason": "incomplete credentials",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("decline: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var declined struct {
		Declined bool   `json:"declined"`
		Reason   string `json:"reason"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&declined); err != nil {
		t.Fatalf("decode decline: %v", err)
	}
	if !declined.Declined || declined.Reason != "incomplete credentials" {
		t.Fatalf("unexpected decline response: %+v", declined)
	}

	// The declined account can no longer log in.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "lawyer@x.com",
		"password": "secret123",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after decline, got %d", resp.Code)
	}
}

func TestModerateNonLawyerValidation(t *testing.T) {
	router := newTestApp(t)

	_, userID := registerAndLogin(t, router, "user@x.com", "user")
	adminToken, _ := registerAndLogin(t, router, "admin@x.com", "admin")

	for _, action := range []string{"approve", "decline"} {
		resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/lawyers/"+userID+"/"+action, adminToken, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s non-lawyer: expected 400, got %d: %s", action, resp.Code, resp.Body.String())
		}
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode %s error: %v", action, err)
		}
		if envelope.Error.Code != "validation_error" {
			t.Fatalf("%s non-lawyer: expected validation_error, got %q", action, envelope.Error.Code)
		}
	}
}

func TestRoleAssignmentRequiresSuperadmin(t *testing.T) {
	router := newTestApp(t)

	userToken, userID := registerAndLogin(t, router, "a@x.com", "user")
	superToken, _ := registerAndLogin(t, router, "root@x.com", "superadmin")

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/users/"+userID+"/role", userToken, map[string]string{"role": "admin"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-superadmin, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/users/"+userID+"/role", superToken, map[string]string{"role": "admin"})
	if resp.Code != http.StatusOK {
		t.Fatalf("assign role: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var updated struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode assign role: %v", err)
	}
	if updated.Role != "admin" {
		t.Fatalf("expected admin role, got %s", updated.Role)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	router := newTestApp(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret123",
		"role":     "user",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "a@x.com",
		"password": "secret123",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.Code)
	}
	var session struct {
		Tokens struct {
			AccessToken  string `json:"accessToken"`
			RefreshToken string `json:"refreshToken"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	// An access token is not accepted as a refresh token.
	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": session.Tokens.AccessToken,
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for access token, got %d", resp.Code)
	}

	resp = doJSON(t, router, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{
		"refreshToken": session.Tokens.RefreshToken,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var refreshed struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
		t.Fatalf("decode refresh: %v", err)
	}
	if refreshed.Tokens.AccessToken == "" {
		t.Fatalf("expected a fresh access token")
	}
}
