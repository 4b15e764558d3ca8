package ai_test

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

func newTestApp(t *testing.T) (*gin.Engine, string) {
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

	raw, _ := json.Marshal(map[string]string{"email": "a@x.com", "password": "secret123", "role": "user"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.Code)
	}

	raw, _ = json.Marshal(map[string]string{"email": "a@x.com", "password": "secret123"})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.Code)
	}
	var session struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return app.Router, session.Tokens.AccessToken
}

func TestTemplatesEndpoint(t *testing.T) {
	router, token := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/templates", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Templates []struct {
			Type           string   `json:"type"`
			RequiredFields []string `json:"requiredFields"`
		} `json:"templates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Templates) != 6 {
		t.Fatalf("expected 6 templates, got %d", len(body.Templates))
	}
}

func TestDraftEndpointUnknownType(t *testing.T) {
	router, token := newTestApp(t)

	raw, _ := json.Marshal(map[string]any{
		"documentType": "ransom_note",
		"parties":      []string{"A", "B"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/draft", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestDraftEndpoint(t *testing.T) {
	router, token := newTestApp(t)

	raw, _ := json.Marshal(map[string]any{
		"documentType":  "affidavit",
		"parties":       []string{"Jane Smith"},
		"effectiveDate": "2026-09-01",
		"details":       map[string]string{"statement": "I witnessed the signing."},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/draft", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var draft struct {
		DocumentType string `json:"documentType"`
		Content      string `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&draft); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if draft.DocumentType != "affidavit" || draft.Content == "" {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}
