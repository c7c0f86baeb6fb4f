package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func testVerifier(t *testing.T) *StaticVerifier {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return NewStaticVerifier("admin@example.com", string(hash))
}

func TestStaticVerifier_AcceptsConfiguredCredentials(t *testing.T) {
	v := testVerifier(t)

	userID, err := v.Verify(context.Background(), "admin@example.com", "s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if userID == "" {
		t.Error("expected opaque user id")
	}

	// Stable across calls.
	again, _ := v.Verify(context.Background(), "Admin@Example.com", "s3cret")
	if again != userID {
		t.Error("user id not stable across verifications")
	}
}

func TestStaticVerifier_RejectsBadCredentials(t *testing.T) {
	v := testVerifier(t)

	cases := []struct{ email, password string }{
		{"admin@example.com", "wrong"},
		{"other@example.com", "s3cret"},
		{"", ""},
	}
	for _, tc := range cases {
		if _, err := v.Verify(context.Background(), tc.email, tc.password); err == nil {
			t.Errorf("Verify(%q, %q) succeeded, want rejection", tc.email, tc.password)
		}
	}
}

func loginRequest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/admin-login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.AdminLogin(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestHandler_AdminLogin(t *testing.T) {
	h := NewHandler(testVerifier(t), nil, zerolog.Nop())

	rec := loginRequest(t, h, `{"email":"admin@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["success"] != true {
		t.Error("expected success=true")
	}
	if resp["userId"] == nil || resp["userId"] == "" {
		t.Error("expected userId in response")
	}
	if _, ok := resp["token"]; ok {
		t.Error("token issued with token auth disabled")
	}
}

func TestHandler_AdminLogin_MissingFields(t *testing.T) {
	h := NewHandler(testVerifier(t), nil, zerolog.Nop())

	for _, body := range []string{`{}`, `{"email":"admin@example.com"}`, `{"password":"s3cret"}`} {
		rec := loginRequest(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestHandler_AdminLogin_InvalidCredentialsGeneric(t *testing.T) {
	h := NewHandler(testVerifier(t), nil, zerolog.Nop())

	rec := loginRequest(t, h, `{"email":"admin@example.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid credentials") {
		t.Errorf("expected generic message, got %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("401 body leaks credential detail")
	}
}

func TestHandler_AdminLogin_IssuesTokenWhenConfigured(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	h := NewHandler(testVerifier(t), issuer, zerolog.Nop())

	rec := loginRequest(t, h, `{"email":"admin@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	token, _ := resp["token"].(string)
	if token == "" {
		t.Fatal("expected token in response")
	}

	userID, err := issuer.VerifyToken(token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if userID != resp["userId"] {
		t.Errorf("token subject %q != userId %q", userID, resp["userId"])
	}
}

func TestTokenIssuer_RejectsTamperedAndExpired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := issuer.VerifyToken(token + "x"); err == nil {
		t.Error("tampered token verified")
	}

	other := NewTokenIssuer("different-secret", time.Hour)
	if _, err := other.VerifyToken(token); err == nil {
		t.Error("token verified under wrong secret")
	}

	expired := NewTokenIssuer("test-secret", -time.Minute)
	tok, _ := expired.Issue("user-1")
	if _, err := issuer.VerifyToken(tok); err == nil {
		t.Error("expired token verified")
	}
}

func TestRequireToken_Middleware(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	e := echo.New()
	e.GET("/guarded", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RequireToken(issuer))
	e.GET("/open", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, RequireToken(nil))

	// No token.
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	// Valid token.
	token, _ := issuer.Issue("user-1")
	req = httptest.NewRequest(http.MethodGet, "/guarded", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", rec.Code)
	}

	// Nil issuer leaves the endpoint open.
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected open endpoint to pass, got %d", rec.Code)
	}
}
