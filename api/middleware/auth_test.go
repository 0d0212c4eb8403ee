package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgauth "github.com/fleetyard/fleetyard-backend/pkg/auth"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	"github.com/fleetyard/fleetyard-backend/pkg/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "fleetyard",
		ExpirationMinutes: 60,
	}
}

func mintToken(t *testing.T, userID int64, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testJWTConfig(), time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Role:   role,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}
	return token
}

func decodeErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder) types.ErrorEnvelope {
	t.Helper()
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	return envelope
}

func TestAuthSeedsContextFromValidToken(t *testing.T) {
	var gotUserID int64
	var gotRole string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	handler := Auth(testJWTConfig(), nil)(next)

	r := httptest.NewRequest("GET", "/api/v1/vehicles", nil)
	r.Header.Set("Authorization", "Bearer "+mintToken(t, 42, enums.UserRoleDriver))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotUserID != 42 {
		t.Fatalf("expected user id 42 in context, got %d", gotUserID)
	}
	if gotRole != string(enums.UserRoleDriver) {
		t.Fatalf("expected driver role in context, got %q", gotRole)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/api/v1/vehicles", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	envelope := decodeErrorEnvelope(t, rec)
	if envelope.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestAuthMalformedToken(t *testing.T) {
	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/api/v1/vehicles", nil)
	r.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthRejectsTokenFromWrongSecret(t *testing.T) {
	otherCfg := testJWTConfig()
	otherCfg.Secret = "other-secret"
	token, err := pkgauth.MintAccessToken(otherCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: 1,
		Role:   enums.UserRoleCompanyAdmin,
	})
	if err != nil {
		t.Fatalf("minting token: %v", err)
	}

	handler := Auth(testJWTConfig(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("GET", "/api/v1/vehicles", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	handler := RequireRole(string(enums.UserRoleCompanyAdmin), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("POST", "/api/v1/users", nil)
	r = r.WithContext(WithRole(r.Context(), string(enums.UserRoleCompanyAdmin)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleForbidsOtherRole(t *testing.T) {
	handler := RequireRole(string(enums.UserRoleCompanyAdmin), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	r := httptest.NewRequest("POST", "/api/v1/users", nil)
	r = r.WithContext(WithRole(r.Context(), string(enums.UserRoleDriver)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	envelope := decodeErrorEnvelope(t, rec)
	if envelope.Error.Code != "FORBIDDEN" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.9:5544"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	if ip := ClientIP(r); ip != "203.0.113.7" {
		t.Fatalf("expected forwarded ip, got %q", ip)
	}
}

func TestClientIPFallsBackToRemoteAddr(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.9:5544"

	if ip := ClientIP(r); ip != "192.0.2.9" {
		t.Fatalf("expected remote addr host, got %q", ip)
	}
}
