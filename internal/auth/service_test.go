package auth

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	pkgauth "github.com/fleetyard/fleetyard-backend/pkg/auth"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	"github.com/fleetyard/fleetyard-backend/pkg/enums"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/security"
)

type fakeUserSource struct {
	users map[string]*models.User
}

func (f *fakeUserSource) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

type fakeRecorder struct {
	entries []activity.Entry
}

func (f *fakeRecorder) Record(ctx context.Context, entry activity.Entry) {
	f.entries = append(f.entries, entry)
}

type fakeLimiter struct {
	allow bool
	calls []string
}

func (f *fakeLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	f.calls = append(f.calls, scope)
	return f.allow, 1, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "fleetyard", ExpirationMinutes: 60}
}

func testLimits() config.AuthRateLimitConfig {
	return config.AuthRateLimitConfig{
		LoginWindow:        time.Minute,
		LoginUsernameLimit: 5,
		LoginIPLimit:       20,
	}
}

func seedUser(t *testing.T, username, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	return &models.User{
		ID:           7,
		Username:     username,
		PasswordHash: hash,
		Name:         "Test Driver",
		Role:         enums.UserRoleDriver,
	}
}

func TestService_LoginSuccess(t *testing.T) {
	user := seedUser(t, "jortega", "correct horse battery")
	source := &fakeUserSource{users: map[string]*models.User{"jortega": user}}
	rec := &fakeRecorder{}
	svc, err := NewService(source, nil, rec, testJWTConfig(), config.AuthRateLimitConfig{})
	if err != nil {
		t.Fatalf("unexpected constructor error: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginParams{Username: "jortega", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if result.Token == "" {
		t.Fatal("expected a token")
	}
	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), result.Token)
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != enums.UserRoleDriver {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if result.User == nil || result.User.Username != "jortega" {
		t.Fatalf("unexpected user %+v", result.User)
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != "auth.login" {
		t.Fatalf("expected login activity entry, got %+v", rec.entries)
	}
}

func TestService_LoginTrimsUsername(t *testing.T) {
	user := seedUser(t, "jortega", "correct horse battery")
	source := &fakeUserSource{users: map[string]*models.User{"jortega": user}}
	svc, _ := NewService(source, nil, &fakeRecorder{}, testJWTConfig(), config.AuthRateLimitConfig{})

	_, err := svc.Login(context.Background(), LoginParams{Username: "  jortega  ", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("expected trimmed username to resolve, got %v", err)
	}
}

func TestService_LoginWrongPassword(t *testing.T) {
	user := seedUser(t, "jortega", "correct horse battery")
	source := &fakeUserSource{users: map[string]*models.User{"jortega": user}}
	rec := &fakeRecorder{}
	svc, _ := NewService(source, nil, rec, testJWTConfig(), config.AuthRateLimitConfig{})

	_, err := svc.Login(context.Background(), LoginParams{Username: "jortega", Password: "wrong"})
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("failed login must not record activity, got %+v", rec.entries)
	}
}

func TestService_LoginUnknownUsername(t *testing.T) {
	source := &fakeUserSource{users: map[string]*models.User{}}
	svc, _ := NewService(source, nil, &fakeRecorder{}, testJWTConfig(), config.AuthRateLimitConfig{})

	_, err := svc.Login(context.Background(), LoginParams{Username: "ghost", Password: "whatever"})
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestService_LoginMissingCredentials(t *testing.T) {
	source := &fakeUserSource{users: map[string]*models.User{}}
	svc, _ := NewService(source, nil, &fakeRecorder{}, testJWTConfig(), config.AuthRateLimitConfig{})

	_, err := svc.Login(context.Background(), LoginParams{Username: "   ", Password: ""})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_LoginRateLimited(t *testing.T) {
	user := seedUser(t, "jortega", "correct horse battery")
	source := &fakeUserSource{users: map[string]*models.User{"jortega": user}}
	limiter := &fakeLimiter{allow: false}
	svc, _ := NewService(source, limiter, &fakeRecorder{}, testJWTConfig(), testLimits())

	_, err := svc.Login(context.Background(), LoginParams{Username: "jortega", Password: "correct horse battery", RemoteIP: "10.0.0.1"})
	if err == nil {
		t.Fatal("expected rate limit error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeRateLimit {
		t.Fatalf("expected rate limit, got %v", err)
	}
}

func TestService_LoginChecksBothLimiterScopes(t *testing.T) {
	user := seedUser(t, "jortega", "correct horse battery")
	source := &fakeUserSource{users: map[string]*models.User{"jortega": user}}
	limiter := &fakeLimiter{allow: true}
	svc, _ := NewService(source, limiter, &fakeRecorder{}, testJWTConfig(), testLimits())

	_, err := svc.Login(context.Background(), LoginParams{Username: "jortega", Password: "correct horse battery", RemoteIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if len(limiter.calls) != 2 {
		t.Fatalf("expected username and ip scopes checked, got %v", limiter.calls)
	}
	if limiter.calls[0] != "login:user:jortega" || limiter.calls[1] != "login:ip:10.0.0.1" {
		t.Fatalf("unexpected limiter scopes %v", limiter.calls)
	}
}
