package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/fleetyard/fleetyard-backend/internal/activity"
	"github.com/fleetyard/fleetyard-backend/internal/users"
	pkgauth "github.com/fleetyard/fleetyard-backend/pkg/auth"
	"github.com/fleetyard/fleetyard-backend/pkg/config"
	"github.com/fleetyard/fleetyard-backend/pkg/db/models"
	pkgerrors "github.com/fleetyard/fleetyard-backend/pkg/errors"
	"github.com/fleetyard/fleetyard-backend/pkg/security"
)

// RateLimiter gates login attempts with a fixed window per scope.
// Satisfied by the Redis client.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// UserSource resolves login usernames to accounts. Satisfied by the
// users repository.
type UserSource interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service defines authentication operations.
type Service interface {
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)
}

type service struct {
	repo     UserSource
	limiter  RateLimiter
	recorder activity.Recorder
	jwtCfg   config.JWTConfig
	limits   config.AuthRateLimitConfig
	now      func() time.Time
}

// LoginParams carries the submitted credentials and the caller's address
// for per-IP throttling.
type LoginParams struct {
	Username string
	Password string
	RemoteIP string
}

// LoginResult is the issued token plus the authenticated identity.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *users.UserDTO `json:"user"`
}

// NewService wires authentication dependencies. The limiter is optional;
// without it logins are not throttled.
func NewService(repo UserSource, limiter RateLimiter, recorder activity.Recorder, jwtCfg config.JWTConfig, limits config.AuthRateLimitConfig) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user source required")
	}
	if recorder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "activity recorder required")
	}
	if jwtCfg.Secret == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "jwt secret required")
	}
	return &service{
		repo:     repo,
		limiter:  limiter,
		recorder: recorder,
		jwtCfg:   jwtCfg,
		limits:   limits,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	username := strings.TrimSpace(params.Username)
	if username == "" || params.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password required")
	}

	if err := s.checkRateLimits(ctx, username, params.RemoteIP); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a verification anyway so unknown and known usernames
			// take the same time.
			_, _ = security.VerifyPassword(params.Password, security.DummyHash)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	ok, err := security.VerifyPassword(params.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:      user.ID,
		Action:      "auth.login",
		Description: "signed in",
	})

	return &LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User:      users.FromModel(user),
	}, nil
}

func (s *service) checkRateLimits(ctx context.Context, username, remoteIP string) error {
	if s.limiter == nil {
		return nil
	}

	window := s.limits.LoginWindow
	if window <= 0 {
		window = time.Minute
	}

	if s.limits.LoginUsernameLimit > 0 {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:user:"+username, int64(s.limits.LoginUsernameLimit), window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check login rate limit")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
		}
	}
	if remoteIP != "" && s.limits.LoginIPLimit > 0 {
		allowed, _, err := s.limiter.FixedWindowAllow(ctx, "login:ip:"+remoteIP, int64(s.limits.LoginIPLimit), window)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check login rate limit")
		}
		if !allowed {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts, try again later")
		}
	}
	return nil
}
