package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/audit"
	"github.com/meminc/powsysmon/internal/domain"
	pw "github.com/meminc/powsysmon/internal/password"
	"github.com/meminc/powsysmon/internal/repository"
	"github.com/meminc/powsysmon/internal/session"
	"github.com/meminc/powsysmon/internal/token"
)

// blacklistWindow is the fixed blacklist lifetime applied on logout. The
// upstream policy pins 24h regardless of the token's remaining validity; with
// 1h access tokens the window always covers the token's natural life.
const blacklistWindow = 24 * time.Hour

// LoginResult carries the issued credential and its session.
type LoginResult struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	Session     domain.Session `json:"session"`
}

// AuthService implements the login/logout flows around the request pipeline.
type AuthService struct {
	users    repository.UserRepository
	sessions *session.Store
	tokens   *token.Service
	audit    *audit.Recorder
	logger   *zap.Logger
	tracer   trace.Tracer
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, sessions *session.Store, tokens *token.Service, recorder *audit.Recorder, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		audit:    recorder,
		logger:   logger,
		tracer:   otel.Tracer("github.com/meminc/powsysmon/internal/service"),
	}
}

// Login authenticates an account by email/password and issues a bearer token
// plus a tracked session. Lookup and password failures are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	normalized := strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		span.RecordError(err)
		return nil, apierr.Authentication("Invalid email or password")
	}

	valid, err := pw.Verify(password, user.PasswordHash)
	if err != nil || !valid {
		return nil, apierr.Authentication("Invalid email or password")
	}

	signed, err := s.tokens.Sign(ctx, user.ID, user.Role)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, apierr.Database("Session creation failed").WithCause(err)
	}

	s.logger.Info("login", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.tokens.AccessTTL().Seconds()),
		Session:     sess,
	}, nil
}

// Logout blacklists the presented token for the fixed revocation window, drops
// the session if one was presented, and records the audit entry. A failure in
// any of the three is surfaced, not swallowed.
func (s *AuthService) Logout(ctx context.Context, actor domain.Identity, rawToken, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if err := s.sessions.Revoke(ctx, rawToken, blacklistWindow); err != nil {
		span.RecordError(err)
		return apierr.Database("Token revocation failed").WithCause(err)
	}

	if err := s.sessions.Drop(ctx, sessionID); err != nil {
		span.RecordError(err)
		return apierr.Database("Session removal failed").WithCause(err)
	}

	if err := s.audit.Record(ctx, actor.UserID, "logout", "sessions", actor.UserID); err != nil {
		span.RecordError(err)
		return apierr.Database("Audit log write failed").WithCause(err)
	}
	return nil
}
