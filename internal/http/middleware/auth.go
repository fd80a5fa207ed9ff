package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/session"
	"github.com/meminc/powsysmon/internal/token"
)

const sessionHeader = "X-Session-Id"

type identityContextKey struct{}
type rawTokenContextKey struct{}

// Auth gates protected routes: token verification, blacklist check, and role
// enforcement. Failures are raised as typed errors for the dispatcher; this
// middleware never writes a response body itself.
type Auth struct {
	Tokens   *token.Service
	Sessions *session.Store
	Logger   *zap.Logger
}

// Require authenticates the request. On success the decoded identity and the
// raw bearer token are attached to the request context; on failure the
// wrapped handler never runs.
func (m *Auth) Require() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := extractBearer(c.GetHeader("Authorization"))
		if err != nil {
			abortWith(c, err)
			return
		}

		identity, err := m.Tokens.Verify(c.Request.Context(), raw)
		if err != nil {
			abortWith(c, err)
			return
		}

		blacklisted, err := m.Sessions.IsBlacklisted(c.Request.Context(), raw)
		if err != nil {
			abortWith(c, apierr.Database("Authentication backend unavailable").WithCause(err))
			return
		}
		if blacklisted {
			abortWith(c, apierr.Authentication("Token has been revoked"))
			return
		}

		if sid := strings.TrimSpace(c.GetHeader(sessionHeader)); sid != "" {
			if err := m.Sessions.Touch(c.Request.Context(), sid); err != nil && m.Logger != nil {
				m.Logger.Warn("session touch failed", zap.String("session_id", sid), zap.Error(err))
			}
		}

		ctx := ContextWithIdentity(c.Request.Context(), identity)
		ctx = contextWithRawToken(ctx, raw)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole enforces a minimum role. It must run after Require; an absent
// identity is an authentication failure, an insufficient one an authorization
// failure, so callers can tell "who are you" from "you may not do that".
func (m *Auth) RequireRole(min domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFromContext(c.Request.Context())
		if !ok {
			abortWith(c, apierr.Authentication("Authentication required"))
			return
		}
		if !identity.Role.AtLeast(min) {
			abortWith(c, apierr.Authorization("Insufficient privileges for this operation"))
			return
		}
		c.Next()
	}
}

// ContextWithIdentity attaches the authenticated identity to the context.
func ContextWithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the authenticated identity.
func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	v, ok := ctx.Value(identityContextKey{}).(domain.Identity)
	return v, ok
}

func contextWithRawToken(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, rawTokenContextKey{}, raw)
}

// RawTokenFromContext returns the bearer token the request authenticated
// with. Logout needs it as the blacklist key.
func RawTokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(rawTokenContextKey{}).(string)
	return v, ok && v != ""
}

// SessionID returns the session header value, if any.
func SessionID(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(sessionHeader))
}

func extractBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apierr.Authentication("Authorization header required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apierr.Authentication("Bearer token required")
	}
	tok := strings.TrimSpace(parts[1])
	if tok == "" {
		return "", apierr.Authentication("Bearer token required")
	}
	return tok, nil
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
