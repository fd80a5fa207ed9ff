// Package token signs and verifies the bearer credentials the dashboard API
// authenticates with. Tokens are opaque to callers; the service never stores
// them except as blacklist keys after revocation.
package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/domain"
)

const issuer = "powsysmon"

// Claims is the custom JWT payload beyond the registered claims.
type Claims struct {
	Role string `json:"role"`
}

// Service signs and verifies HS256 access tokens with a shared secret.
type Service struct {
	secret    []byte
	kid       string
	accessTTL time.Duration
}

// New constructs the token service. The secret must be non-empty.
func New(secret []byte, kid string, accessTTL time.Duration) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Service{secret: secret, kid: kid, accessTTL: accessTTL}, nil
}

// AccessTTL exposes the configured token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// Sign produces a signed access token for the user.
func (s *Service) Sign(ctx context.Context, userID int64, role domain.Role) (string, error) {
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: s.secret},
		(&gojose.SignerOptions{}).WithType("JWT").WithHeader("kid", s.kid),
	)
	if err != nil {
		return "", fmt.Errorf("new signer: %w", err)
	}

	now := time.Now().UTC()
	std := gojwt.Claims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		Expiry:    gojwt.NewNumericDate(now.Add(s.accessTTL)),
	}
	custom := Claims{Role: string(role)}

	signed, err := gojwt.Signed(signer).Claims(std).Claims(custom).Serialize()
	if err != nil {
		return "", fmt.Errorf("serialize token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and registered claims and returns the decoded
// identity. Malformed, tampered, or expired tokens fail with an
// authentication error.
func (s *Service) Verify(ctx context.Context, raw string) (domain.Identity, error) {
	parsed, err := gojwt.ParseSigned(raw, []gojose.SignatureAlgorithm{gojose.HS256})
	if err != nil {
		return domain.Identity{}, apierr.Authentication("Invalid access token").WithCause(err)
	}

	var std gojwt.Claims
	var custom Claims
	if err := parsed.Claims(s.secret, &std, &custom); err != nil {
		return domain.Identity{}, apierr.Authentication("Invalid access token").WithCause(err)
	}

	if err := std.Validate(gojwt.Expected{Issuer: issuer, Time: time.Now().UTC()}); err != nil {
		return domain.Identity{}, apierr.Authentication("Invalid or expired access token").WithCause(err)
	}

	userID, err := strconv.ParseInt(std.Subject, 10, 64)
	if err != nil {
		return domain.Identity{}, apierr.Authentication("Invalid access token").WithCause(err)
	}

	role := domain.Role(custom.Role)
	if !role.Valid() {
		return domain.Identity{}, apierr.Authentication("Invalid access token")
	}

	identity := domain.Identity{UserID: userID, Role: role}
	if std.Expiry != nil {
		identity.ExpiresAt = std.Expiry.Time()
	}
	return identity, nil
}
