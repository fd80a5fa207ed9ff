package token_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	gojose "github.com/go-jose/go-jose/v4"
	gojwt "github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"

	"github.com/meminc/powsysmon/internal/apierr"
	"github.com/meminc/powsysmon/internal/domain"
	"github.com/meminc/powsysmon/internal/token"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newService(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.New(testSecret, "primary", time.Hour)
	require.NoError(t, err)
	return svc
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := token.New(nil, "primary", time.Hour)
	require.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	signed, err := svc.Sign(ctx, 42, domain.RoleOperator)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	identity, err := svc.Verify(ctx, signed)
	require.NoError(t, err)
	require.Equal(t, int64(42), identity.UserID)
	require.Equal(t, domain.RoleOperator, identity.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), identity.ExpiresAt, 5*time.Second)
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	signed, err := svc.Sign(ctx, 42, domain.RoleViewer)
	require.NoError(t, err)

	last := "A"
	if strings.HasSuffix(signed, "A") {
		last = "B"
	}
	tampered := signed[:len(signed)-1] + last
	_, err = svc.Verify(ctx, tampered)
	requireAuthKind(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newService(t)
	_, err := svc.Verify(context.Background(), "not.a.jwt")
	requireAuthKind(t, err)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	other, err := token.New([]byte("anothersecretanothersecret......"), "primary", time.Hour)
	require.NoError(t, err)
	signed, err := other.Sign(ctx, 42, domain.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, signed)
	requireAuthKind(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := newService(t)
	signed := signRaw(t, gojwt.Claims{
		Subject:  "42",
		Issuer:   "powsysmon",
		IssuedAt: gojwt.NewNumericDate(time.Now().Add(-3 * time.Hour)),
		Expiry:   gojwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
	}, "operator")

	_, err := svc.Verify(context.Background(), signed)
	requireAuthKind(t, err)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	svc := newService(t)
	signed := signRaw(t, gojwt.Claims{
		Subject: "42",
		Issuer:  "someone-else",
		Expiry:  gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "operator")

	_, err := svc.Verify(context.Background(), signed)
	requireAuthKind(t, err)
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	svc := newService(t)
	signed := signRaw(t, gojwt.Claims{
		Subject: "42",
		Issuer:  "powsysmon",
		Expiry:  gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "superuser")

	_, err := svc.Verify(context.Background(), signed)
	requireAuthKind(t, err)
}

func TestVerifyRejectsNonNumericSubject(t *testing.T) {
	svc := newService(t)
	signed := signRaw(t, gojwt.Claims{
		Subject: "alice",
		Issuer:  "powsysmon",
		Expiry:  gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}, "viewer")

	_, err := svc.Verify(context.Background(), signed)
	requireAuthKind(t, err)
}

func signRaw(t *testing.T, std gojwt.Claims, role string) string {
	t.Helper()
	signer, err := gojose.NewSigner(
		gojose.SigningKey{Algorithm: gojose.HS256, Key: testSecret},
		(&gojose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(t, err)

	signed, err := gojwt.Signed(signer).Claims(std).Claims(map[string]interface{}{"role": role}).Serialize()
	require.NoError(t, err)
	require.True(t, strings.Count(signed, ".") == 2)
	return signed
}

func requireAuthKind(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var classified *apierr.Error
	require.True(t, errors.As(err, &classified))
	require.Equal(t, apierr.KindAuthentication, classified.Kind)
	require.Equal(t, 401, classified.Status)
}
