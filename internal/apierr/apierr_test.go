package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/meminc/powsysmon/internal/apierr"
)

func TestConstructorsCarryWireMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    *apierr.Error
		kind   apierr.Kind
		status int
		code   string
	}{
		{"validation", apierr.Validation("bad input"), apierr.KindValidation, http.StatusBadRequest, apierr.CodeValidation},
		{"authentication", apierr.Authentication("who"), apierr.KindAuthentication, http.StatusUnauthorized, apierr.CodeAuthentication},
		{"authorization", apierr.Authorization("no"), apierr.KindAuthorization, http.StatusForbidden, apierr.CodeAuthorization},
		{"not found", apierr.NotFound("gone"), apierr.KindNotFound, http.StatusNotFound, apierr.CodeNotFound},
		{"conflict", apierr.Conflict("dup"), apierr.KindConflict, http.StatusConflict, apierr.CodeConflict},
		{"rate limit", apierr.RateLimit("slow down"), apierr.KindRateLimit, http.StatusTooManyRequests, apierr.CodeRateLimit},
		{"database", apierr.Database("db"), apierr.KindDatabase, http.StatusInternalServerError, apierr.CodeDatabase},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.kind, tc.err.Kind)
			require.Equal(t, tc.status, tc.err.Status)
			require.Equal(t, tc.code, tc.err.Code)
			require.True(t, tc.err.Operational())
		})
	}
}

func TestClassifyPassesThroughTypedErrors(t *testing.T) {
	original := apierr.NotFound("Connection not found")
	classified := apierr.Classify(original)
	require.Same(t, original, classified)

	wrapped := apierr.Authentication("Invalid access token").WithCause(errors.New("bad signature"))
	classified = apierr.Classify(wrapped)
	require.Equal(t, apierr.KindAuthentication, classified.Kind)
	require.EqualError(t, classified.Unwrap(), "bad signature")
}

func TestClassifyFlattensValidationErrors(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
		Role  string `validate:"required,oneof=viewer operator admin"`
	}

	v := validator.New()
	err := v.Struct(payload{Email: "not-an-email", Role: "root"})
	require.Error(t, err)

	classified := apierr.Classify(err)
	require.Equal(t, apierr.KindValidation, classified.Kind)
	require.Equal(t, http.StatusBadRequest, classified.Status)
	require.Equal(t, apierr.CodeValidation, classified.Code)
	require.Len(t, classified.Fields, 2)
	require.Equal(t, "Email", classified.Fields[0].Path)
	require.Equal(t, "must be a valid email address", classified.Fields[0].Message)
	require.Equal(t, "must be one of: viewer operator admin", classified.Fields[1].Message)
}

func TestClassifyPostgresConstraintViolations(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "network_connections_pair_key"}
	classified := apierr.Classify(dup)
	require.Equal(t, apierr.KindConflict, classified.Kind)
	require.Equal(t, http.StatusConflict, classified.Status)
	require.Equal(t, apierr.CodeDuplicate, classified.Code)

	fk := &pgconn.PgError{Code: "23503", ConstraintName: "network_connections_from_fkey"}
	classified = apierr.Classify(fk)
	require.Equal(t, apierr.KindValidation, classified.Kind)
	require.Equal(t, http.StatusBadRequest, classified.Status)
	require.Equal(t, apierr.CodeReference, classified.Code)

	other := &pgconn.PgError{Code: "57014"}
	classified = apierr.Classify(other)
	require.Equal(t, apierr.KindDatabase, classified.Kind)
	require.Equal(t, apierr.CodeDatabase, classified.Code)
}

func TestClassifyWrappedPostgresError(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505"}
	classified := apierr.Classify(fmt.Errorf("create connection: %w", inner))
	require.Equal(t, apierr.CodeDuplicate, classified.Code)
}

func TestClassifyNeverLeaksUnclassifiedMessages(t *testing.T) {
	classified := apierr.Classify(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
	require.Equal(t, apierr.KindUnclassified, classified.Kind)
	require.Equal(t, http.StatusInternalServerError, classified.Status)
	require.Equal(t, apierr.CodeInternal, classified.Code)
	require.Equal(t, "An unexpected error occurred", classified.Message)
	require.NotContains(t, classified.Message, "10.0.0.5")
	require.False(t, classified.Operational())
}

func TestClassifyNil(t *testing.T) {
	require.Nil(t, apierr.Classify(nil))
}
