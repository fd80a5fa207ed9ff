package password_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meminc/powsysmon/internal/password"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := password.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := password.Verify("correct horse battery staple", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = password.Verify("wrong password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	first, err := password.Hash("same input")
	require.NoError(t, err)
	second, err := password.Hash("same input")
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$not!base64$aGFzaA",
	} {
		_, err := password.Verify("anything", encoded)
		require.Error(t, err, "hash %q", encoded)
	}
}
