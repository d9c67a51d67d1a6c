package auth

import (
	"encoding/base32"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RFC 6238 Appendix B reference secret: ASCII "12345678901234567890".
var rfcSecretBytes = []byte("12345678901234567890")

func rfcSecretBase32() string {
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(rfcSecretBytes)
}

func TestGenerateTOTP_RFC6238Vectors(t *testing.T) {
	secret := rfcSecretBase32()

	tests := []struct {
		unix int64
		want string
	}{
		{59, "287082"},
		{1111111109, "081804"},
		{1111111111, "050471"},
		{1234567890, "005924"},
		{2000000000, "279037"},
	}

	for _, tt := range tests {
		code, err := GenerateTOTP(secret, time.Unix(tt.unix, 0))
		require.NoError(t, err)
		assert.Equal(t, tt.want, code, "unix time %d", tt.unix)
	}
}

func TestGenerateTOTP_DeterministicWithinEpoch(t *testing.T) {
	secret := rfcSecretBase32()
	base := time.Unix(1111111080, 0) // start of a 30s window

	first, err := GenerateTOTP(secret, base)
	require.NoError(t, err)
	second, err := GenerateTOTP(secret, base.Add(29*time.Second))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	next, err := GenerateTOTP(secret, base.Add(30*time.Second))
	require.NoError(t, err)
	assert.NotEqual(t, first, next)
}

func TestVerifyTOTP_AcceptsCurrentAndAdjacentWindows(t *testing.T) {
	secret := rfcSecretBase32()
	now := time.Unix(1111111111, 0)

	current, err := GenerateTOTP(secret, now)
	require.NoError(t, err)
	previous, err := GenerateTOTP(secret, now.Add(-30*time.Second))
	require.NoError(t, err)
	next, err := GenerateTOTP(secret, now.Add(30*time.Second))
	require.NoError(t, err)
	stale, err := GenerateTOTP(secret, now.Add(-90*time.Second))
	require.NoError(t, err)

	assert.True(t, VerifyTOTP(secret, current, now))
	assert.True(t, VerifyTOTP(secret, previous, now))
	assert.True(t, VerifyTOTP(secret, next, now))
	assert.False(t, VerifyTOTP(secret, stale, now))
	assert.False(t, VerifyTOTP(secret, "000000", now))
}

func TestGenerateTOTP_Base64SecretFallback(t *testing.T) {
	// Older enrollments stored raw base64 secrets; they must derive the
	// same codes as the equivalent base32 secret.
	b64 := base64.StdEncoding.EncodeToString(rfcSecretBytes)
	at := time.Unix(59, 0)

	code, err := GenerateTOTP(b64, at)
	require.NoError(t, err)
	assert.Equal(t, "287082", code)
}

func TestGenerateTOTP_RejectsGarbageSecret(t *testing.T) {
	_, err := GenerateTOTP("!!not-an-encoding!!", time.Now())
	assert.Error(t, err)
}

func TestGenerateMFASecret(t *testing.T) {
	secret, err := GenerateMFASecret()
	require.NoError(t, err)

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(secret)
	require.NoError(t, err)
	assert.Len(t, key, 20)

	// A generated secret always round-trips through generate/verify.
	now := time.Now()
	code, err := GenerateTOTP(secret, now)
	require.NoError(t, err)
	assert.True(t, VerifyTOTP(secret, code, now))
}
