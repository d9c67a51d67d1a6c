package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// TOTP per RFC 6238: HMAC-SHA1 over the 30-second epoch counter, dynamic
// truncation to a 6-digit code. Interoperates with standard authenticator
// apps given a base32 secret; base64 secrets from older enrollments are
// accepted as a fallback.

const (
	totpPeriod = 30 * time.Second
	totpDigits = 1000000
)

var b32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateMFASecret returns a new base32-encoded 160-bit TOTP secret.
func GenerateMFASecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("error generating mfa secret: %w", err)
	}
	return b32NoPad.EncodeToString(buf), nil
}

// GenerateTOTP derives the 6-digit code for the epoch window containing t.
func GenerateTOTP(secret string, t time.Time) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	counter := uint64(t.Unix() / int64(totpPeriod/time.Second))
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], counter)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	// Dynamic truncation: low 4 bits of the last byte pick the offset,
	// the high bit of the selected word is masked to keep it positive.
	offset := sum[len(sum)-1] & 0xf
	code := (uint32(sum[offset]&0x7f)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])) % totpDigits

	return fmt.Sprintf("%06d", code), nil
}

// VerifyTOTP reports whether code matches the window containing t or either
// adjacent window, tolerating one period of clock skew in both directions.
func VerifyTOTP(secret, code string, t time.Time) bool {
	for _, skew := range []time.Duration{0, -totpPeriod, totpPeriod} {
		expected, err := GenerateTOTP(secret, t.Add(skew))
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

func decodeSecret(secret string) ([]byte, error) {
	trimmed := strings.TrimSpace(secret)
	if key, err := b32NoPad.DecodeString(strings.ToUpper(trimmed)); err == nil {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(trimmed); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("totp secret is neither base32 nor base64")
}
