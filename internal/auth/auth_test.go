package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return bytes.Repeat([]byte{7}, keyLength)
}

func newTestTokens(t *testing.T) *TokenService {
	t.Helper()
	s, err := NewTokenService(testKey(), TokenOptions{Issuer: "mailib", Audience: "mailib-api", AccessDuration: time.Hour})
	require.NoError(t, err)
	return s
}

func TestTokenService_RoundTrip(t *testing.T) {
	s := newTestTokens(t)

	token, err := s.IssueAccessToken("u-anna")
	require.NoError(t, err)
	assert.Contains(t, token, "v4.local.")

	claims, err := s.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-anna", claims.UserID)
	assert.Equal(t, "u-anna", claims.Subject)
	assert.Equal(t, "mailib", claims.Issuer)
}

func TestTokenService_Rejects(t *testing.T) {
	s := newTestTokens(t)
	token, err := s.IssueAccessToken("u-anna")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { s.now = time.Now }()
		_, err := s.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other, err := NewTokenService(testKey(), TokenOptions{Issuer: "mailib", Audience: "elsewhere", AccessDuration: time.Hour})
		require.NoError(t, err)
		_, err = other.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := NewTokenService(bytes.Repeat([]byte{8}, keyLength), TokenOptions{Issuer: "mailib", Audience: "mailib-api", AccessDuration: time.Hour})
		require.NoError(t, err)
		_, err = other.VerifyAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.VerifyAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewTokenService_KeyLength(t *testing.T) {
	_, err := NewTokenService([]byte("short"), TokenOptions{})
	assert.Error(t, err)
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	first, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Len(t, first, keyLength)

	second, err := LoadOrGenerateKey(dir)
	require.NoError(t, err)
	assert.Equal(t, first, second, "key must persist across restarts")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.key"), []byte("abc"), 0o600))
	_, err = LoadOrGenerateKey(dir)
	assert.Error(t, err)
}
