package tokenizer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/teller/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

func TestSessionRoundTrip(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t))
	now := time.Now().Truncate(time.Second)

	session := &core.Session{
		ID:              "sess-42",
		CardNumber:      "4111111111111111",
		AuthenticatedAt: now,
		ExpiresAt:       now.Add(time.Minute),
	}

	signed, err := tok.SessionToToken(session)
	require.NoError(t, err)
	assert.NotContains(t, signed, session.CardNumber)

	parsed, err := tok.TokenToSession(signed)
	require.NoError(t, err)
	assert.Equal(t, "sess-42", parsed.ID)
	assert.True(t, parsed.ExpiresAt.Equal(session.ExpiresAt))
	assert.True(t, parsed.AuthenticatedAt.Equal(now))
	assert.Equal(t, signed, parsed.AuthToken)
}

func TestExpiredSession(t *testing.T) {
	tok := NewJWTTokenizer(newKey(t))
	past := time.Now().Add(-time.Hour)

	signed, err := tok.SessionToToken(&core.Session{ID: "s", AuthenticatedAt: past, ExpiresAt: past.Add(time.Minute)})
	require.NoError(t, err)

	_, err = tok.TokenToSession(signed)
	assert.ErrorIs(t, err, core.ErrSessionExpired)
}

func TestForeignKeyRejected(t *testing.T) {
	signed, err := NewJWTTokenizer(newKey(t)).SessionToToken(&core.Session{ID: "s", AuthenticatedAt: time.Now(), ExpiresAt: time.Now().Add(time.Minute)})
	require.NoError(t, err)

	_, err = NewJWTTokenizer(newKey(t)).TokenToSession(signed)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestWrongAlgorithmRejected(t *testing.T) {
	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "s",
		Audience:  jwt.ClaimStrings{AudienceSession},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewJWTTokenizer(newKey(t)).TokenToSession(signed)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
