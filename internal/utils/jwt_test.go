package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking/internal/model"
)

var alice = model.Identity{ID: "64b7f0c2a1", Email: "alice@example.com", Role: model.RoleUser}

func TestTokenIssuerRoundTrip(t *testing.T) {
	iss := NewTokenIssuer("secret", 8*time.Hour)

	tok, err := iss.Issue(alice)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(8*time.Hour), tok.Exp, time.Minute)

	got, err := iss.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, alice, got)
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	iss := NewTokenIssuer("secret", -time.Minute)

	tok, err := iss.Issue(alice)
	require.NoError(t, err)

	_, err = iss.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsForeignSignature(t *testing.T) {
	tok, err := NewTokenIssuer("other", time.Hour).Issue(alice)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(tok.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRejectsGarbageAndNone(t *testing.T) {
	iss := NewTokenIssuer("secret", time.Hour)

	_, err := iss.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  "x",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = iss.Verify(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuerRequiresExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"id": "x"}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
