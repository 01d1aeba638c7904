package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bankdesk/bankdesk/internal/shared"
)

func TestSignAndVerify(t *testing.T) {
	svc := NewJWTService("bankdesk", "thisIsSecret", time.Hour)

	token, err := svc.Sign(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "bankdesk", claims.Issuer)
	assert.Equal(t, int64(42), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestVerifyMalformedToken(t *testing.T) {
	svc := NewJWTService("bankdesk", "thisIsSecret", time.Hour)

	for _, token := range []string{"", "random.token", "a.b", "a.b.c.d"} {
		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, shared.ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signer := NewJWTService("bankdesk", "thisIsSecret", time.Hour)
	verifier := NewJWTService("bankdesk", "random.secret", time.Hour)

	token, err := signer.Sign(42)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := NewJWTService("bankdesk", "thisIsSecret", -time.Minute)

	token, err := svc.Sign(42)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, shared.ErrInvalidToken)
}
