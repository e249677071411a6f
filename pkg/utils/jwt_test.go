package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "devplan")

	token, err := m.GenerateToken("user-1", "access", time.Minute)
	require.NoError(t, err)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "access", claims.Type)
}

func TestJWTManager_Expired(t *testing.T) {
	m := NewJWTManager("secret", "devplan")

	token, err := m.GenerateToken("user-1", "access", -time.Minute)
	require.NoError(t, err)

	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTManager_WrongSecretOrIssuer(t *testing.T) {
	token, err := NewJWTManager("secret", "devplan").GenerateToken("user-1", "access", time.Minute)
	require.NoError(t, err)

	_, err = NewJWTManager("other", "devplan").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTManager("secret", "someone-else").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
