package auth

import (
	"testing"
	"time"

	"mediamatrixhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", "mmh")

	tok, err := m.GenerateToken(42, models.UserRoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := m.ParseKind(tok, KindAdmin)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, models.UserRoleAdmin, claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, IsAdmin(claims))
}

func TestSubscriberTokenIsNotAdmin(t *testing.T) {
	m := NewTokenManager("secret", "mmh")
	tok, err := m.GenerateSubscriberToken(7, time.Hour)
	require.NoError(t, err)

	_, err = m.ParseKind(tok, KindAdmin)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := m.ParseKind(tok, KindSubscriber)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.False(t, IsAdmin(claims))
}

func TestExpiredToken(t *testing.T) {
	m := NewTokenManager("secret", "mmh")
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := m.GenerateToken(1, models.UserRoleEditor, time.Hour)
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecret(t *testing.T) {
	tok, err := NewTokenManager("a", "mmh").GenerateToken(1, models.UserRoleAdmin, time.Hour)
	require.NoError(t, err)
	_, err = NewTokenManager("b", "mmh").ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmptySecretRefusesToSign(t *testing.T) {
	_, err := NewTokenManager("", "mmh").GenerateToken(1, models.UserRoleAdmin, time.Hour)
	assert.Error(t, err)
}

func TestPermissions(t *testing.T) {
	editor := &Claims{Kind: KindAdmin, Role: models.UserRoleEditor}
	assert.True(t, CanPerformAction(editor, "catalog:write"))
	assert.False(t, CanPerformAction(editor, "notifications:send"))
	assert.False(t, CanPerformAction(&Claims{Kind: KindSubscriber}, "catalog:read"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("correct horse", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
	assert.Error(t, ValidatePassword("short"))
}
