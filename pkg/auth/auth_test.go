package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager(Config{Secret: "s3cret", Issuer: "repairmanager", Audience: "api", TTL: time.Hour})
	group := uint(3)

	token, exp, err := m.GenerateToken(Claims{
		UserID:      9,
		Username:    "tech",
		Role:        "Technician",
		GroupID:     &group,
		Permissions: []string{"work_orders:edit"},
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "tech", claims.Username)
	require.NotNil(t, claims.GroupID)
	assert.Equal(t, uint(3), *claims.GroupID)
	assert.True(t, claims.HasPermission("work_orders:edit"))
	assert.False(t, claims.HasPermission("users:manage"))
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	a := NewTokenManager(Config{Secret: "one"})
	b := NewTokenManager(Config{Secret: "two"})

	token, _, err := a.GenerateToken(Claims{UserID: 1})
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenExpired(t *testing.T) {
	m := NewTokenManager(Config{Secret: "s", TTL: time.Minute})
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := m.GenerateToken(Claims{UserID: 1})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestAdminHasEveryPermission(t *testing.T) {
	c := &Claims{IsAdmin: true}
	assert.True(t, c.HasPermission("anything"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
}
