package service

import (
	"alcyxob/boxing-app/internal/config"
	"alcyxob/boxing-app/internal/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newAuthService(env *testEnv) AuthService {
	return NewAuthService(env.repos.Users, config.JWTConfig{
		Secret:            "test-secret",
		Expiration:        20 * time.Minute,
		RefreshExpiration: 7 * 24 * time.Hour,
	}, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user, tokens, err := auth.Register(env.ctx, "rocky", " Rocky@Test.io ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "rocky@test.io", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	claims, err := auth.ParseAccessToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	logged, _, err := auth.Login(env.ctx, "rocky@test.io", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, _, err = auth.Login(env.ctx, "rocky@test.io", "wrong-pass")
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	_, _, err = auth.Login(env.ctx, "nobody@test.io", "secret1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	_, _, err := auth.Register(env.ctx, "a", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, _, err = auth.Register(env.ctx, "", "a@test.io", "secret1")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	_, _, err = auth.Register(env.ctx, "a", "a@test.io", "123")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = auth.Register(env.ctx, "a", "a@test.io", "secret1")
	require.NoError(t, err)
	_, _, err = auth.Register(env.ctx, "b", "a@test.io", "secret2")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRefreshTokens(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)
	_, tokens, err := auth.Register(env.ctx, "a", "a@test.io", "secret1")
	require.NoError(t, err)

	refreshed, err := auth.Refresh(env.ctx, tokens.RefreshToken)
	require.NoError(t, err)
	_, err = auth.ParseAccessToken(refreshed.AccessToken)
	assert.NoError(t, err)

	_, err = auth.Refresh(env.ctx, tokens.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken, "access tokens are not refresh tokens")
	_, err = auth.ParseAccessToken(tokens.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = auth.ParseAccessToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	require.NoError(t, auth.EnsureAdmin(env.ctx, "admin@test.io", "admin-pass"))
	require.NoError(t, auth.EnsureAdmin(env.ctx, "admin@test.io", "admin-pass"))

	u, err := env.repos.Users.GetByEmail(env.ctx, "admin@test.io")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())

	got, err := auth.GetUser(env.ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.PasswordHash)
	_, err = auth.GetUser(env.ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
