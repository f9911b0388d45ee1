package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/voca-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

var fixedTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     config.AuthConfig
		wantErr bool
	}{
		{"valid", config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 120}, false},
		{"short secret", config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60, RefreshTokenLifetimeMinutes: 120}, true},
		{"zero lifetime", config.AuthConfig{JWTSecret: testSecret, RefreshTokenLifetimeMinutes: 120}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, err := NewJWTService(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Hour, svc.AccessTokenLifetime())
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	svc := newJWTService(testSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime))
	userID := uuid.New()
	ctx := context.Background()

	token, err := svc.GenerateToken(ctx, userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	refresh, err := svc.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)
	refreshClaims, err := svc.ValidateRefreshToken(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
	assert.Equal(t, fixedTime.Add(24*time.Hour).Unix(), refreshClaims.ExpiresAt.Unix())
	assert.NotEqual(t, claims.ID, refreshClaims.ID)
}

func TestValidateTokenErrors(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	ctx := context.Background()
	issuer := newJWTService(testSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime))
	access, err := issuer.GenerateToken(ctx, userID)
	require.NoError(t, err)
	refresh, err := issuer.GenerateRefreshToken(ctx, userID)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"uid":  userID.String(),
		"type": TokenTypeAccess,
		"exp":  fixedTime.Add(time.Hour).Unix(),
		"iat":  fixedTime.Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	later := newJWTService(testSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime.Add(2*time.Hour)))
	muchLater := newJWTService(testSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime.Add(48*time.Hour)))
	withinSkew := newJWTService(testSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime.Add(time.Hour+time.Minute)))
	otherKey := newJWTService(wrongSecret, time.Hour, 24*time.Hour, fixedClock(fixedTime))

	tests := []struct {
		name     string
		validate func() (*Claims, error)
		wantErr  error
	}{
		{"empty token", func() (*Claims, error) { return issuer.ValidateToken(ctx, "") }, ErrMissingToken},
		{"malformed", func() (*Claims, error) { return issuer.ValidateToken(ctx, "not.a.jwt") }, ErrInvalidToken},
		{"wrong secret", func() (*Claims, error) { return otherKey.ValidateToken(ctx, access) }, ErrInvalidToken},
		{"none algorithm", func() (*Claims, error) { return issuer.ValidateToken(ctx, unsigned) }, ErrInvalidToken},
		{"expired access", func() (*Claims, error) { return later.ValidateToken(ctx, access) }, ErrExpiredToken},
		{"within clock skew", func() (*Claims, error) { return withinSkew.ValidateToken(ctx, access) }, nil},
		{"refresh as access", func() (*Claims, error) { return issuer.ValidateToken(ctx, refresh) }, ErrWrongTokenType},
		{"access as refresh", func() (*Claims, error) { return issuer.ValidateRefreshToken(ctx, access) }, ErrWrongTokenType},
		{"refresh wrong secret", func() (*Claims, error) { return otherKey.ValidateRefreshToken(ctx, refresh) }, ErrInvalidRefreshToken},
		{"expired refresh", func() (*Claims, error) { return muchLater.ValidateRefreshToken(ctx, refresh) }, ErrExpiredRefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			claims, err := tt.validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, userID, claims.UserID)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, claims)
		})
	}
}
