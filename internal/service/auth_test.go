package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/aqua-storefront/internal/dto"
)

func TestAuthService_Login(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "test-secret", time.Hour)

	resp, err := svc.Login(context.Background(), "sess-1", dto.LoginRequest{Email: "admin@mvsaqua.com", Password: "admin123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.True(t, resp.User.IsAdmin)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "admin", claims["role"])
	assert.Equal(t, "sess-1", claims["sid"])
	assert.Equal(t, resp.User.ID, claims["sub"])
	assert.True(t, svc.SignedIn("sess-1", resp.User.ID))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "test-secret", time.Hour)

	_, err := svc.Login(context.Background(), "sess-1", dto.LoginRequest{Email: "admin@mvsaqua.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.False(t, svc.SignedIn("sess-1", "local-admin"))
}

func TestAuthService_Logout(t *testing.T) {
	svc := NewAuthService(newTestStore(t), "test-secret", time.Hour)
	ctx := context.Background()
	resp, err := svc.Login(ctx, "sess-1", dto.LoginRequest{Email: "admin@mvsaqua.com", Password: "admin123"})
	require.NoError(t, err)

	svc.Logout(ctx, "sess-1")
	svc.Logout(ctx, "unknown")

	assert.False(t, svc.SignedIn("sess-1", resp.User.ID))
	assert.False(t, svc.SignedIn("unknown", resp.User.ID))
}
