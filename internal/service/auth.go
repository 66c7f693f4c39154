package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/flicky/aqua-storefront/internal/dto"
	"github.com/flicky/aqua-storefront/internal/model"
	"github.com/flicky/aqua-storefront/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService struct {
	store     *store.Store
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(st *store.Store, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{store: st, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

// Login signs the browsing session in and issues a token bound to it.
func (s *AuthService) Login(ctx context.Context, sessionID string, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.store.Session(ctx, sessionID).SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	token, err := s.generateToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, SessionID: sessionID, User: toUserResponse(user)}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if sess, ok := s.store.LookupSession(sessionID); ok {
		sess.SignOut(ctx)
	}
}

// SignedIn reports whether the session still holds the user the token was issued for.
func (s *AuthService) SignedIn(sessionID, userID string) bool {
	sess, ok := s.store.LookupSession(sessionID)
	if !ok {
		return false
	}
	u := sess.User()
	return u != nil && u.IsAdmin && u.ID == userID
}

func (s *AuthService) generateToken(user *model.User, sessionID string) (string, error) {
	role := "customer"
	if user.IsAdmin {
		role = "admin"
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  role,
		"sid":   sessionID,
		"exp":   time.Now().Add(s.jwtExpiry).Unix(),
		"iat":   time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func toUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin}
}
