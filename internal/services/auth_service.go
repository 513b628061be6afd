package services

import (
	"context"
	"time"

	"gatewarden/internal/caching"
	"gatewarden/internal/common"
	"gatewarden/internal/models"
	"gatewarden/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenClaims are the JWT claims issued at login. Role rides in the token so
// the role gate does not need a store lookup per request.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult is returned on a successful credential check.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type AuthService interface {
	// Login verifies credentials and issues a signed access token with a
	// live session entry. Bad credentials fail with ErrUnauthorized.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// Logout revokes the session for the given token id.
	Logout(ctx context.Context, tokenID string) error

	// SessionAlive reports whether the token id still has a live session.
	SessionAlive(ctx context.Context, tokenID string) (bool, error)
}

type authService struct {
	users     repositories.UserRepository
	cache     caching.CacheService
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(users repositories.UserRepository, cache caching.CacheService, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		users:     users,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, common.Wrap(common.ErrUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.Wrap(common.ErrUnauthorized, "invalid credentials")
	}

	now := time.Now()
	tokenID := uuid.NewString()
	claims := TokenClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gatewarden",
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetSession(ctx, tokenID, user.ID.String(), s.tokenTTL); err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, User: user}, nil
}

func (s *authService) Logout(ctx context.Context, tokenID string) error {
	return s.cache.DeleteSession(ctx, tokenID)
}

func (s *authService) SessionAlive(ctx context.Context, tokenID string) (bool, error) {
	userID, err := s.cache.GetSession(ctx, tokenID)
	if err != nil {
		return false, err
	}
	return userID != "", nil
}
