// Package auth provides bearer-token validation for the API surface.
// How a client obtains its token is outside this service's scope; it only
// mints and verifies HS256-signed access tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/museworks/muse-api/internal/config"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates a token string and returns the user ID it
	// was issued for, or ErrInvalidToken/ErrExpiredToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error)
}

// jwtCustomClaims defines the claims carried by access tokens.
type jwtCustomClaims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

type hmacJWTService struct {
	secret   []byte
	lifetime time.Duration
	timeFunc func() time.Time // injectable for testing
}

// NewJWTService creates a JWTService signing with the configured secret.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 characters")
	}

	lifetime := time.Duration(cfg.TokenLifetimeHours) * time.Hour
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}

	return &hmacJWTService{
		secret:   []byte(cfg.JWTSecret),
		lifetime: lifetime,
		timeFunc: time.Now,
	}, nil
}

func (s *hmacJWTService) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *hmacJWTService) ValidateToken(_ context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid || claims.UserID == uuid.Nil {
		return uuid.Nil, ErrInvalidToken
	}

	return claims.UserID, nil
}
