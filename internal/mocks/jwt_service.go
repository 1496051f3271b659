// Package mocks provides test doubles for service interfaces.
package mocks

import (
	"context"

	"github.com/google/uuid"
)

// MockJWTService implements auth.JWTService for testing.
type MockJWTService struct {
	// GenerateTokenFn allows test cases to override GenerateToken.
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateTokenFn allows test cases to override ValidateToken.
	ValidateTokenFn func(ctx context.Context, tokenString string) (uuid.UUID, error)

	// Default values used when functions aren't explicitly defined.
	Token       string
	UserID      uuid.UUID
	Err         error
	ValidateErr error
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (uuid.UUID, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	if m.ValidateErr != nil {
		return uuid.Nil, m.ValidateErr
	}
	return m.UserID, nil
}
