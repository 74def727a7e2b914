package repository

import (
	"context"

	"github.com/wellamo/mobile-bff/internal/domain"
)

// UserRepository defines methods for app user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.AppUser) error
	GetByID(ctx context.Context, id string) (*domain.AppUser, error)
	GetByWPUserID(ctx context.Context, wpUserID string) (*domain.AppUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AppUser, error)
	// RecordLogin bumps login_count, stamps last_login_at/last_login_ip and
	// forces status back to Active. Profile fields are never touched.
	RecordLogin(ctx context.Context, userID, ip string) error
	UpdatePushToken(ctx context.Context, userID string, token *string) error
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	// FindActiveByUser returns all non-revoked, non-expired tokens for a user.
	FindActiveByUser(ctx context.Context, userID string) ([]*domain.RefreshToken, error)
	// FindActive returns all non-revoked, non-expired tokens across users.
	// Used by logout, which runs before any identity is established.
	FindActive(ctx context.Context) ([]*domain.RefreshToken, error)
	Revoke(ctx context.Context, tokenID string) error
	DeleteExpired(ctx context.Context) error
}
