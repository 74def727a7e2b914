package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Create persists a new refresh token record (hash only)
func (r *tokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO mobile_refresh_tokens (id, user_id, token_hash, woo_customer_id, user_email, device_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.WooCustomerID,
		token.UserEmail,
		token.DeviceID,
		token.CreatedAt,
		token.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}

	return nil
}

const tokenColumns = `id, user_id, token_hash, woo_customer_id, user_email, device_id, created_at, expires_at, revoked_at`

// FindActiveByUser returns all non-revoked, non-expired tokens for a user.
// The hash is one-way, so the caller must compare each candidate against the
// presented plaintext; one row per live device is expected.
func (r *tokenRepository) FindActiveByUser(ctx context.Context, userID string) ([]*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM mobile_refresh_tokens
		WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
	`

	return r.findMany(ctx, query, userID, time.Now())
}

// FindActive returns all non-revoked, non-expired tokens across all users
func (r *tokenRepository) FindActive(ctx context.Context) ([]*domain.RefreshToken, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM mobile_refresh_tokens
		WHERE revoked_at IS NULL AND expires_at > $1
	`

	return r.findMany(ctx, query, time.Now())
}

func (r *tokenRepository) findMany(ctx context.Context, query string, args ...any) ([]*domain.RefreshToken, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.RefreshToken
	for rows.Next() {
		token := &domain.RefreshToken{}
		var deviceID sql.NullString
		var revokedAt sql.NullTime

		err := rows.Scan(
			&token.ID,
			&token.UserID,
			&token.TokenHash,
			&token.WooCustomerID,
			&token.UserEmail,
			&deviceID,
			&token.CreatedAt,
			&token.ExpiresAt,
			&revokedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refresh token: %w", err)
		}

		if deviceID.Valid {
			token.DeviceID = &deviceID.String
		}
		if revokedAt.Valid {
			token.RevokedAt = &revokedAt.Time
		}

		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate refresh tokens: %w", err)
	}

	return tokens, nil
}

// Revoke marks a refresh token as revoked. Revocation is final; the row is
// never un-revoked or reused.
func (r *tokenRepository) Revoke(ctx context.Context, tokenID string) error {
	query := `UPDATE mobile_refresh_tokens SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`

	result, err := r.db.DB.ExecContext(ctx, query, tokenID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token with id %s not found: %w", tokenID, ErrNotFound)
	}

	return nil
}

// DeleteExpired garbage-collects expired and revoked rows; not required for
// correctness, FindActive filters them out regardless.
func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	query := `DELETE FROM mobile_refresh_tokens WHERE expires_at < $1 OR revoked_at IS NOT NULL`

	_, err := r.db.DB.ExecContext(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return nil
}
