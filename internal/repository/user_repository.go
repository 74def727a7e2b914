package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/pkg/database"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new app user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.AppUser) error {
	query := `
		INSERT INTO app_users (id, wp_user_id, email, name, display_name, login_count, last_login_at, last_login_ip, status, push_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.WPUserID,
		user.Email,
		user.Name,
		user.DisplayName,
		user.LoginCount,
		user.LastLoginAt,
		user.LastLoginIP,
		user.Status,
		user.PushToken,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				if strings.Contains(pqErr.Constraint, "email") {
					return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
				}
				return fmt.Errorf("user with wordpress id %s already exists: %w", user.WPUserID, ErrDuplicateWPUser)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

const userColumns = `id, wp_user_id, email, name, display_name, login_count, last_login_at, last_login_ip, status, push_token, created_at, updated_at`

// GetByID retrieves a user by internal ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.AppUser, error) {
	query := `SELECT ` + userColumns + ` FROM app_users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByWPUserID retrieves a user by WordPress user ID
func (r *userRepository) GetByWPUserID(ctx context.Context, wpUserID string) (*domain.AppUser, error) {
	query := `SELECT ` + userColumns + ` FROM app_users WHERE wp_user_id = $1`
	return r.getOne(ctx, query, wpUserID)
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.AppUser, error) {
	query := `SELECT ` + userColumns + ` FROM app_users WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.AppUser, error) {
	user := &domain.AppUser{}
	var lastLoginAt sql.NullTime
	var lastLoginIP, pushToken sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.WPUserID,
		&user.Email,
		&user.Name,
		&user.DisplayName,
		&user.LoginCount,
		&lastLoginAt,
		&lastLoginIP,
		&user.Status,
		&pushToken,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}
	if lastLoginIP.Valid {
		user.LastLoginIP = &lastLoginIP.String
	}
	if pushToken.Valid {
		user.PushToken = &pushToken.String
	}

	return user, nil
}

// RecordLogin bumps login counters and stamps the login. Profile fields stay
// untouched so repeated logins never overwrite user data.
func (r *userRepository) RecordLogin(ctx context.Context, userID, ip string) error {
	query := `
		UPDATE app_users
		SET login_count = login_count + 1,
		    last_login_at = $2,
		    last_login_ip = $3,
		    status = $4,
		    updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, time.Now(), ip, domain.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

// UpdatePushToken stores or clears the push-notification token for a user
func (r *userRepository) UpdatePushToken(ctx context.Context, userID string, token *string) error {
	query := `UPDATE app_users SET push_token = $2, updated_at = $3 WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, userID, token, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}
