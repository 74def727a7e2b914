package domain

import "time"

// User statuses
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// AppUser represents a mobile-app end user mirrored from WordPress
type AppUser struct {
	ID          string     `json:"id" db:"id"`
	WPUserID    string     `json:"wp_user_id" db:"wp_user_id"`
	Email       string     `json:"email" db:"email"`
	Name        string     `json:"name" db:"name"`
	DisplayName string     `json:"display_name" db:"display_name"`
	LoginCount  int        `json:"login_count" db:"login_count"`
	LastLoginAt *time.Time `json:"last_login_at" db:"last_login_at"`
	LastLoginIP *string    `json:"last_login_ip" db:"last_login_ip"`
	Status      string     `json:"status" db:"status"`
	PushToken   *string    `json:"push_token" db:"push_token"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshToken represents one outstanding session-renewal credential for one device.
// Only the bcrypt hash of the token is ever stored.
type RefreshToken struct {
	ID            string     `json:"id" db:"id"`
	UserID        string     `json:"user_id" db:"user_id"`
	TokenHash     string     `json:"-" db:"token_hash"`
	WooCustomerID int64      `json:"woo_customer_id" db:"woo_customer_id"`
	UserEmail     string     `json:"user_email" db:"user_email"`
	DeviceID      *string    `json:"device_id" db:"device_id"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt     time.Time  `json:"expires_at" db:"expires_at"`
	RevokedAt     *time.Time `json:"revoked_at" db:"revoked_at"`
}

// Usable reports whether the record may still be used for renewal.
func (t RefreshToken) Usable(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
