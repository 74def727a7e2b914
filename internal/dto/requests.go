package dto

// LoginRequest represents a login request. The WordPress JWT endpoint accepts
// either an email or a login name, so both fields are optional individually.
type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
	DeviceID string `json:"deviceId"`
}

// Identifier returns whichever login identifier the client supplied.
func (r LoginRequest) Identifier() string {
	if r.Email != "" {
		return r.Email
	}
	return r.Username
}

// RefreshRequest carries the refresh token in the request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest carries the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// UpdateAddressesRequest carries partial billing/shipping updates
type UpdateAddressesRequest struct {
	Billing  map[string]any `json:"billing"`
	Shipping map[string]any `json:"shipping"`
}

// UpdatePushTokenRequest registers or clears the device push token.
// A JSON null clears it.
type UpdatePushTokenRequest struct {
	PushToken *string `json:"pushToken"`
}

// WebhookPayload is the loosely-shaped body of a WooCommerce webhook
type WebhookPayload struct {
	ID         int64          `json:"id"`
	CustomerID int64          `json:"customer_id"`
	Status     string         `json:"status"`
	Billing    map[string]any `json:"billing"`
	Shipping   map[string]any `json:"shipping"`
}
