package domain

import "time"

// AccessClaims represents the verified claim set of an access token
type AccessClaims struct {
	UserID        string `json:"sub"`
	Email         string `json:"email"`
	WooCustomerID int64  `json:"wooCustomerId"`
	Exp           int64  `json:"exp"`
	Iat           int64  `json:"iat"`
}

// IsExpired checks if the token is expired
func (c AccessClaims) IsExpired() bool {
	return time.Now().Unix() > c.Exp
}
