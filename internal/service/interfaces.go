package service

import (
	"context"
	"time"

	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/woocommerce"
	"github.com/wellamo/mobile-bff/internal/wordpress"
)

// AuthService defines authentication operations
type AuthService interface {
	Login(ctx context.Context, identifier, password, deviceID, ip string) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateToken(tokenString string) (*domain.AccessClaims, error)
}

// IdentityProvider is the WordPress credential check the auth service
// delegates to
type IdentityProvider interface {
	Authenticate(ctx context.Context, usernameOrEmail, password string) (*wordpress.Identity, error)
}

// CommerceAPI is the slice of the WooCommerce client the services consume
type CommerceAPI interface {
	FindCustomerByEmail(ctx context.Context, email string) (*woocommerce.Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*woocommerce.Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, payload any) (*woocommerce.Customer, error)
	ListOrders(ctx context.Context, p woocommerce.OrderListParams) ([]woocommerce.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*woocommerce.Order, error)
	ListSubscriptions(ctx context.Context, p woocommerce.SubscriptionListParams) ([]woocommerce.Subscription, error)
	GetProduct(ctx context.Context, productID int64) (*woocommerce.Product, error)
}

// CacheStore is the cache surface the aggregation services read through
type CacheStore interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	InvalidatePattern(ctx context.Context, pattern string) error
}
