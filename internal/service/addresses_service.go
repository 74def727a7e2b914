package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// AddressesView is the customer's billing and shipping address pair
type AddressesView struct {
	Billing  woocommerce.Address `json:"billing"`
	Shipping woocommerce.Address `json:"shipping"`
}

// AddressesService reads and updates customer addresses. WooCommerce stays
// the source of truth; updates write through and refresh the cached entry.
type AddressesService struct {
	commerce CommerceAPI
	cache    CacheStore
	ttl      time.Duration
	logger   *zap.Logger
}

// NewAddressesService creates a new addresses service
func NewAddressesService(commerce CommerceAPI, cache CacheStore, ttl time.Duration, logger *zap.Logger) *AddressesService {
	return &AddressesService{
		commerce: commerce,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// Get returns the customer's addresses
func (s *AddressesService) Get(ctx context.Context, customerID int64) (*AddressesView, error) {
	key := fmt.Sprintf("addresses:%d", customerID)

	var cached AddressesView
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	customer, err := s.commerce.GetCustomer(ctx, customerID)
	if err != nil {
		if woocommerce.IsNotFound(err) {
			return nil, fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	view := &AddressesView{Billing: customer.Billing, Shipping: customer.Shipping}
	if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
		s.logger.Warn("failed to cache addresses", zap.String("key", key), zap.Error(err))
	}

	return view, nil
}

// Update applies partial billing/shipping changes and returns the updated
// pair. At least one block must be present.
func (s *AddressesService) Update(ctx context.Context, customerID int64, billing, shipping map[string]any) (*AddressesView, error) {
	if len(billing) == 0 && len(shipping) == 0 {
		return nil, fmt.Errorf("%w: billing or shipping is required", ErrInvalidRequest)
	}

	payload := make(map[string]any, 2)
	if len(billing) > 0 {
		payload["billing"] = billing
	}
	if len(shipping) > 0 {
		payload["shipping"] = shipping
	}

	customer, err := s.commerce.UpdateCustomer(ctx, customerID, payload)
	if err != nil {
		if woocommerce.IsNotFound(err) {
			return nil, fmt.Errorf("%w: customer %d", ErrNotFound, customerID)
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	view := &AddressesView{Billing: customer.Billing, Shipping: customer.Shipping}

	// Refresh rather than drop, so the next read is already warm
	key := fmt.Sprintf("addresses:%d", customerID)
	if err := s.cache.Set(ctx, key, view, s.ttl); err != nil {
		s.logger.Warn("failed to refresh cached addresses", zap.String("key", key), zap.Error(err))
	}

	return view, nil
}
