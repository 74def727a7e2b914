package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/dto"
)

// EventKind classifies a WooCommerce webhook delivery
type EventKind string

const (
	EventOrder        EventKind = "order"
	EventSubscription EventKind = "subscription"
	EventCustomer     EventKind = "customer"
	EventUnknown      EventKind = "unknown"
)

// Invalidator drops cache entries affected by WooCommerce webhook events.
// It only ever invalidates, never writes data, so deliveries are accepted
// without signature verification and are always acknowledged.
type Invalidator struct {
	cache  CacheStore
	logger *zap.Logger
}

// NewInvalidator creates a new webhook invalidator
func NewInvalidator(cache CacheStore, logger *zap.Logger) *Invalidator {
	return &Invalidator{cache: cache, logger: logger}
}

// Classify decides what kind of event a delivery is. The topic header wins;
// a missing or unhelpful topic falls back to the payload shape, where an
// order-shaped body (id + status) takes priority over a customer-shaped one
// (billing/shipping present).
func Classify(topic string, payload *dto.WebhookPayload) EventKind {
	switch {
	case strings.Contains(topic, "order"):
		return EventOrder
	case strings.Contains(topic, "subscription"):
		return EventSubscription
	case payload.ID != 0 && payload.Status != "":
		return EventOrder
	case len(payload.Billing) > 0 || len(payload.Shipping) > 0:
		return EventCustomer
	default:
		return EventUnknown
	}
}

// Process invalidates the cache entries the event touches and returns the
// classification. Unknown events are acknowledged without action.
func (s *Invalidator) Process(ctx context.Context, topic string, payload *dto.WebhookPayload) EventKind {
	kind := Classify(topic, payload)

	switch kind {
	case EventOrder:
		if payload.CustomerID != 0 {
			s.invalidateCustomer(ctx, payload.CustomerID)
			s.invalidate(ctx, fmt.Sprintf("order:%d", payload.ID))
			s.invalidate(ctx, fmt.Sprintf("treatment:%d", payload.ID))
		}
		s.logger.Info("cache invalidated for order event",
			zap.Int64("order_id", payload.ID),
			zap.Int64("customer_id", payload.CustomerID))

	case EventSubscription:
		if payload.CustomerID != 0 {
			s.invalidatePattern(ctx, fmt.Sprintf("plan:%d", payload.CustomerID))
			s.invalidatePattern(ctx, fmt.Sprintf("subs:%d", payload.CustomerID))
		}
		s.logger.Info("cache invalidated for subscription event",
			zap.Int64("subscription_id", payload.ID),
			zap.Int64("customer_id", payload.CustomerID))

	case EventCustomer:
		// For customer events the resource id IS the customer id
		if payload.ID != 0 {
			s.invalidateCustomer(ctx, payload.ID)
		}
		s.logger.Info("cache invalidated for customer event",
			zap.Int64("customer_id", payload.ID))

	default:
		s.logger.Info("webhook ignored, no classification",
			zap.String("topic", topic), zap.Int64("resource_id", payload.ID))
	}

	return kind
}

func (s *Invalidator) invalidateCustomer(ctx context.Context, customerID int64) {
	s.invalidatePattern(ctx, fmt.Sprintf("plan:%d", customerID))
	s.invalidatePattern(ctx, fmt.Sprintf("subs:%d", customerID))
	s.invalidatePattern(ctx, fmt.Sprintf("orders:%d:*", customerID))
}

func (s *Invalidator) invalidate(ctx context.Context, key string) {
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Invalidator) invalidatePattern(ctx context.Context, pattern string) {
	if err := s.cache.InvalidatePattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
