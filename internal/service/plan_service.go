package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// PlanSubscription is the subscription half of a plan entry
type PlanSubscription struct {
	ID              int64              `json:"id"`
	Status          string             `json:"status"`
	NextPaymentDate string             `json:"next_payment_date,omitempty"`
	LineItems       []SubscriptionItem `json:"line_items"`
}

// PlanOrder is the order summary attached to a plan entry
type PlanOrder struct {
	ID          int64  `json:"id"`
	Number      string `json:"number"`
	Status      string `json:"status"`
	DateCreated string `json:"date_created"`
	Total       string `json:"total"`
}

// PlanEntry pairs an active subscription with its latest related order.
// LatestOrder is omitted when the subscription has no related orders or the
// order lookup fails.
type PlanEntry struct {
	Subscription PlanSubscription `json:"subscription"`
	LatestOrder  *PlanOrder       `json:"latest_order,omitempty"`
}

// PlanService aggregates the customer's current treatment plan: every active
// subscription together with the most recent order it produced
type PlanService struct {
	commerce      CommerceAPI
	subscriptions *SubscriptionsService
	cache         CacheStore
	ttl           time.Duration
	logger        *zap.Logger
}

// NewPlanService creates a new plan service
func NewPlanService(commerce CommerceAPI, subscriptions *SubscriptionsService, cache CacheStore, ttl time.Duration, logger *zap.Logger) *PlanService {
	return &PlanService{
		commerce:      commerce,
		subscriptions: subscriptions,
		cache:         cache,
		ttl:           ttl,
		logger:        logger,
	}
}

// Get returns the active plan for a customer
func (s *PlanService) Get(ctx context.Context, customerID int64) ([]PlanEntry, error) {
	key := fmt.Sprintf("plan:%d", customerID)

	var cached []PlanEntry
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	activeSubs, err := s.subscriptions.fetch(ctx, customerID, "active")
	if err != nil {
		return nil, err
	}

	entries := make([]PlanEntry, 0, len(activeSubs))
	for i := range activeSubs {
		entries = append(entries, s.buildEntry(ctx, &activeSubs[i]))
	}

	if err := s.cache.Set(ctx, key, entries, s.ttl); err != nil {
		s.logger.Warn("failed to cache plan", zap.String("key", key), zap.Error(err))
	}

	return entries, nil
}

func (s *PlanService) buildEntry(ctx context.Context, sub *woocommerce.Subscription) PlanEntry {
	view := buildSubscriptionView(sub)
	entry := PlanEntry{
		Subscription: PlanSubscription{
			ID:              view.ID,
			Status:          view.Status,
			NextPaymentDate: view.NextPaymentDate,
			LineItems:       view.LineItems,
		},
	}

	if len(sub.RelatedOrders) == 0 {
		return entry
	}

	// Related orders arrive oldest first; the last one is the current cycle
	latestOrderID := sub.RelatedOrders[len(sub.RelatedOrders)-1]
	order, err := s.commerce.GetOrder(ctx, latestOrderID)
	if err != nil {
		// The plan is still useful without the order summary
		s.logger.Warn("latest order lookup failed for subscription",
			zap.Int64("subscription_id", sub.ID),
			zap.Int64("order_id", latestOrderID),
			zap.Error(err))
		return entry
	}

	entry.LatestOrder = &PlanOrder{
		ID:          order.ID,
		Number:      order.Number,
		Status:      order.Status,
		DateCreated: firstNonEmptyStr(order.DateCreated, order.DateCreatedGMT),
		Total:       order.Total,
	}

	return entry
}
