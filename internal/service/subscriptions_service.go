package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// SubscriptionItem is the stable line-item shape inside a subscription
type SubscriptionItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    string `json:"total"`
}

// SubscriptionView is the stable subscription shape served to the app
type SubscriptionView struct {
	ID                 int64              `json:"id"`
	Status             string             `json:"status"`
	DateCreated        string             `json:"date_created"`
	DateModified       string             `json:"date_modified,omitempty"`
	NextPaymentDate    string             `json:"next_payment_date,omitempty"`
	EndDate            string             `json:"end_date,omitempty"`
	BillingPeriod      string             `json:"billing_period,omitempty"`
	BillingInterval    string             `json:"billing_interval,omitempty"`
	Total              string             `json:"total"`
	Currency           string             `json:"currency"`
	LineItems          []SubscriptionItem `json:"line_items"`
	PaymentMethod      string             `json:"payment_method,omitempty"`
	PaymentMethodTitle string             `json:"payment_method_title,omitempty"`
	RelatedOrders      []int64            `json:"related_orders"`
}

// SubscriptionsService serves customer subscriptions read-through the cache.
// Stores without the subscriptions plugin answer 404, which is treated as an
// empty list rather than an error.
type SubscriptionsService struct {
	commerce CommerceAPI
	cache    CacheStore
	ttl      time.Duration
	logger   *zap.Logger
}

// NewSubscriptionsService creates a new subscriptions service
func NewSubscriptionsService(commerce CommerceAPI, cache CacheStore, ttl time.Duration, logger *zap.Logger) *SubscriptionsService {
	return &SubscriptionsService{
		commerce: commerce,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// List returns all subscriptions of a customer, newest first
func (s *SubscriptionsService) List(ctx context.Context, customerID int64) ([]SubscriptionView, error) {
	key := fmt.Sprintf("subs:%d", customerID)

	var cached []SubscriptionView
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	subs, err := s.fetch(ctx, customerID, "")
	if err != nil {
		return nil, err
	}

	views := buildSubscriptionViews(subs)
	if err := s.cache.Set(ctx, key, views, s.ttl); err != nil {
		s.logger.Warn("failed to cache subscriptions", zap.String("key", key), zap.Error(err))
	}

	return views, nil
}

// fetch lists subscriptions with an optional status filter, mapping a 404 to
// an empty result
func (s *SubscriptionsService) fetch(ctx context.Context, customerID int64, status string) ([]woocommerce.Subscription, error) {
	subs, err := s.commerce.ListSubscriptions(ctx, woocommerce.SubscriptionListParams{
		CustomerID: customerID,
		Status:     status,
		PerPage:    50,
	})
	if err != nil {
		if woocommerce.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}
	return subs, nil
}

func buildSubscriptionViews(subs []woocommerce.Subscription) []SubscriptionView {
	views := make([]SubscriptionView, 0, len(subs))
	for i := range subs {
		views = append(views, buildSubscriptionView(&subs[i]))
	}
	return views
}

func buildSubscriptionView(sub *woocommerce.Subscription) SubscriptionView {
	view := SubscriptionView{
		ID:                 sub.ID,
		Status:             sub.Status,
		DateCreated:        firstNonEmptyStr(sub.DateCreated, sub.DateCreatedGMT),
		DateModified:       firstNonEmptyStr(sub.DateModified, sub.DateModifiedGMT),
		NextPaymentDate:    firstNonEmptyStr(sub.NextPaymentDate, sub.NextPaymentDateGMT),
		EndDate:            firstNonEmptyStr(sub.EndDate, sub.EndDateGMT),
		BillingPeriod:      sub.BillingPeriod,
		BillingInterval:    sub.BillingInterval,
		Total:              sub.Total,
		Currency:           sub.Currency,
		LineItems:          make([]SubscriptionItem, 0, len(sub.LineItems)),
		PaymentMethod:      sub.PaymentMethod,
		PaymentMethodTitle: sub.PaymentMethodTitle,
		RelatedOrders:      sub.RelatedOrders,
	}
	if view.Status == "" {
		view.Status = "unknown"
	}
	if view.Total == "" {
		view.Total = "0"
	}
	if view.Currency == "" {
		view.Currency = "USD"
	}
	if view.RelatedOrders == nil {
		view.RelatedOrders = []int64{}
	}

	for _, item := range sub.LineItems {
		view.LineItems = append(view.LineItems, SubscriptionItem{
			ID:       item.ID,
			Name:     item.Name,
			Quantity: item.Quantity,
			Total:    item.Total,
		})
	}

	return view
}
