package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// OrderItem is a stable line-item view. Image is the first product image URL
// or null when the product lookup fails.
type OrderItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Quantity    int     `json:"quantity"`
	Price       string  `json:"price"`
	Subtotal    string  `json:"subtotal"`
	Total       string  `json:"total"`
	SKU         string  `json:"sku"`
	Image       *string `json:"image"`
	ProductID   int64   `json:"product_id,omitempty"`
	VariationID int64   `json:"variation_id,omitempty"`
}

// OrderView is the stable order shape served to the app
type OrderView struct {
	ID            int64                `json:"id"`
	Number        string               `json:"number"`
	Status        string               `json:"status"`
	DateCreated   string               `json:"date_created"`
	DateModified  string               `json:"date_modified,omitempty"`
	DateCompleted string               `json:"date_completed,omitempty"`
	DatePaid      string               `json:"date_paid,omitempty"`
	Total         string               `json:"total"`
	Currency      string               `json:"currency"`
	Items         []OrderItem          `json:"items"`
	Billing       *woocommerce.Address `json:"billing"`
	Shipping      *woocommerce.Address `json:"shipping"`
}

// OrdersPage is a page of orders with its pagination summary
type OrdersPage struct {
	Orders []OrderView `json:"orders"`
	Total  int         `json:"total"`
	Pages  int         `json:"pages"`
}

// OrdersService serves customer orders read-through the cache
type OrdersService struct {
	commerce  CommerceAPI
	cache     CacheStore
	listTTL   time.Duration
	detailTTL time.Duration
	logger    *zap.Logger
}

// NewOrdersService creates a new orders service
func NewOrdersService(commerce CommerceAPI, cache CacheStore, listTTL, detailTTL time.Duration, logger *zap.Logger) *OrdersService {
	return &OrdersService{
		commerce:  commerce,
		cache:     cache,
		listTTL:   listTTL,
		detailTTL: detailTTL,
		logger:    logger,
	}
}

// List returns a page of the customer's orders, newest first
func (s *OrdersService) List(ctx context.Context, customerID int64, page, perPage int, status string) (*OrdersPage, error) {
	if status == "" {
		status = "any"
	}
	key := fmt.Sprintf("orders:%d:%d:%d:%s", customerID, page, perPage, status)

	var cached OrdersPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	orders, err := s.commerce.ListOrders(ctx, woocommerce.OrderListParams{
		CustomerID: customerID,
		Page:       page,
		PerPage:    perPage,
		Status:     status,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	result := &OrdersPage{
		Orders: make([]OrderView, 0, len(orders)),
		Total:  len(orders),
		Pages:  pageCount(len(orders), perPage),
	}
	for i := range orders {
		result.Orders = append(result.Orders, s.buildOrderView(ctx, &orders[i]))
	}

	if err := s.cache.Set(ctx, key, result, s.listTTL); err != nil {
		s.logger.Warn("failed to cache orders page", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

// Get returns one order with enriched line items. Ownership is the caller's
// concern; the view includes the billing block for that check.
func (s *OrdersService) Get(ctx context.Context, orderID int64) (*OrderView, error) {
	key := fmt.Sprintf("order:%d", orderID)

	var cached OrderView
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	order, err := s.commerce.GetOrder(ctx, orderID)
	if err != nil {
		if woocommerce.IsNotFound(err) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	view := s.buildOrderView(ctx, order)
	if err := s.cache.Set(ctx, key, &view, s.detailTTL); err != nil {
		s.logger.Warn("failed to cache order", zap.String("key", key), zap.Error(err))
	}

	return &view, nil
}

func (s *OrdersService) buildOrderView(ctx context.Context, order *woocommerce.Order) OrderView {
	view := OrderView{
		ID:            order.ID,
		Number:        order.Number,
		Status:        order.Status,
		DateCreated:   firstNonEmptyStr(order.DateCreated, order.DateCreatedGMT),
		DateModified:  firstNonEmptyStr(order.DateModified, order.DateModifiedGMT),
		DateCompleted: order.DateCompleted,
		DatePaid:      order.DatePaid,
		Total:         order.Total,
		Currency:      order.Currency,
		Items:         make([]OrderItem, 0, len(order.LineItems)),
		Billing:       &order.Billing,
		Shipping:      &order.Shipping,
	}
	if view.Number == "" {
		view.Number = strconv.FormatInt(order.ID, 10)
	}
	if view.Status == "" {
		view.Status = "unknown"
	}
	if view.Currency == "" {
		view.Currency = "USD"
	}

	for _, item := range order.LineItems {
		view.Items = append(view.Items, OrderItem{
			ID:          item.ID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Price:       strconv.FormatFloat(item.Price, 'f', -1, 64),
			Subtotal:    item.Subtotal,
			Total:       item.Total,
			SKU:         item.SKU,
			Image:       s.productImage(ctx, item.ProductID),
			ProductID:   item.ProductID,
			VariationID: item.VariationID,
		})
	}

	return view
}

// productImage looks up the first image of a product; any failure means the
// item simply ships without an image
func (s *OrdersService) productImage(ctx context.Context, productID int64) *string {
	if productID == 0 {
		return nil
	}

	product, err := s.commerce.GetProduct(ctx, productID)
	if err != nil {
		if !woocommerce.IsNotFound(err) && !errors.Is(err, context.Canceled) {
			s.logger.Debug("product image lookup failed",
				zap.Int64("product_id", productID), zap.Error(err))
		}
		return nil
	}
	if len(product.Images) == 0 {
		return nil
	}
	return &product.Images[0].Src
}

func pageCount(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func firstNonEmptyStr(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
