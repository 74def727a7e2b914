package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// Medication is one prescribed item inside a treatment
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Instructions string `json:"instructions,omitempty"`
}

// Treatment is the stable treatment schema parsed out of order meta data
type Treatment struct {
	OrderID        int64        `json:"orderId"`
	OrderDate      string       `json:"orderDate"`
	Medications    []Medication `json:"medications"`
	NextRefillDate string       `json:"nextRefillDate,omitempty"`
	Notes          string       `json:"notes,omitempty"`
}

// TreatmentEntry pairs an order summary with its parsed treatment
type TreatmentEntry struct {
	Order     PlanOrder  `json:"order"`
	Treatment *Treatment `json:"treatment"`
}

// TreatmentsPage is a page of treatment entries
type TreatmentsPage struct {
	Treatments []TreatmentEntry `json:"treatments"`
	Total      int              `json:"total"`
	Pages      int              `json:"pages"`
}

// cachedTreatment keeps the order's billing email next to the parsed
// treatment so ownership stays checkable on cache hits
type cachedTreatment struct {
	BillingEmail string     `json:"billing_email"`
	Treatment    *Treatment `json:"treatment"`
}

// TreatmentsService extracts treatment data from order custom fields. Store
// staff maintain these as ACF-style meta entries on the order.
type TreatmentsService struct {
	commerce CommerceAPI
	cache    CacheStore
	ttl      time.Duration
	logger   *zap.Logger
}

// NewTreatmentsService creates a new treatments service
func NewTreatmentsService(commerce CommerceAPI, cache CacheStore, ttl time.Duration, logger *zap.Logger) *TreatmentsService {
	return &TreatmentsService{
		commerce: commerce,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// List returns the customer's orders that carry treatment meta; orders
// without any are filtered out
func (s *TreatmentsService) List(ctx context.Context, customerID int64, page, perPage int) (*TreatmentsPage, error) {
	key := fmt.Sprintf("treatments:%d:%d:%d", customerID, page, perPage)

	var cached TreatmentsPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	orders, err := s.commerce.ListOrders(ctx, woocommerce.OrderListParams{
		CustomerID: customerID,
		Page:       page,
		PerPage:    perPage,
		Status:     "any",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
	}

	entries := make([]TreatmentEntry, 0, len(orders))
	for i := range orders {
		order := &orders[i]

		// List payloads may omit meta_data; fetch the full order when needed
		if len(order.MetaData) == 0 {
			full, err := s.commerce.GetOrder(ctx, order.ID)
			if err != nil {
				s.logger.Debug("full order fetch failed", zap.Int64("order_id", order.ID), zap.Error(err))
				continue
			}
			order = full
		}

		treatment := ParseTreatment(order)
		if treatment == nil {
			continue
		}

		entries = append(entries, TreatmentEntry{
			Order: PlanOrder{
				ID:          order.ID,
				Number:      order.Number,
				Status:      order.Status,
				DateCreated: firstNonEmptyStr(order.DateCreated, order.DateCreatedGMT),
				Total:       order.Total,
			},
			Treatment: treatment,
		})
	}

	result := &TreatmentsPage{
		Treatments: entries,
		Total:      len(entries),
		Pages:      pageCount(len(entries), perPage),
	}

	if err := s.cache.Set(ctx, key, result, s.ttl); err != nil {
		s.logger.Warn("failed to cache treatments page", zap.String("key", key), zap.Error(err))
	}

	return result, nil
}

// GetByOrder returns the treatment of one order. The order must belong to the
// user identified by email; a foreign order is forbidden, not hidden.
func (s *TreatmentsService) GetByOrder(ctx context.Context, orderID int64, email string) (*Treatment, error) {
	key := fmt.Sprintf("treatment:%d", orderID)

	var cached cachedTreatment
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil || !hit {
		order, err := s.commerce.GetOrder(ctx, orderID)
		if err != nil {
			if woocommerce.IsNotFound(err) {
				return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return nil, fmt.Errorf("%w: %s", ErrUpstreamUnavailable, err)
		}

		cached = cachedTreatment{
			BillingEmail: order.Billing.Email,
			Treatment:    ParseTreatment(order),
		}
		if err := s.cache.Set(ctx, key, &cached, s.ttl); err != nil {
			s.logger.Warn("failed to cache treatment", zap.String("key", key), zap.Error(err))
		}
	}

	if !strings.EqualFold(cached.BillingEmail, email) {
		return nil, fmt.Errorf("%w: order belongs to another user", ErrForbidden)
	}
	if cached.Treatment == nil {
		return nil, fmt.Errorf("%w: order %d has no treatment data", ErrNotFound, orderID)
	}

	return cached.Treatment, nil
}

// ParseTreatment maps treatment/medication/prescription meta entries of an
// order into the stable treatment schema. Returns nil when the order carries
// no such meta at all.
func ParseTreatment(order *woocommerce.Order) *Treatment {
	meta := make(map[string]any)
	for _, entry := range order.MetaData {
		key := strings.ToLower(entry.Key)
		if strings.Contains(key, "treatment") ||
			strings.Contains(key, "medication") ||
			strings.Contains(key, "prescription") {
			meta[key] = entry.Value
		}
	}

	if len(meta) == 0 {
		return nil
	}

	medications := parseMedicationList(meta)

	// No structured list: fall back to flat single-medication fields
	if len(medications) == 0 {
		name := metaString(meta, "medication_name", "treatment_name")
		if name != "" {
			medications = append(medications, Medication{
				Name:         name,
				Dosage:       metaString(meta, "medication_dosage", "treatment_dosage"),
				Frequency:    metaString(meta, "medication_frequency", "treatment_frequency"),
				Instructions: metaString(meta, "medication_instructions", "treatment_instructions"),
			})
		}
	}

	return &Treatment{
		OrderID:        order.ID,
		OrderDate:      firstNonEmptyStr(order.DateCreated, order.DateCreatedGMT),
		Medications:    medications,
		NextRefillDate: metaString(meta, "treatment_next_refill_date", "medication_refill_date"),
		Notes:          metaString(meta, "treatment_notes", "prescription_notes"),
	}
}

func parseMedicationList(meta map[string]any) []Medication {
	raw, ok := meta["medications"]
	if !ok {
		raw, ok = meta["medication_list"]
	}
	if !ok {
		return nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil
	}

	var medications []Medication
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		medications = append(medications, Medication{
			Name:         metaString(fields, "name", "medication_name"),
			Dosage:       metaString(fields, "dosage", "dose"),
			Frequency:    metaString(fields, "frequency", "times_per_day"),
			Instructions: metaString(fields, "instructions", "notes"),
		})
	}
	return medications
}

// metaString returns the first present key rendered as a string; meta values
// arrive as strings or numbers depending on how the field was stored
func metaString(meta map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := meta[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
