// Package woocommerce is a typed REST client for the WooCommerce API.
// Stores migrated from legacy installs sometimes expose resources only under
// the v1 namespace, so every request against a v3 path retries once against
// v1 on a 404 before the error is surfaced.
package woocommerce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const maxErrorBody = 200

var wpJSONSuffix = regexp.MustCompile(`/wp-json.*$`)

// APIError is a non-2xx response from the WooCommerce API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("woocommerce api returned %d: %s", e.StatusCode, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client calls the WooCommerce REST API with basic auth
type Client struct {
	apiURL     string
	authHeader string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a WooCommerce client. baseURL may be the site root or a
// full API URL; a bare root is normalized to the v3 namespace.
func NewClient(baseURL, consumerKey, consumerSecret string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" || consumerKey == "" || consumerSecret == "" {
		return nil, errors.New("woocommerce api credentials are not configured")
	}

	apiURL := strings.TrimRight(baseURL, "/")
	if !strings.Contains(apiURL, "/wp-json/wc/") {
		apiURL = wpJSONSuffix.ReplaceAllString(apiURL, "") + "/wp-json/wc/v3"
	}

	auth := base64.StdEncoding.EncodeToString([]byte(consumerKey + ":" + consumerSecret))

	return &Client{
		apiURL:     apiURL,
		authHeader: "Basic " + auth,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := c.apiURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// do performs one request, retrying once against the v1 namespace when a v3
// path answers 404. The retry applies to reads and writes alike.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, body []byte, dest any) error {
	reqURL := c.buildURL(endpoint, params)

	resp, err := c.send(ctx, method, reqURL, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotFound && strings.Contains(reqURL, "/wc/v3") {
		resp.Body.Close()
		v1URL := strings.Replace(reqURL, "/wc/v3", "/wc/v1", 1)
		c.logger.Debug("retrying against v1 namespace",
			zap.String("method", method), zap.String("url", v1URL))
		resp, err = c.send(ctx, method, v1URL, body)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode woocommerce response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, reqURL string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build woocommerce request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("woocommerce unreachable: %w", err)
	}
	return resp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, dest any) error {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, dest)
}

func (c *Client) put(ctx context.Context, endpoint string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode woocommerce payload: %w", err)
	}
	return c.do(ctx, http.MethodPut, endpoint, nil, body, dest)
}

// FindCustomerByEmail searches customers by email and returns the one whose
// email matches exactly (case-insensitive). Returns (nil, nil) when the store
// has no such customer.
func (c *Client) FindCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := url.Values{}
	params.Set("email", email)
	params.Set("per_page", "10")

	var customers []Customer
	if err := c.get(ctx, "/customers", params, &customers); err != nil {
		return nil, err
	}

	for i := range customers {
		if strings.EqualFold(customers[i].Email, email) {
			return &customers[i], nil
		}
	}
	return nil, nil
}

func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	var customer Customer
	if err := c.get(ctx, "/customers/"+strconv.FormatInt(customerID, 10), nil, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// UpdateCustomer PUTs a partial customer payload (e.g. billing/shipping) and
// returns the updated customer
func (c *Client) UpdateCustomer(ctx context.Context, customerID int64, payload any) (*Customer, error) {
	var customer Customer
	if err := c.put(ctx, "/customers/"+strconv.FormatInt(customerID, 10), payload, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// OrderListParams filters an order listing. Status "any" or empty means no
// status filter.
type OrderListParams struct {
	CustomerID int64
	Page       int
	PerPage    int
	Status     string
}

func (c *Client) ListOrders(ctx context.Context, p OrderListParams) ([]Order, error) {
	params := url.Values{}
	params.Set("customer", strconv.FormatInt(p.CustomerID, 10))
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("per_page", strconv.Itoa(p.PerPage))
	params.Set("orderby", "date")
	params.Set("order", "desc")
	if p.Status != "" && p.Status != "any" {
		params.Set("status", p.Status)
	}

	var orders []Order
	if err := c.get(ctx, "/orders", params, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if err := c.get(ctx, "/orders/"+strconv.FormatInt(orderID, 10), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SubscriptionListParams filters a subscription listing
type SubscriptionListParams struct {
	CustomerID int64
	Status     string
	PerPage    int
}

func (c *Client) ListSubscriptions(ctx context.Context, p SubscriptionListParams) ([]Subscription, error) {
	params := url.Values{}
	params.Set("customer", strconv.FormatInt(p.CustomerID, 10))
	if p.PerPage > 0 {
		params.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Status != "" {
		params.Set("status", p.Status)
	} else {
		params.Set("orderby", "date")
		params.Set("order", "desc")
	}

	var subscriptions []Subscription
	if err := c.get(ctx, "/subscriptions", params, &subscriptions); err != nil {
		return nil, err
	}
	return subscriptions, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	var product Product
	if err := c.get(ctx, "/products/"+strconv.FormatInt(productID, 10), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}
