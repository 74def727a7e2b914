package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/internal/repository"
	"github.com/wellamo/mobile-bff/internal/woocommerce"
	"github.com/wellamo/mobile-bff/internal/wordpress"
)

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	users map[string]*domain.AppUser
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.AppUser)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.AppUser) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.WPUserID == user.WPUserID {
			return repository.ErrDuplicateWPUser
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.AppUser, error) {
	if user, ok := r.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByWPUserID(_ context.Context, wpUserID string) (*domain.AppUser, error) {
	for _, user := range r.users {
		if user.WPUserID == wpUserID {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.AppUser, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) RecordLogin(_ context.Context, userID, ip string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	user.LoginCount++
	user.LastLoginAt = &now
	if ip != "" {
		user.LastLoginIP = &ip
	}
	user.Status = domain.StatusActive
	return nil
}

func (r *fakeUserRepo) UpdatePushToken(_ context.Context, userID string, token *string) error {
	user, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PushToken = token
	return nil
}

// fakeTokenRepo is an in-memory TokenRepository
type fakeTokenRepo struct {
	tokens []*domain.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *fakeTokenRepo) FindActiveByUser(_ context.Context, userID string) ([]*domain.RefreshToken, error) {
	var out []*domain.RefreshToken
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.Usable(now) {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) FindActive(_ context.Context) ([]*domain.RefreshToken, error) {
	var out []*domain.RefreshToken
	now := time.Now()
	for _, token := range r.tokens {
		if token.Usable(now) {
			out = append(out, token)
		}
	}
	return out, nil
}

func (r *fakeTokenRepo) Revoke(_ context.Context, tokenID string) error {
	for _, token := range r.tokens {
		if token.ID == tokenID && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeTokenRepo) DeleteExpired(_ context.Context) error {
	kept := r.tokens[:0]
	now := time.Now()
	for _, token := range r.tokens {
		if token.Usable(now) {
			kept = append(kept, token)
		}
	}
	r.tokens = kept
	return nil
}

// fakeIdentity is a canned WordPress identity provider
type fakeIdentity struct {
	identities map[string]*wordpress.Identity // keyed by identifier and password "id|pw"
	err        error
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{identities: make(map[string]*wordpress.Identity)}
}

func (f *fakeIdentity) allow(identifier, password string, identity *wordpress.Identity) {
	f.identities[identifier+"|"+password] = identity
}

func (f *fakeIdentity) Authenticate(_ context.Context, usernameOrEmail, password string) (*wordpress.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	if identity, ok := f.identities[usernameOrEmail+"|"+password]; ok {
		return identity, nil
	}
	return nil, wordpress.ErrRejected
}

// fakeCommerce is an in-memory CommerceAPI that counts calls per method
type fakeCommerce struct {
	customers map[int64]*woocommerce.Customer
	orders    map[int64]*woocommerce.Order
	orderList []woocommerce.Order
	subs      []woocommerce.Subscription
	products  map[int64]*woocommerce.Product

	failOrders bool
	calls      map[string]int
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		customers: make(map[int64]*woocommerce.Customer),
		orders:    make(map[int64]*woocommerce.Order),
		products:  make(map[int64]*woocommerce.Product),
		calls:     make(map[string]int),
	}
}

func notFoundErr() error {
	return &woocommerce.APIError{StatusCode: http.StatusNotFound, Body: "not found"}
}

func (f *fakeCommerce) FindCustomerByEmail(_ context.Context, email string) (*woocommerce.Customer, error) {
	f.calls["FindCustomerByEmail"]++
	for _, customer := range f.customers {
		if strings.EqualFold(customer.Email, email) {
			return customer, nil
		}
	}
	return nil, nil
}

func (f *fakeCommerce) GetCustomer(_ context.Context, customerID int64) (*woocommerce.Customer, error) {
	f.calls["GetCustomer"]++
	if customer, ok := f.customers[customerID]; ok {
		return customer, nil
	}
	return nil, notFoundErr()
}

func (f *fakeCommerce) UpdateCustomer(_ context.Context, customerID int64, payload any) (*woocommerce.Customer, error) {
	f.calls["UpdateCustomer"]++
	customer, ok := f.customers[customerID]
	if !ok {
		return nil, notFoundErr()
	}
	if fields, ok := payload.(map[string]any); ok {
		if billing, ok := fields["billing"].(map[string]any); ok {
			if city, ok := billing["city"].(string); ok {
				customer.Billing.City = city
			}
		}
		if shipping, ok := fields["shipping"].(map[string]any); ok {
			if city, ok := shipping["city"].(string); ok {
				customer.Shipping.City = city
			}
		}
	}
	return customer, nil
}

func (f *fakeCommerce) ListOrders(_ context.Context, p woocommerce.OrderListParams) ([]woocommerce.Order, error) {
	f.calls["ListOrders"]++
	if f.failOrders {
		return nil, fmt.Errorf("commerce down")
	}
	var out []woocommerce.Order
	for _, order := range f.orderList {
		if order.CustomerID == p.CustomerID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeCommerce) GetOrder(_ context.Context, orderID int64) (*woocommerce.Order, error) {
	f.calls["GetOrder"]++
	if f.failOrders {
		return nil, fmt.Errorf("commerce down")
	}
	if order, ok := f.orders[orderID]; ok {
		return order, nil
	}
	return nil, notFoundErr()
}

func (f *fakeCommerce) ListSubscriptions(_ context.Context, p woocommerce.SubscriptionListParams) ([]woocommerce.Subscription, error) {
	f.calls["ListSubscriptions"]++
	var out []woocommerce.Subscription
	for _, sub := range f.subs {
		if p.Status == "" || sub.Status == p.Status {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (f *fakeCommerce) GetProduct(_ context.Context, productID int64) (*woocommerce.Product, error) {
	f.calls["GetProduct"]++
	if product, ok := f.products[productID]; ok {
		return product, nil
	}
	return nil, notFoundErr()
}
