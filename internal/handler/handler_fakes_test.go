package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/repository"
	"github.com/wellamo/mobile-bff/internal/service"
	"github.com/wellamo/mobile-bff/internal/woocommerce"
)

// fakeAuthService hands out canned claims per bearer token
type fakeAuthService struct {
	claims map[string]*domain.AccessClaims
}

func newFakeAuthService() *fakeAuthService {
	return &fakeAuthService{claims: make(map[string]*domain.AccessClaims)}
}

func (f *fakeAuthService) Login(context.Context, string, string, string, string) (*dto.LoginResponse, error) {
	return nil, service.ErrInvalidCredentials
}

func (f *fakeAuthService) Refresh(context.Context, string) (*dto.RefreshResponse, error) {
	return nil, service.ErrInvalidToken
}

func (f *fakeAuthService) Logout(context.Context, string) error {
	return nil
}

func (f *fakeAuthService) ValidateToken(tokenString string) (*domain.AccessClaims, error) {
	if claims, ok := f.claims[tokenString]; ok {
		return claims, nil
	}
	return nil, service.ErrInvalidToken
}

// fakeUserRepo stores profiles in a map; only the methods the me handler
// touches are meaningful
type fakeUserRepo struct {
	users map[string]*domain.AppUser
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.AppUser)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.AppUser) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.AppUser, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByWPUserID(context.Context, string) (*domain.AppUser, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(context.Context, string) (*domain.AppUser, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) RecordLogin(context.Context, string, string) error {
	return nil
}

func (f *fakeUserRepo) UpdatePushToken(_ context.Context, userID string, token *string) error {
	user, ok := f.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	user.PushToken = token
	return nil
}

// fakeCommerce serves canned orders and products
type fakeCommerce struct {
	orders   map[int64]*woocommerce.Order
	products map[int64]*woocommerce.Product
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		orders:   make(map[int64]*woocommerce.Order),
		products: make(map[int64]*woocommerce.Product),
	}
}

func notFoundErr() error {
	return &woocommerce.APIError{StatusCode: http.StatusNotFound, Body: "not found"}
}

func (f *fakeCommerce) FindCustomerByEmail(context.Context, string) (*woocommerce.Customer, error) {
	return nil, nil
}

func (f *fakeCommerce) GetCustomer(context.Context, int64) (*woocommerce.Customer, error) {
	return nil, notFoundErr()
}

func (f *fakeCommerce) UpdateCustomer(context.Context, int64, any) (*woocommerce.Customer, error) {
	return nil, notFoundErr()
}

func (f *fakeCommerce) ListOrders(context.Context, woocommerce.OrderListParams) ([]woocommerce.Order, error) {
	return nil, fmt.Errorf("not wired in this test")
}

func (f *fakeCommerce) GetOrder(_ context.Context, orderID int64) (*woocommerce.Order, error) {
	if order, ok := f.orders[orderID]; ok {
		return order, nil
	}
	return nil, notFoundErr()
}

func (f *fakeCommerce) ListSubscriptions(context.Context, woocommerce.SubscriptionListParams) ([]woocommerce.Subscription, error) {
	return nil, nil
}

func (f *fakeCommerce) GetProduct(_ context.Context, productID int64) (*woocommerce.Product, error) {
	if product, ok := f.products[productID]; ok {
		return product, nil
	}
	return nil, notFoundErr()
}
