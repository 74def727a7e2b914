package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/repository"
	"github.com/wellamo/mobile-bff/internal/service"
)

const maxPerPage = 100

// MeHandler serves the authenticated user's profile and commerce data
type MeHandler struct {
	userRepo      repository.UserRepository
	orders        *service.OrdersService
	subscriptions *service.SubscriptionsService
	plan          *service.PlanService
	treatments    *service.TreatmentsService
	addresses     *service.AddressesService
	respond       errorResponder
}

// NewMeHandler creates a new me handler
func NewMeHandler(
	userRepo repository.UserRepository,
	orders *service.OrdersService,
	subscriptions *service.SubscriptionsService,
	plan *service.PlanService,
	treatments *service.TreatmentsService,
	addresses *service.AddressesService,
	env string,
	logger *zap.Logger,
) *MeHandler {
	return &MeHandler{
		userRepo:      userRepo,
		orders:        orders,
		subscriptions: subscriptions,
		plan:          plan,
		treatments:    treatments,
		addresses:     addresses,
		respond:       newErrorResponder(env, logger),
	}
}

// Me returns the stored profile of the authenticated user
func (h *MeHandler) Me(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respond.respond(c, fmt.Errorf("%w: user", service.ErrNotFound))
			return
		}
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		DisplayName: user.DisplayName,
	})
}

// UpdatePushToken stores the device push-notification token on the profile
func (h *MeHandler) UpdatePushToken(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdatePushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	if err := h.userRepo.UpdatePushToken(c.Request.Context(), claims.UserID, req.PushToken); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			h.respond.respond(c, fmt.Errorf("%w: user", service.ErrNotFound))
			return
		}
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Push token updated",
	})
}

// GetAddresses returns the user's billing and shipping addresses
func (h *MeHandler) GetAddresses(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	addresses, err := h.addresses.Get(c.Request.Context(), claims.WooCustomerID)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// UpdateAddresses applies partial billing/shipping updates
func (h *MeHandler) UpdateAddresses(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req dto.UpdateAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Validation failed",
			Message: err.Error(),
		})
		return
	}

	addresses, err := h.addresses.Update(c.Request.Context(), claims.WooCustomerID, req.Billing, req.Shipping)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, addresses)
}

// ListOrders returns a page of the user's orders
func (h *MeHandler) ListOrders(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	status := c.DefaultQuery("status", "any")

	result, err := h.orders.List(c.Request.Context(), claims.WooCustomerID, page, perPage, status)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": result.Orders,
		"pagination": dto.Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   result.Total,
			Pages:   result.Pages,
		},
	})
}

// GetOrder returns one order. An order billed to a different email is
// forbidden, not hidden.
func (h *MeHandler) GetOrder(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid order ID",
		})
		return
	}

	order, err := h.orders.Get(c.Request.Context(), orderID)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	if order.Billing == nil || !strings.EqualFold(order.Billing.Email, claims.Email) {
		h.respond.respond(c, fmt.Errorf("%w: order belongs to another user", service.ErrForbidden))
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListSubscriptions returns all subscriptions of the user
func (h *MeHandler) ListSubscriptions(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	subscriptions, err := h.subscriptions.List(c.Request.Context(), claims.WooCustomerID)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": subscriptions})
}

// GetPlan returns the user's active plan
func (h *MeHandler) GetPlan(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	plan, err := h.plan.Get(c.Request.Context(), claims.WooCustomerID)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}

// ListTreatments returns the user's orders that carry treatment data
func (h *MeHandler) ListTreatments(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	page := queryInt(c, "page", 1)
	perPage := queryInt(c, "per_page", 20)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	result, err := h.treatments.List(c.Request.Context(), claims.WooCustomerID, page, perPage)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"treatments": result.Treatments,
		"pagination": dto.Pagination{
			Page:    page,
			PerPage: perPage,
			Total:   result.Total,
			Pages:   result.Pages,
		},
	})
}

// GetTreatment returns the treatment parsed from one of the user's orders
func (h *MeHandler) GetTreatment(c *gin.Context) {
	claims, ok := currentClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Bad Request",
			Message: "Invalid order ID",
		})
		return
	}

	treatment, err := h.treatments.GetByOrder(c.Request.Context(), orderID, claims.Email)
	if err != nil {
		h.respond.respond(c, err)
		return
	}

	c.JSON(http.StatusOK, treatment)
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(fallback)))
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
