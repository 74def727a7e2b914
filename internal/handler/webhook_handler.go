package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/service"
)

// WebhookHandler accepts WooCommerce webhook deliveries
type WebhookHandler struct {
	invalidator *service.Invalidator
	logger      *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(invalidator *service.Invalidator, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{invalidator: invalidator, logger: logger}
}

// WooCommerce processes a webhook delivery. The endpoint only invalidates
// cache entries, so every delivery is acknowledged with 200; an unparseable
// body is simply an unknown event.
func (h *WebhookHandler) WooCommerce(c *gin.Context) {
	topic := c.GetHeader("X-WC-Webhook-Topic")

	var payload dto.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("unparseable webhook body", zap.String("topic", topic), zap.Error(err))
	}

	h.logger.Info("webhook received",
		zap.String("topic", topic),
		zap.Int64("resource_id", payload.ID))

	h.invalidator.Process(c.Request.Context(), topic, &payload)

	c.JSON(http.StatusOK, dto.SuccessResponse{
		Success: true,
		Message: "Webhook processed",
	})
}
