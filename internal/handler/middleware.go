package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wellamo/mobile-bff/internal/domain"
	"github.com/wellamo/mobile-bff/internal/dto"
	"github.com/wellamo/mobile-bff/internal/service"
)

// Context keys set by AuthMiddleware
const (
	ctxUserID        = "user_id"
	ctxEmail         = "email"
	ctxWooCustomerID = "woo_customer_id"
	ctxClaims        = "claims"
)

// AuthMiddleware validates the bearer token and adds user info to the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Authorization header is required",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.ErrorResponse{
				Error:   "Unauthorized",
				Message: "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxWooCustomerID, claims.WooCustomerID)
		c.Set(ctxClaims, claims)

		c.Next()
	}
}

// currentClaims returns the access claims AuthMiddleware stored on the context
func currentClaims(c *gin.Context) (*domain.AccessClaims, bool) {
	value, ok := c.Get(ctxClaims)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*domain.AccessClaims)
	return claims, ok
}
