package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wellamo/mobile-bff/internal/domain"
)

func newAuthTestRouter() (*gin.Engine, *fakeAuthService) {
	gin.SetMode(gin.TestMode)

	auth := newFakeAuthService()
	auth.claims["good-token"] = &domain.AccessClaims{
		UserID:        "user-1",
		Email:         "anna@example.com",
		WooCustomerID: 42,
	}

	router := gin.New()
	router.GET("/v1/me/ping", AuthMiddleware(auth), func(c *gin.Context) {
		claims, ok := currentClaims(c)
		if !ok {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":         claims.UserID,
			"email":           claims.Email,
			"woo_customer_id": claims.WooCustomerID,
		})
	})
	return router, auth
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, _ := newAuthTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/me/ping", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anna@example.com")
	assert.Contains(t, rec.Body.String(), "42")
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	router, _ := newAuthTestRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"malformed", "Bearer"},
		{"unknown token", "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me/ping", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
