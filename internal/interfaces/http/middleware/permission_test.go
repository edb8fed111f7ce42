package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bizdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireResource(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(newTestSubject("invoice:read", "invoice:send"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(JWTAuth(DefaultJWTConfig(svc)))
	invoices := r.Group("/api/v1/invoices", RequireResource("invoice"))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	invoices.GET("", ok)
	invoices.DELETE("/:id", ok)
	r.POST("/api/v1/invoices/:id/send", RequireAction("invoice", "send"), ok)
	r.POST("/api/v1/invoices/:id/cancel", RequireAction("invoice", "cancel"), ok)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/api/v1/invoices", http.StatusOK},
		{http.MethodDelete, "/api/v1/invoices/1", http.StatusForbidden},
		{http.MethodPost, "/api/v1/invoices/1/send", http.StatusOK},
		{http.MethodPost, "/api/v1/invoices/1/cancel", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
			}
		})
	}
}

func TestRequirePermission_WithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequirePermission("audit:read"), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMethodToAction(t *testing.T) {
	assert.Equal(t, "read", methodToAction(http.MethodGet))
	assert.Equal(t, "create", methodToAction(http.MethodPost))
	assert.Equal(t, "update", methodToAction(http.MethodPut))
	assert.Equal(t, "update", methodToAction(http.MethodPatch))
	assert.Equal(t, "delete", methodToAction(http.MethodDelete))
}
