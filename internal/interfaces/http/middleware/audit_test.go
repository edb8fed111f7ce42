package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditSource(t *testing.T) {
	svc := newTestJWTService()
	sub := newTestSubject()
	pair, err := svc.GenerateTokenPair(sub)
	require.NoError(t, err)

	var src audit.Source
	r := gin.New()
	r.Use(RequestID(), JWTAuth(DefaultJWTConfig(svc)), AuditSource())
	r.GET("/api/v1/me", func(c *gin.Context) {
		src = appaudit.SourceFrom(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set(AuthHeaderKey, BearerPrefix+pair.AccessToken)
	req.Header.Set(RequestIDHeader, "req-7")
	req.Header.Set("User-Agent", "bizdesk-web")
	req.RemoteAddr = "203.0.113.9:5000"
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, src.UserID)
	assert.Equal(t, sub.UserID, *src.UserID)
	assert.Equal(t, "203.0.113.9", src.IPAddress)
	assert.Equal(t, "bizdesk-web", src.UserAgent)
	assert.Equal(t, "req-7", src.RequestID)
}
