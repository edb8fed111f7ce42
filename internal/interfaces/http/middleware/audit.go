package middleware

import (
	appaudit "github.com/bizdesk/backend/internal/application/audit"
	"github.com/bizdesk/backend/internal/domain/audit"
	"github.com/gin-gonic/gin"
)

// AuditSource records who is calling on the request context so audit
// entries written by event handlers carry the user, address and request.
// Runs after JWTAuth.
func AuditSource() gin.HandlerFunc {
	return func(c *gin.Context) {
		src := audit.Source{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: GetRequestID(c),
		}
		if _, userID, ok := Identity(c); ok {
			src.UserID = &userID
		}
		c.Request = c.Request.WithContext(appaudit.WithSource(c.Request.Context(), src))
		c.Next()
	}
}
