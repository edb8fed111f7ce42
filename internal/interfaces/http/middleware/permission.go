package middleware

import (
	"net/http"

	"github.com/bizdesk/backend/internal/domain/identity"
	"github.com/bizdesk/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequirePermission requires a single permission code
func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermission(permission)
}

// RequireAnyPermission requires at least one of the permission codes
func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abort(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasAnyPermission(permissions...) {
			abort(c, http.StatusForbidden, dto.ErrCodeForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

// RequireResource derives the action from the HTTP method:
// GET read, POST create, PUT/PATCH update, DELETE delete
func RequireResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		RequirePermission(identity.Perm(resource, methodToAction(c.Request.Method)))(c)
	}
}

// RequireAction requires resource:action for non CRUD operations
func RequireAction(resource, action string) gin.HandlerFunc {
	return RequirePermission(identity.Perm(resource, action))
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return identity.ActionCreate
	case http.MethodPut, http.MethodPatch:
		return identity.ActionUpdate
	case http.MethodDelete:
		return identity.ActionDelete
	default:
		return identity.ActionRead
	}
}
