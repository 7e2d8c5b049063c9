package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yc6wppwhf9-cmyk/smart-logistic-portal/internal/interfaces/http/dto"
)

// RoleHeader carries the caller's portal role. The portal sits behind the
// plant's SSO proxy, which sets it; there is no in-process authentication.
const RoleHeader = "X-Portal-Role"

// RoleAdmin may run destructive administrative operations
const RoleAdmin = "admin"

// RequireRole rejects requests whose role header does not match role
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.EqualFold(strings.TrimSpace(c.GetHeader(RoleHeader)), role) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden,
				"This operation requires the "+role+" role",
				GetRequestID(c),
			))
			return
		}
		c.Next()
	}
}
