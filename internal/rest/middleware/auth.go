package middleware

import (
	"context"

	"github.com/billforge/billforge/internal/types"
	"github.com/gin-gonic/gin"
)

// TenantMiddleware resolves the tenant and acting user from request headers
// and stores them in the request context for downstream handlers. Requests
// without the headers fall back to the default tenant.
func TenantMiddleware(c *gin.Context) {
	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx := c.Request.Context()
	ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, userID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
