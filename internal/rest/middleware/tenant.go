package middleware

import (
	"context"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/gin-gonic/gin"
)

// TenantMiddleware resolves the tenant and acting user from request headers.
// Requests without headers fall back to the default tenant so single-tenant
// deployments work without any client-side changes.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader(types.HeaderTenantID)
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}

	userID := c.GetHeader(types.HeaderUserID)
	if userID == "" {
		userID = types.DefaultUserID
	}

	ctx = context.WithValue(ctx, types.CtxTenantID, tenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, userID)
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}
