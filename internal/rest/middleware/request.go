package middleware

import (
	"context"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/gin-gonic/gin"
)

// RequestIDMiddleware propagates an inbound request ID or mints a new one
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)

	// Echo the request ID on the response
	c.Header(types.HeaderRequestID, requestID)

	c.Next()
}
