package middleware

import (
	"github.com/flexprice/tariff/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLen = 128

// RequestIDMiddleware tags the request context with the caller's X-Request-ID, or a
// fresh uuid when it is absent or oversized, and echoes it in the response
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader(types.HeaderRequestID)
	if requestID == "" || len(requestID) > maxRequestIDLen {
		requestID = uuid.NewString()
	}

	c.Request = c.Request.WithContext(types.SetRequestID(c.Request.Context(), requestID))
	c.Header(types.HeaderRequestID, requestID)
	c.Next()
}
