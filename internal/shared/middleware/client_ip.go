package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"assetstore-backend/internal/shared/utils"
)

// ClientIPMiddleware extracts the client IP address from the request
// and injects it into the context for downstream handlers. Download
// records attribute activity by this IP.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set("client_ip", clientIP)

		ctx := context.WithValue(c.Request.Context(), clientIPKey{}, clientIP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

type clientIPKey struct{}

// GetClientIPFromContext retrieves the client IP from context.
// Returns empty string if not found.
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}
