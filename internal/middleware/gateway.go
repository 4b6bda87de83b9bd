package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/atelier-ops/workshop-api/internal/service"
	"github.com/atelier-ops/workshop-api/pkg/response"
)

// GatewayKeyHeader carries the shared secret presented by the chat gateway.
const GatewayKeyHeader = "X-Gateway-Key"

// GatewayKey guards endpoints that only the chat gateway may call, such as
// the token exchange and the spreadsheet edit webhook.
func GatewayKey(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authService.VerifyGatewayKey(c.GetHeader(GatewayKeyHeader)); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
