package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/ctxutil"
)

// CORS allows the configured origins to call the API. A "*" origin allows
// every origin but drops credentials.
func CORS(c *config.CORS) gin.HandlerFunc {
	cc := cors.Config{
		AllowOrigins:     c.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", ctxutil.TraceHeader},
		ExposeHeaders:    []string{ctxutil.TraceHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range c.AllowOrigins {
		if o == "*" {
			cc.AllowOrigins = nil
			cc.AllowAllOrigins = true
			cc.AllowCredentials = false
			break
		}
	}
	return cors.New(cc)
}
