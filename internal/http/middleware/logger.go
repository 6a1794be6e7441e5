package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one access line per request with request and client ids.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		cid := GetClientID(c)
		if cid == "" {
			cid = "-"
		}

		log.Printf("[HTTP] request_id=%s client_id=%s method=%s path=%s status=%d latency_ms=%.3f ip=%s errors=%d",
			GetRequestID(c),
			cid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(latency.Microseconds())/1000.0,
			c.ClientIP(),
			len(c.Errors),
		)
	}
}
