package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"
)

const (
	clientIDKey        = "client_id"
	anonymousClientKey = "client_id_anonymous"
	HeaderClientID     = "X-Client-ID"
)

var clientIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ClientID picks the browser-storage owner of the request. Clients send a
// stable X-Client-ID (or client_id in the query, for websockets); without
// one the request id is used, giving the request a throwaway scope, and
// IsAnonymousClient reports true. The chosen id is echoed back.
func ClientID() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.Request.Header.Get(HeaderClientID)
		if cid == "" {
			cid = c.Query("client_id")
		}
		if !clientIDRe.MatchString(cid) {
			cid = GetRequestID(c)
			c.Set(anonymousClientKey, true)
		}
		c.Set(clientIDKey, cid)
		c.Writer.Header().Set(HeaderClientID, cid)
		c.Next()
	}
}

func GetClientID(c *gin.Context) string {
	return getString(c, clientIDKey)
}

// IsAnonymousClient reports whether the client id is the request id
// fallback, whose page state lives only for this request.
func IsAnonymousClient(c *gin.Context) bool {
	return c.GetBool(anonymousClientKey)
}
