package middleware

import "github.com/gin-gonic/gin"

// limitKey prefers the authenticated subject (per-user, NAT-friendly) and
// falls back to the client IP.
func limitKey(c *gin.Context) string {
	if claims := ClaimsFrom(c); claims != nil && claims.Subject != "" {
		return "sub:" + claims.Subject
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
