package middleware

import (
	"github.com/gin-gonic/gin"
)

var apiSecurityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	// Dashboards and exports carry personal wellbeing data
	{"Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate"},
	{"Pragma", "no-cache"},
	{"Expires", "0"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

// SecurityHeaders adds security-related HTTP headers to all responses.
// HSTS is only sent in production, where TLS is terminated in front of the API.
func SecurityHeaders(isProduction bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range apiSecurityHeaders {
			c.Header(h[0], h[1])
		}
		if isProduction {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
