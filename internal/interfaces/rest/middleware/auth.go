package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-event-relay/internal/infrastructure/metrics"
)

// SecretHeader is the request header carrying the shared relay secret.
const SecretHeader = "X-Relay-Secret"

// Authorize rejects requests failing the supplied predicate with 401
// before any handler runs. The predicate is caller-supplied; the relay
// core never sees unauthorized requests.
func Authorize(authorized func(*http.Request) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorized(c.Request) {
			metrics.NotificationsRejectedTotal.WithLabelValues("unauthorized").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}
		c.Next()
	}
}

// SharedSecret builds a predicate comparing the secret header against the
// configured value in constant time. An empty secret disables the check.
func SharedSecret(secret string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		if secret == "" {
			return true
		}
		provided := r.Header.Get(SecretHeader)
		return subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1
	}
}
