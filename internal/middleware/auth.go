package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/GoPolymarket/fusiongate/internal/config"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAPIKey     = "X-API-Key"
	ContextClientKey = "client"

	// AnonymousClient is every caller admitted without an API key.
	AnonymousClient = "anonymous"
)

// AuthMiddleware admits requests carrying a configured API key. Without
// require_api_key, requests with no key pass as the anonymous client.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	keys := make([][]byte, 0, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	return func(c *gin.Context) {
		apiKey := c.GetHeader(HeaderAPIKey)
		if apiKey == "" {
			if !cfg.Auth.RequireAPIKey {
				c.Set(ContextClientKey, AnonymousClient)
				c.Next()
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing API key"})
			c.Abort()
			return
		}

		if !knownKey(keys, []byte(apiKey)) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid API key"})
			c.Abort()
			return
		}

		c.Set(ContextClientKey, clientID(apiKey))
		c.Next()
	}
}

// ClientFrom is the client AuthMiddleware admitted, or AnonymousClient.
func ClientFrom(c *gin.Context) string {
	if client := c.GetString(ContextClientKey); client != "" {
		return client
	}
	return AnonymousClient
}

func knownKey(keys [][]byte, key []byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, key)
	}
	return found == 1
}

// clientID identifies a key in logs and limiter buckets without exposing it.
func clientID(apiKey string) string {
	if len(apiKey) <= 8 {
		return "key:" + apiKey[:len(apiKey)/2]
	}
	return "key:" + apiKey[:8]
}
