package middleware

import (
	"net/http"
	"sync"
	"time"

	"distripos/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ipEntry tracks requests per IP within a sliding window.
type ipEntry struct {
	count     int
	windowEnd time.Time
}

// RateLimiter caps requests per IP per window. In-memory: enough for a
// single-instance deployment; entries are pruned lazily on access.
func RateLimiter(maxRequests int, window time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	entries := make(map[string]*ipEntry)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		mu.Lock()
		e, ok := entries[ip]
		if !ok || now.After(e.windowEnd) {
			e = &ipEntry{windowEnd: now.Add(window)}
			entries[ip] = e
		}
		e.count++
		over := e.count > maxRequests
		mu.Unlock()

		if over {
			log.Warn().Str("ip", ip).Msg("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Demasiadas solicitudes, intente más tarde"))
			return
		}
		c.Next()
	}
}
