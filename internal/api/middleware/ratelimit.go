package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"gulmohar/billing/internal/config"
	"gulmohar/billing/internal/logger"
)

const (
	limiterCleanupInterval = 10 * time.Minute
	limiterIdleTimeout     = 30 * time.Minute
)

// clientLimiter stores the rate limiter for a specific client.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterMiddleware keeps one token bucket per client IP.
type RateLimiterMiddleware struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	log     *logger.Logger
	stop    chan struct{}
}

// NewRateLimiterMiddleware creates a new RateLimiterMiddleware and starts the
// background sweep of idle clients. Call Stop to end it.
func NewRateLimiterMiddleware(cfg *config.Config, log *logger.Logger) *RateLimiterMiddleware {
	rm := &RateLimiterMiddleware{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(cfg.RateLimitRefillRate),
		burst:   cfg.RateLimitBucketSize,
		log:     log.Named("ratelimit"),
		stop:    make(chan struct{}),
	}
	go rm.cleanupClients()
	return rm
}

func (rm *RateLimiterMiddleware) getClientLimiter(identifier string, now time.Time) *rate.Limiter {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	cl, exists := rm.clients[identifier]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(rm.rate, rm.burst)}
		rm.clients[identifier] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

// sweep removes clients not seen since cutoff and returns how many went.
func (rm *RateLimiterMiddleware) sweep(cutoff time.Time) int {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	count := 0
	for id, client := range rm.clients {
		if client.lastSeen.Before(cutoff) {
			delete(rm.clients, id)
			count++
		}
	}
	return count
}

func (rm *RateLimiterMiddleware) cleanupClients() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rm.stop:
			return
		case now := <-ticker.C:
			if n := rm.sweep(now.Add(-limiterIdleTimeout)); n > 0 {
				rm.log.Debugw("rate limiter cleanup", "removed", n)
			}
		}
	}
}

// Stop ends the cleanup goroutine.
func (rm *RateLimiterMiddleware) Stop() {
	close(rm.stop)
}

// Limit creates the Gin middleware handler.
func (rm *RateLimiterMiddleware) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := c.ClientIP()
		if !rm.getClientLimiter(clientKey, time.Now()).Allow() {
			rm.log.Warnw("rate limit exceeded", "client", clientKey, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
