package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client IP. This is the only state
// shared across requests in the whole service.
type clientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	message string
	clients map[string]*clientBucket
	swept   time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const (
	bucketIdleTTL = time.Hour
	sweepEvery    = 10 * time.Minute
)

func newClientLimiter(limit rate.Limit, burst int, message string) *clientLimiter {
	return &clientLimiter{
		limit:   limit,
		burst:   burst,
		message: message,
		clients: make(map[string]*clientBucket),
		swept:   time.Now(),
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.swept) > sweepEvery {
		for key, bucket := range l.clients {
			if now.Sub(bucket.lastSeen) > bucketIdleTTL {
				delete(l.clients, key)
			}
		}
		l.swept = now
	}

	bucket, ok := l.clients[client]
	if !ok {
		bucket = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = bucket
	}
	bucket.lastSeen = now
	return bucket.limiter.Allow()
}

func (l *clientLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   l.message,
			})
			return
		}
		c.Next()
	}
}
