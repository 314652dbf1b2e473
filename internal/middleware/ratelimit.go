package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/botbase/internal/pkg/errcode"
	"github.com/xxxsen/botbase/internal/pkg/response"
)

type rateBucket struct {
	start time.Time
	count int
}

type rateLimiter struct {
	mu            sync.Mutex
	window        time.Duration
	limit         int
	buckets       map[string]*rateBucket
	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// RateLimit allows at most limit requests per window for each
// client key (ip + account + route).
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	limiter := &rateLimiter{
		window:        window,
		limit:         limit,
		buckets:       make(map[string]*rateBucket),
		sweepInterval: window,
		now:           time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 || l.limit <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	uid := "0"
	if v, ok := c.Get(ContextAccountIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			uid = id
		}
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	key := strings.Join([]string{ip, uid, path}, "|")

	now := l.now()
	l.mu.Lock()
	if now.Sub(l.lastSweep) >= l.sweepInterval {
		l.cleanupExpiredLocked(now)
	}
	bucket, exists := l.buckets[key]
	if !exists || now.Sub(bucket.start) >= l.window {
		bucket = &rateBucket{start: now}
		l.buckets[key] = bucket
	}
	bucket.count++
	blocked := bucket.count > l.limit
	l.mu.Unlock()

	if blocked {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("account_id", uid),
			zap.String("path", path),
		)
		response.Error(c, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
		c.Abort()
		return
	}
	c.Next()
}

func (l *rateLimiter) cleanupExpiredLocked(now time.Time) {
	for key, bucket := range l.buckets {
		if now.Sub(bucket.start) >= l.window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
