package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter is a fixed-window counter per key. It exists mostly to keep
// abusive clients from burning the external directory quota, so the
// windows are coarse and the bookkeeping cheap.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]*window
	limit  int
	every  time.Duration
}

type window struct {
	n       int
	resetAt time.Time
}

func NewLimiter(limit int, every time.Duration) *Limiter {
	l := &Limiter{
		counts: make(map[string]*window),
		limit:  limit,
		every:  every,
	}
	go l.sweep()
	return l
}

// Allow reports whether key has budget left in the current window, and
// how long until the window resets when it does not.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	w := l.counts[key]
	if w == nil || now.After(w.resetAt) {
		l.counts[key] = &window{n: 1, resetAt: now.Add(l.every)}
		return true, 0
	}
	if w.n >= l.limit {
		return false, time.Until(w.resetAt)
	}
	w.n++
	return true, 0
}

func (l *Limiter) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for k, w := range l.counts {
			if now.After(w.resetAt) {
				delete(l.counts, k)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimitByIP throttles every caller by client address.
func RateLimitByIP(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retry := l.Allow(c.ClientIP())
		if !ok {
			reject(c, retry)
			return
		}
		c.Next()
	}
}

// RateLimitByGroup throttles per group, for routes that fan out to the
// restaurant directory. One group hammering search should not starve
// every other group's quota.
func RateLimitByGroup(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("group_id")
		if key == "" {
			key = c.ClientIP()
		}
		ok, retry := l.Allow(key)
		if !ok {
			slog.Warn("search rate limit hit", "group_id", key)
			reject(c, retry)
			return
		}
		c.Next()
	}
}

func reject(c *gin.Context, retry time.Duration) {
	secs := int(retry/time.Second) + 1
	c.Header("Retry-After", strconv.Itoa(secs))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}
