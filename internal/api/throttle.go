package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nekogravitycat/court-reservation/internal/pkg/response"
)

// Login attempts per client IP: a burst of loginBurst, then one every
// loginInterval.
const (
	loginBurst    = 5
	loginInterval = 12 * time.Second
)

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipThrottle holds one token bucket per client IP.
type ipThrottle struct {
	every time.Duration
	burst int
	now   func() time.Time

	mu        sync.Mutex
	limiters  map[string]*throttleEntry
	lastSweep time.Time
}

func newIPThrottle(every time.Duration, burst int, now func() time.Time) *ipThrottle {
	return &ipThrottle{
		every:     every,
		burst:     burst,
		now:       now,
		limiters:  make(map[string]*throttleEntry),
		lastSweep: now(),
	}
}

// reserve reports how long ip has to wait for its next attempt; zero means
// it may go ahead now.
func (t *ipThrottle) reserve(ip string) time.Duration {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	// A bucket idle this long is full again and can be forgotten.
	idle := t.every * time.Duration(t.burst)
	if now.Sub(t.lastSweep) >= idle {
		for k, e := range t.limiters {
			if now.Sub(e.lastSeen) >= idle {
				delete(t.limiters, k)
			}
		}
		t.lastSweep = now
	}

	e, ok := t.limiters[ip]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(rate.Every(t.every), t.burst)}
		t.limiters[ip] = e
	}
	e.lastSeen = now

	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return delay
	}
	return 0
}

// Throttle limits each client IP to a burst of requests refilled at one
// per every.
func Throttle(every time.Duration, burst int) gin.HandlerFunc {
	return throttle(newIPThrottle(every, burst, time.Now))
}

func throttle(t *ipThrottle) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if wait := t.reserve(ip); wait > 0 {
			zap.L().Warn("request throttled", zap.String("ip", ip), zap.String("path", c.FullPath()))
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.ErrorResponse{Error: "Too many requests. Please try again later."})
			return
		}
		c.Next()
	}
}
