package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"zen-backend/internal/models"
)

// Decision is the outcome of a single limiter check.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Duration // until the oldest counted request leaves the window
}

// Limiter counts requests per key over a sliding window. Every checked
// request is counted, including the rejected ones.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// SlidingWindow is the in-process Limiter. It keeps at most limit
// timestamps per key.
type SlidingWindow struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	limit  int
	window time.Duration
	now    func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	sw := &SlidingWindow{
		hits:   make(map[string][]time.Time),
		limit:  limit,
		window: window,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	// Cleanup goroutine
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for {
			select {
			case <-sw.stop:
				return
			case <-ticker.C:
				sw.sweep()
			}
		}
	}()

	return sw
}

// Stop ends the cleanup goroutine.
func (sw *SlidingWindow) Stop() {
	sw.stopOnce.Do(func() { close(sw.stop) })
}

func (sw *SlidingWindow) Allow(_ context.Context, key string) (Decision, error) {
	now := sw.now()
	cutoff := now.Add(-sw.window)

	sw.mu.Lock()
	defer sw.mu.Unlock()

	hits := prune(sw.hits[key], cutoff)
	allowed := len(hits) < sw.limit
	if !allowed && len(hits) > 0 {
		hits = hits[1:]
	}
	hits = append(hits, now)
	sw.hits[key] = hits

	remaining := 0
	if allowed {
		remaining = sw.limit - len(hits)
	}
	return Decision{
		Allowed:   allowed,
		Limit:     sw.limit,
		Remaining: remaining,
		Reset:     hits[0].Add(sw.window).Sub(now),
	}, nil
}

func (sw *SlidingWindow) sweep() {
	cutoff := sw.now().Add(-sw.window)
	sw.mu.Lock()
	defer sw.mu.Unlock()
	for key, hits := range sw.hits {
		if hits = prune(hits, cutoff); len(hits) == 0 {
			delete(sw.hits, key)
		} else {
			sw.hits[key] = hits
		}
	}
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// RateLimiter rejects clients that exceed the limiter's budget with a 429.
type RateLimiter struct {
	limiter Limiter
	message string
	logger  *zap.Logger
}

func NewRateLimiter(limiter Limiter, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		limiter: limiter,
		message: fmt.Sprintf("Muitas tentativas. Tente novamente em %d minutos.", int(window.Minutes())),
		logger:  logger,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)

		d, err := rl.limiter.Allow(r.Context(), ip)
		if err != nil {
			// A broken limiter store must not take the API down.
			rl.logger.Warn("rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		resetSeconds := int(d.Reset.Round(time.Second) / time.Second)
		w.Header().Set("RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		w.Header().Set("RateLimit-Reset", strconv.Itoa(resetSeconds))

		if !d.Allowed {
			rl.logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", strconv.Itoa(resetSeconds))
			writeError(w, models.CodeRateLimitExceeded, rl.message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Admit checks key against the budget for traffic that does not pass
// through Middleware, such as frames on an open websocket. Like Middleware
// it fails open. When key is over budget it returns the rejection copy.
func (rl *RateLimiter) Admit(ctx context.Context, key string) (bool, string) {
	d, err := rl.limiter.Allow(ctx, key)
	if err != nil {
		rl.logger.Warn("rate limiter unavailable", zap.String("ip", key), zap.Error(err))
		return true, ""
	}
	if !d.Allowed {
		rl.logger.Warn("rate limit exceeded", zap.String("ip", key), zap.String("path", "websocket"))
		return false, rl.message
	}
	return true, ""
}

// ClientIP returns the caller address without its port. It expects
// chi's RealIP to have run first when the server sits behind a proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
