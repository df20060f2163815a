package server

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	limiterSweep = 3 * time.Minute
	limiterIdle  = 5 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles a route per client IP
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	rate     rate.Limit
	burst    int
	trusted  []netip.Prefix
}

// NewRateLimiter creates a per-IP limiter. Idle entries are swept until ctx is done.
// Forwarding headers are only believed when the direct peer is in trusted.
func NewRateLimiter(ctx context.Context, r rate.Limit, burst int, trusted []netip.Prefix) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     r,
		burst:    max(burst, 1),
		trusted:  trusted,
	}
	go rl.cleanupLoop(ctx)
	return rl
}

// Allow reports whether the client may proceed now
func (rl *RateLimiter) Allow(client string) bool {
	if rl.rate == rate.Inf || rl.rate <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.limiters[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[client] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter.Allow()
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(limiterSweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			for client, cl := range rl.limiters {
				if time.Since(cl.lastSeen) > limiterIdle {
					delete(rl.limiters, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Middleware rejects over-limit requests with reject after calling onLimited
func (rl *RateLimiter) Middleware(onLimited func(), reject http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(rl.clientIP(r)) {
				if onLimited != nil {
					onLimited()
				}
				retryAfter := 1
				if rl.rate > 0 {
					retryAfter = max(int(1.0/float64(rl.rate)), 1)
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				reject(w, r)
				return
			}
			next(w, r)
		}
	}
}

// clientIP is the peer address, or the client named by a trusted proxy. The
// X-Forwarded-For chain is walked from the right and the first hop that is not a
// trusted proxy wins.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !rl.isTrusted(peer) {
		return host
	}

	if fwd := r.Header.Values("X-Forwarded-For"); len(fwd) > 0 {
		hops := strings.Split(strings.Join(fwd, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if !rl.isTrusted(hop) {
				return hop.Unmap().String()
			}
		}
	}
	if realIP, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return realIP.Unmap().String()
	}
	return host
}

func (rl *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range rl.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
