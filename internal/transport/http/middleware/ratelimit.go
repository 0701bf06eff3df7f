package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-IP token-bucket rate limiter with automatic stale-entry cleanup.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipLimiter
	r        rate.Limit
	burst    int
	interval time.Duration
	idle     time.Duration
	hops     int
}

// NewRateLimiter allows max requests per window for each client IP. The
// bucket starts full and refills evenly across the window. Cleanup stops when
// ctx is done.
//
// trustedHops is the number of reverse proxies in front of the service that
// append to X-Forwarded-For. With 0 the forwarding headers are ignored and the
// connection's address is the client.
func NewRateLimiter(ctx context.Context, window time.Duration, max, trustedHops int) *RateLimiter {
	if max < 1 {
		max = 1
	}
	interval := window / time.Duration(max)
	rl := &RateLimiter{
		limiters: make(map[string]*ipLimiter),
		r:        rate.Every(interval),
		burst:    max,
		interval: interval,
		idle:     window,
		hops:     trustedHops,
	}
	go rl.cleanup(ctx)
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if v, ok := rl.limiters[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.limiters[ip] = &ipLimiter{limiter: l, lastSeen: time.Now()}
	return l
}

// cleanup drops limiters idle for longer than a full window; by then their
// bucket has refilled anyway.
func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.limiters {
			if time.Since(v.lastSeen) > rl.idle {
				delete(rl.limiters, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Limit is the middleware handler that enforces the rate limit per client IP.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.get(clientIP(r, rl.hops)).Allow() {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(rl.interval.Seconds()))))
			writeJSONError(w, http.StatusTooManyRequests, "Too many requests from this IP, please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the address to rate limit. X-Forwarded-For is only read
// when trustedHops proxies sit in front: the entry trustedHops from the right
// was appended by the outermost trusted proxy, and everything left of it is
// client supplied. X-Real-Ip is used only behind a proxy that sends no
// X-Forwarded-For.
func clientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			if len(hops) >= trustedHops {
				if ip := strings.TrimSpace(hops[len(hops)-trustedHops]); ip != "" {
					return ip
				}
			}
		} else if xr := strings.TrimSpace(r.Header.Get("X-Real-Ip")); xr != "" {
			return xr
		}
	}
	return remoteHost(r)
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
