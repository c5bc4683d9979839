package handlers

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/zatekoja/vacationrentals/internal/domain/providers"
)

// RateLimiter allows limit requests per window for each key. With a shared
// counter every API instance draws from one fixed window per key; without one
// each process keeps a token bucket per key that refills over the window.
type RateLimiter struct {
	counter providers.RateCounter
	local   *localLimiters
	prefix  string
	limit   int
	window  time.Duration
	trusted []netip.Prefix
}

// NewRateLimiter creates a limiter. counter may be nil. Forwarding headers are
// honoured only when the direct peer falls inside one of trustedProxies.
func NewRateLimiter(counter providers.RateCounter, prefix string, limit int, window time.Duration, trustedProxies []netip.Prefix) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		local:   newLocalLimiters(limit, window),
		prefix:  prefix,
		limit:   limit,
		window:  window,
		trusted: trustedProxies,
	}
}

// Allow counts one request for key and reports whether it fits, with the time
// to wait when it does not.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l == nil || l.limit <= 0 {
		return true, 0
	}
	key = l.prefix + key
	if l.counter == nil {
		return l.local.allow(key, time.Now())
	}

	count, ttl, err := l.counter.IncrWindow(ctx, key, l.window)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Shared rate counter unavailable; using local limiter")
		return l.local.allow(key, time.Now())
	}
	if count > int64(l.limit) {
		if ttl <= 0 {
			ttl = l.window
		}
		return false, ttl
	}
	return true, 0
}

// ClientIP returns the address used to key anonymous callers
func (l *RateLimiter) ClientIP(r *http.Request) string {
	var trusted []netip.Prefix
	if l != nil {
		trusted = l.trusted
	}
	return clientIP(r, trusted)
}

type keyLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// localLimiters keeps one token bucket per key. A bucket idle for a whole
// window is full again, so it is dropped on the next sweep.
type localLimiters struct {
	mu        sync.Mutex
	limiters  map[string]*keyLimiter
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

func newLocalLimiters(limit int, window time.Duration) *localLimiters {
	l := &localLimiters{
		limiters: make(map[string]*keyLimiter),
		burst:    limit,
		idle:     window,
	}
	if limit > 0 && window > 0 {
		l.every = rate.Every(window / time.Duration(limit))
	}
	return l
}

func (l *localLimiters) allow(key string, now time.Time) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastAccess = now

	if entry.limiter.AllowN(now, 1) {
		return true, 0
	}
	reservation := entry.limiter.ReserveN(now, 1)
	wait := reservation.DelayFrom(now)
	reservation.CancelAt(now)
	return false, wait
}

func (l *localLimiters) sweep(now time.Time) {
	cutoff := now.Add(-l.idle)
	for key, entry := range l.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

func (l *localLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// clientIP returns the direct peer address unless that peer is a trusted
// proxy, in which case X-Forwarded-For is walked from the right and the first
// hop outside the trusted set wins.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		peer = host
	}
	if !isTrusted(peer, trusted) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !isTrusted(hop, trusted) {
			return hop
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return peer
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
