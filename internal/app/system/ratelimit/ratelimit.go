// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/stajyerlog/internal/app/system/normalize"
	"golang.org/x/time/rate"
)

// entry holds a token bucket and the last time its key was seen.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per key. Each bucket holds limit tokens
// and refills at limit per duration. A janitor drops keys idle for longer
// than two durations. It is safe for concurrent use.
type Limiter struct {
	mu       sync.Mutex
	entries  map[string]*entry
	every    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter allowing limit requests per duration for each key
// and starts its cleanup loop.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		every:   rate.Limit(float64(limit) / duration.Seconds()),
		burst:   limit,
		idle:    duration * 2,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.cleanupLoop(l.idle)
	return l
}

// Close stops the cleanup loop. It is safe to call more than once.
func (l *Limiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) getOrCreate(key string, now time.Time) *rate.Limiter {
	if e, ok := l.entries[key]; ok {
		e.lastSeen = now
		return e.limiter
	}
	lim := rate.NewLimiter(l.every, l.burst)
	l.entries[key] = &entry{limiter: lim, lastSeen: now}
	return lim
}

// Allow takes one token for key. Returns false when the bucket is empty.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	return l.getOrCreate(key, now).AllowN(now, 1)
}

// Remaining returns how many whole tokens key has left.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return l.burst
	}
	n := int(e.limiter.TokensAt(l.now()))
	if n < 0 {
		return 0
	}
	return n
}

// Reset forgets key, so its next request starts with a full bucket.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

// sweep removes keys idle for longer than l.idle. A bucket idle that long
// is full again, so dropping it changes nothing.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}

// ClientIP returns the host part of r.RemoteAddr. The router runs chi's
// RealIP first, which already rewrites RemoteAddr from trusted proxy
// headers, so forwarding headers are not read again here.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP stores a bare address without a port.
		return r.RemoteAddr
	}
	return ip
}

// Messages shown when a login attempt is refused.
const (
	MsgTooManyFromIP      = "Çok fazla giriş denemesi. Lütfen biraz bekleyip tekrar deneyin."
	MsgTooManyForAccount  = "Bu hesap için çok fazla giriş denemesi. Lütfen birkaç dakika bekleyin."
	defaultEmailWindowMul = 5
)

// LoginLimiter limits login attempts per client IP and per email.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter allows bursts of ipLimit attempts from one IP, refilled
// over window, and half as many (at least 1) per email refilled over five
// windows.
func NewLoginLimiter(ipLimit int, window time.Duration) *LoginLimiter {
	if ipLimit < 1 {
		ipLimit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	emailLimit := ipLimit / 2
	if emailLimit < 1 {
		emailLimit = 1
	}
	return &LoginLimiter{
		ipLimiter:    New(ipLimit, window),
		emailLimiter: New(emailLimit, window*defaultEmailWindowMul),
	}
}

// Check verifies if a login attempt should be allowed.
// Returns (allowed, reason) where reason is the message to show.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, MsgTooManyFromIP
	}
	if key := normalize.Email(email); key != "" {
		if !ll.emailLimiter.Allow(key) {
			return false, MsgTooManyForAccount
		}
	}
	return true, ""
}

// ResetEmail clears the per-email limit after a successful login.
func (ll *LoginLimiter) ResetEmail(email string) {
	if key := normalize.Email(email); key != "" {
		ll.emailLimiter.Reset(key)
	}
}

// Close stops both cleanup loops.
func (ll *LoginLimiter) Close() {
	ll.ipLimiter.Close()
	ll.emailLimiter.Close()
}
