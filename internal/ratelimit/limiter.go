// Package ratelimit implements the in-memory sliding window limiter that guards
// the AI-backed endpoints.
//
// State is process local. Running several replicas multiplies the effective quota.
package ratelimit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UnknownClient keys requests that carry no forwarded address header.
const UnknownClient = "unknown"

const defaultSweepInterval = 5 * time.Minute

// Policy admits at most Max requests per key within any trailing Window.
type Policy struct {
	Window time.Duration
	Max    int
}

func (p Policy) valid() bool {
	return p.Window > 0 && p.Max > 0
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed bool
	Key     string
	// Count is the number of admitted requests in the window, including this one when Allowed.
	Count int
	Limit int
	// RetryAfter is zero when Allowed; otherwise the time until the oldest request leaves the window.
	RetryAfter time.Duration
}

type entry struct {
	timestamps []time.Time
	window     time.Duration
}

// prune drops timestamps at least window old. Timestamps are appended in order,
// so the survivors are a suffix.
func (e *entry) prune(now time.Time, window time.Duration) {
	i := 0
	for i < len(e.timestamps) && now.Sub(e.timestamps[i]) >= window {
		i++
	}
	if i > 0 {
		e.timestamps = append(e.timestamps[:0], e.timestamps[i:]...)
	}
}

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// SweepInterval defaults to five minutes.
	SweepInterval time.Duration
	Logger        *zap.Logger
	// OnSweep, when set, receives the number of keys left after each sweep.
	OnSweep func(remaining int)
}

// Limiter is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry

	now           func() time.Time
	sweepInterval time.Duration
	log           *zap.Logger
	onSweep       func(int)

	stop chan struct{}
	done chan struct{}
}

func New(opts Options) *Limiter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Limiter{
		entries:       make(map[string]*entry),
		now:           opts.Now,
		sweepInterval: opts.SweepInterval,
		log:           opts.Logger,
		onSweep:       opts.OnSweep,
	}
}

// Check derives the key for r and applies p to it.
func (l *Limiter) Check(r *http.Request, p Policy) Decision {
	return l.Allow(Key(r), p)
}

// Allow records a request for key if the policy still has room.
// A rejected request is not recorded.
func (l *Limiter) Allow(key string, p Policy) Decision {
	if !p.valid() {
		l.log.Warn("rate limit policy is not positive, admitting request",
			zap.String("key", key),
			zap.Duration("window", p.Window),
			zap.Int("max", p.Max))
		return Decision{Allowed: true, Key: key, Limit: p.Max}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{}
		l.entries[key] = e
	}
	e.window = p.Window
	e.prune(now, p.Window)

	if len(e.timestamps) >= p.Max {
		retryAfter := e.timestamps[0].Add(p.Window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return Decision{
			Allowed:    false,
			Key:        key,
			Count:      len(e.timestamps),
			Limit:      p.Max,
			RetryAfter: retryAfter,
		}
	}

	e.timestamps = append(e.timestamps, now)
	return Decision{Allowed: true, Key: key, Count: len(e.timestamps), Limit: p.Max}
}

// Sweep prunes every entry by the window it was last checked with and drops
// the ones left empty. It returns the number of keys remaining.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, e := range l.entries {
		e.prune(now, e.window)
		if len(e.timestamps) == 0 {
			delete(l.entries, key)
		}
	}
	return len(l.entries)
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Start runs Sweep every SweepInterval until ctx is done or Stop is called.
// Calling Start twice is a no-op.
func (l *Limiter) Start(ctx context.Context) {
	l.mu.Lock()
	if l.stop != nil {
		l.mu.Unlock()
		return
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	stop, done := l.stop, l.done
	l.mu.Unlock()

	ticker := time.NewTicker(l.sweepInterval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case <-ticker.C:
				l.safeSweep()
			}
		}
	}()
}

// Stop ends the sweep goroutine started by Start and waits for it to exit.
func (l *Limiter) Stop() {
	l.mu.Lock()
	stop, done := l.stop, l.done
	l.stop, l.done = nil, nil
	l.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// safeSweep keeps a failing sweep from taking the process down with it.
func (l *Limiter) safeSweep() {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("rate limit sweep panicked", zap.Any("panic", r))
		}
	}()

	remaining := l.Sweep()
	l.log.Debug("rate limit sweep finished", zap.Int("keys", remaining))
	if l.onSweep != nil {
		l.onSweep(remaining)
	}
}

// ClientID resolves the caller identity from proxy headers: the first hop of
// X-Forwarded-For, then X-Real-IP, then UnknownClient.
func ClientID(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClient
}

// Key is ClientID(r) + ":" + path.
func Key(r *http.Request) string {
	return ClientID(r) + ":" + r.URL.Path
}
