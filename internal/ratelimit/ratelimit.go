// Package ratelimit counts attempts per key inside a fixed window and locks
// a key out once it reaches the limit. Login failures and public RSVP
// submissions are both throttled this way.
package ratelimit

import (
	"strings"
	"sync"
	"time"
)

type Config struct {
	MaxAttempts     int           // Attempts allowed per window (default: 5)
	Window          time.Duration // Counting window (default: 15m)
	Lockout         time.Duration // Lockout once the limit is hit (default: 30m)
	CleanupInterval time.Duration // Sweep interval for stale keys (default: 5m)
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.Window <= 0 {
		c.Window = 15 * time.Minute
	}
	if c.Lockout <= 0 {
		c.Lockout = 30 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = 5 * time.Minute
	}
	return c
}

type entry struct {
	count       int
	windowStart time.Time
	lockedUntil time.Time
}

// Limiter is safe for concurrent use. It owns a sweeper goroutine that
// Stop releases.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func New(cfg Config) *Limiter {
	l := &Limiter{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Key joins parts into a case-insensitive limiter key.
func Key(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// Allow reports whether key may make another attempt. When it may not,
// retryAfter is how long the caller should wait.
func (l *Limiter) Allow(key string) (ok bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	switch {
	case e == nil:
		return true, 0
	case now.Before(e.lockedUntil):
		return false, e.lockedUntil.Sub(now)
	case now.Sub(e.windowStart) > l.cfg.Window:
		return true, 0
	case e.count >= l.cfg.MaxAttempts:
		return false, l.cfg.Lockout
	}
	return true, 0
}

// Hit counts an attempt for key and reports whether it triggered a lockout.
func (l *Limiter) Hit(key string) (locked bool, retryAfter time.Duration) {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e := l.entries[key]
	if e == nil || now.Sub(e.windowStart) > l.cfg.Window {
		e = &entry{windowStart: now}
		l.entries[key] = e
	}
	e.count++
	if e.count < l.cfg.MaxAttempts {
		return false, 0
	}
	e.lockedUntil = now.Add(l.cfg.Lockout)
	return true, l.cfg.Lockout
}

// Reset forgets key, typically after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.entries, key)
	l.mu.Unlock()
}

// Stop ends the sweeper and waits for it. Calling it twice is fine.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}

func (l *Limiter) sweepLoop() {
	defer close(l.done)

	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops keys whose window and lockout are both over.
func (l *Limiter) sweep() {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if now.Sub(e.windowStart) > l.cfg.Window && !now.Before(e.lockedUntil) {
			delete(l.entries, key)
		}
	}
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
