package security

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrRateLimited is returned by Allow when a window is full.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitConfig holds outgoing message limits. Zero fields take the
// Bot API flood limits: 20 messages per chat per minute, 30 per second
// overall.
type RateLimitConfig struct {
	PerChatPerMin int `yaml:"per_chat_per_min"`
	GlobalPerSec  int `yaml:"global_per_sec"`
}

// window counts events inside a trailing span of time.
type window struct {
	span time.Duration
	max  int
	hits []time.Time // oldest first
}

func (w *window) trim(now time.Time) {
	cutoff := now.Add(-w.span)
	keep := slices.IndexFunc(w.hits, func(t time.Time) bool { return !t.Before(cutoff) })
	if keep < 0 {
		w.hits = w.hits[:0]
		return
	}
	w.hits = w.hits[keep:]
}

func (w *window) full() bool { return len(w.hits) >= w.max }

// RateLimiter enforces a sliding window per key plus one shared window
// across all keys. Keys are usually chat ids, or "auth:<host>" for the
// gateway login limiter.
type RateLimiter struct {
	config RateLimitConfig
	now    func() time.Time

	mu     sync.Mutex
	shared window
	keys   map[string]*window
}

// NewRateLimiter returns a limiter for cfg, filling zero fields with
// defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.PerChatPerMin <= 0 {
		cfg.PerChatPerMin = 20
	}
	if cfg.GlobalPerSec <= 0 {
		cfg.GlobalPerSec = 30
	}
	return &RateLimiter{
		config: cfg,
		now:    time.Now,
		shared: window{span: time.Second, max: cfg.GlobalPerSec},
		keys:   make(map[string]*window),
	}
}

// Allow records one event for key when both its own window and the shared
// window have room. A denied call records nothing.
func (rl *RateLimiter) Allow(key string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w := rl.keys[key]
	if w == nil {
		w = &window{span: time.Minute, max: rl.config.PerChatPerMin}
		rl.keys[key] = w
	}
	w.trim(now)
	rl.shared.trim(now)

	if w.full() || rl.shared.full() {
		return ErrRateLimited
	}
	w.hits = append(w.hits, now)
	rl.shared.hits = append(rl.shared.hits, now)
	return nil
}

// Prune forgets keys whose window has emptied. Run periodically by
// the limiter_prune cron jobs.
func (rl *RateLimiter) Prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.keys {
		if w.trim(now); len(w.hits) == 0 {
			delete(rl.keys, key)
		}
	}
}

// Len reports how many keys are tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.keys)
}
