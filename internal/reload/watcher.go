// Package reload re-reads the configuration file while the bot runs and
// applies the settings that can change without a restart.
package reload

import (
	"context"
	"os"
	"time"
)

const defaultPollInterval = 5 * time.Second

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Path is the file to watch.
	Path string

	// Interval is how often the file is checked. Defaults to 5 seconds.
	Interval time.Duration
}

func (c WatcherConfig) intervalOrDefault() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return defaultPollInterval
}

// stamp identifies one version of the file.
type stamp struct {
	modTime time.Time
	size    int64
}

// Watcher polls a file and signals when its modification time or size
// changes and then holds for one more poll.
type Watcher struct {
	cfg     WatcherConfig
	changes chan struct{}
}

// NewWatcher creates a file watcher. Nothing happens until Run.
func NewWatcher(cfg WatcherConfig) *Watcher {
	return &Watcher{
		cfg:     cfg,
		changes: make(chan struct{}, 1),
	}
}

// Changes delivers one value per detected change. Changes that arrive
// while a previous one is still unread are coalesced.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run polls until ctx is cancelled. A missing file is not a change; the
// file reappearing is.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.intervalOrDefault())
	defer ticker.Stop()

	var s settle
	s.last, _ = w.stat()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.observe(w.stat()) {
				continue
			}
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

// settle accepts a new stamp only after two consecutive polls agree on it,
// so a file that is still being written is not reported half done.
type settle struct {
	last    stamp
	pending stamp
	waiting bool
}

// observe records one poll and reports whether a settled change happened.
func (s *settle) observe(cur stamp, ok bool) bool {
	if !ok || cur == s.last {
		s.waiting = false
		return false
	}
	if !s.waiting || cur != s.pending {
		s.pending, s.waiting = cur, true
		return false
	}
	s.last, s.waiting = cur, false
	return true
}

func (w *Watcher) stat() (stamp, bool) {
	info, err := os.Stat(w.cfg.Path)
	if err != nil {
		return stamp{}, false
	}
	return stamp{modTime: info.ModTime(), size: info.Size()}, true
}
