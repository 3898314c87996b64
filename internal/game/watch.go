package game

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls config files and reports the ones that appeared,
// disappeared or changed since the previous scan.
type FileWatcher struct {
	paths    []string
	interval time.Duration
	onChange func(path string)
	seen     map[string]time.Time // zero time: file absent
}

// NewFileWatcher creates a watcher for given paths and interval.
func NewFileWatcher(paths []string, interval time.Duration, onChange func(string)) *FileWatcher {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &FileWatcher{
		paths:    paths,
		interval: interval,
		onChange: onChange,
		seen:     make(map[string]time.Time),
	}
}

// Run primes the mtime cache and polls until ctx is done.
func (w *FileWatcher) Run(ctx context.Context) error {
	w.scan(true)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.scan(false)
		}
	}
}

// scan compares mtimes with the previous pass; prime only records them.
func (w *FileWatcher) scan(prime bool) {
	for _, p := range w.paths {
		var mt time.Time
		if fi, err := os.Stat(p); err == nil {
			mt = fi.ModTime()
		}
		last, ok := w.seen[p]
		w.seen[p] = mt
		if prime || !ok || mt.Equal(last) {
			continue
		}
		if w.onChange != nil {
			w.onChange(p)
		}
	}
}
