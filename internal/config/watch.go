package config

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer coalesces rapid events into a single callback invocation.
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	seq      uint64
}

// NewDebouncer creates a Debouncer. A zero duration uses DefaultDebounce.
func NewDebouncer(duration time.Duration) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounce
	}
	return &Debouncer{duration: duration}
}

// Trigger schedules callback after the debounce window, replacing any
// callback still pending.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		shouldRun := func() bool {
			d.mu.Lock()
			defer d.mu.Unlock()
			// A timer that fired while being replaced must not run.
			if seq != d.seq {
				return false
			}
			d.timer = nil
			return true
		}()
		if shouldRun {
			callback()
		}
	})
}

// Cancel drops any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Watch reloads the config at path whenever it or one of its includes
// changes, and passes each result to fn. It blocks until ctx is done.
//
// Directories are watched rather than files so that editors which replace
// the file on save keep being observed.
func Watch(ctx context.Context, path string, logger *log.Logger, fn func(*LoadResult, error)) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	canon, err := canonicalPath(path)
	if err != nil {
		return err
	}
	watched := map[string]struct{}{}
	addDir := func(file string) {
		dir := filepath.Dir(file)
		if _, ok := watched[dir]; ok {
			return
		}
		if err := watcher.Add(dir); err != nil {
			logger.Debug("failed to watch config directory", "dir", dir, "err", err)
			return
		}
		watched[dir] = struct{}{}
	}

	files := map[string]struct{}{canon: {}}
	track := func(res *LoadResult) {
		if res == nil {
			return
		}
		for _, f := range res.Files {
			files[f] = struct{}{}
			addDir(f)
		}
	}
	addDir(canon)
	if res, err := LoadFromPath(path); err == nil {
		track(res)
	}

	debounce := NewDebouncer(0)
	defer debounce.Cancel()
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, _ := canonicalPath(event.Name)
			if _, ok := files[name]; !ok {
				if _, ok := files[event.Name]; !ok {
					continue
				}
			}
			debounce.Trigger(func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case <-reloads:
			res, err := LoadFromPath(path)
			if err != nil {
				logger.Warn("config reload failed", "path", path, "err", err)
			} else {
				logger.Info("config reloaded", "path", path)
				track(res)
			}
			fn(res, err)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "err", err)
		}
	}
}
