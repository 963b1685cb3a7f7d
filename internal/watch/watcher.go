// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when files below a directory change.
//
// Events are filtered with doublestar globs and coalesced over a debounce window, so a burst
// of writes (an editor saving through a temp file, a checkout touching many files) produces a
// single callback with every changed path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// defaultIgnores are never reported: VCS metadata, editor swap files, and the lock and temp
// files left by document writes.
var defaultIgnores = []string{
	"**/.git/**",
	"**/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
	"**/*.lock",
	"**/.tmp-*",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watcher is already running")

// Config holds the parameters for a Watcher.
type Config struct {
	BaseDir  string        // Directory to watch, the working directory when empty
	Patterns []string      // Globs of the files that trigger callbacks, all files when empty
	Ignore   []string      // Globs of paths that never trigger callbacks
	Debounce time.Duration // Quiet period before the callback fires

	// OnChange receives the sorted, root-relative paths changed within one debounce window.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors a directory tree and fires a debounced callback when matching files change.
type Watcher struct {
	cfg      Config
	fsw      *fsnotify.Watcher
	ignores  []string
	debounce time.Duration
	baseDir  string
	started  atomic.Bool
}

// New creates a Watcher and registers every non-ignored directory below BaseDir.
func New(cfg Config) (*Watcher, error) {
	baseDir := cfg.BaseDir
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		baseDir = wd
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch directory: %w", err)
	}

	for _, pat := range append(slices.Clone(cfg.Patterns), cfg.Ignore...) {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid watch pattern %q", pat)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w := &Watcher{
		cfg:      cfg,
		fsw:      fsw,
		ignores:  append(slices.Clone(defaultIgnores), cfg.Ignore...),
		debounce: debounce,
		baseDir:  absBase,
	}

	if err := w.addDirectories(); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run processes events until ctx is cancelled. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		// Skip while a callback is still running, but try again so pending paths are not lost
		if !running.CompareAndSwap(false, true) {
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				log.Printf("Watch callback failed: %v", err)
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			log.Printf("Error closing file watcher: %v", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("file watcher event channel closed")
			}

			rel, err := filepath.Rel(w.baseDir, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			rel = filepath.ToSlash(rel)

			if w.isIgnored(rel) {
				continue
			}

			// New directories are watched too, whatever the patterns say
			if evt.Has(fsnotify.Create) {
				w.maybeAddDir(evt.Name)
			}

			if !w.matchesPatterns(rel) {
				continue
			}

			mu.Lock()
			pending[rel] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("file watcher error channel closed")
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				log.Printf("File watcher overflowed, some changes were missed: %v", err)
				continue
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

// addDirectories registers every directory below baseDir that is not ignored.
func (w *Watcher) addDirectories() error {
	err := filepath.WalkDir(w.baseDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			log.Printf("Not watching %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.baseDir, path)
		if relErr != nil {
			return nil
		}
		if rel != "." && w.isIgnored(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			return fmt.Errorf("failed to watch directory %s: %w", path, addErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to register watch directories: %w", err)
	}
	return nil
}

// maybeAddDir starts watching path if it is a directory that is not ignored.
func (w *Watcher) maybeAddDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}

	rel, err := filepath.Rel(w.baseDir, path)
	if err != nil || w.isIgnored(filepath.ToSlash(rel)) {
		return
	}

	if err := w.fsw.Add(path); err != nil {
		log.Printf("Failed to watch new directory %s: %v", path, err)
	}
}

func (w *Watcher) isIgnored(rel string) bool {
	for _, pat := range w.ignores {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	return false
}

func (w *Watcher) matchesPatterns(rel string) bool {
	if len(w.cfg.Patterns) == 0 {
		return true
	}
	for _, pat := range w.cfg.Patterns {
		if matched, _ := doublestar.Match(pat, rel); matched {
			return true
		}
	}
	return false
}
