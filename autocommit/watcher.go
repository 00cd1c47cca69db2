package autocommit

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/moby/patternmatcher"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/arbor/errors"
	"github.com/grovetools/arbor/logging"
	"github.com/grovetools/arbor/metadata"
)

// DefaultFlushInterval is how often the watcher persists pending-change
// counts and, when auto-commit is enabled, triggers a commit.
const DefaultFlushInterval = 30 * time.Second

// alwaysIgnored are paths the watcher never reports, on top of any
// user-supplied ignore patterns.
var alwaysIgnored = []string{".git", ".arbor"}

// WatchConfig is the optional caller-supplied "watch" block of a worktree
// document, decoded via metadata.DecodeExtra.
type WatchConfig struct {
	Ignore   []string `yaml:"ignore"`
	Interval string   `yaml:"interval"`
}

// Watcher tracks filesystem changes in one worktree and feeds the
// pending_changes/queue_size counters of its auto_commit block. When the
// persisted enabled flag is set, each flush also requests a forced commit
// through the coordinator.
type Watcher struct {
	coordinator  *Coordinator
	worktreePath string
	matcher      *patternmatcher.PatternMatcher
	fsw          *fsnotify.Watcher
	log          *logrus.Entry
	interval     time.Duration
	opts         Options

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewWatcher creates a watcher for the worktree. Ignore patterns use
// .gitignore-style syntax; .git and .arbor are always ignored.
func NewWatcher(c *Coordinator, worktreePath string, ignore []string, interval time.Duration, opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid worktree path")
	}

	matcher, err := patternmatcher.New(append(append([]string{}, alwaysIgnored...), ignore...))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid ignore pattern")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create filesystem watcher")
	}

	if interval <= 0 {
		interval = DefaultFlushInterval
	}

	w := &Watcher{
		coordinator:  c,
		worktreePath: abs,
		matcher:      matcher,
		fsw:          fsw,
		log:          logging.NewLogger("autocommit-watcher"),
		interval:     interval,
		opts:         opts,
		pending:      make(map[string]struct{}),
	}

	if err := w.watchTree(abs); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run processes filesystem events until the context is canceled, flushing
// counters on each interval tick.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("Filesystem watcher error")

		case <-ticker.C:
			if err := w.flush(ctx); err != nil {
				w.log.WithError(err).Warn("Failed to flush pending changes")
			}
		}
	}
}

// Pending returns the number of distinct changed paths seen since the last
// flush.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, err := filepath.Rel(w.worktreePath, event.Name)
	if err != nil {
		return
	}

	if ignored, err := w.matcher.MatchesOrParentMatches(rel); err != nil || ignored {
		return
	}

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				w.log.WithError(err).Warn("Failed to watch new directory")
			}
			return
		}
	}

	w.mu.Lock()
	w.pending[rel] = struct{}{}
	w.mu.Unlock()
}

// flush persists the counters and requests a commit when enabled.
func (w *Watcher) flush(ctx context.Context) error {
	w.mu.Lock()
	count := len(w.pending)
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if count == 0 {
		return nil
	}

	err := w.coordinator.store.MergeField(w.worktreePath, metadata.FieldAutoCommit, map[string]interface{}{
		"pending_changes": count,
		"queue_size":      count,
	})
	if err != nil {
		return err
	}

	status, err := w.coordinator.Status(w.worktreePath)
	if err != nil {
		return err
	}
	if !status.Enabled {
		return nil
	}

	return w.coordinator.ForceCommit(ctx, w.worktreePath, w.opts)
}

// watchTree registers root and all its non-ignored subdirectories.
func (w *Watcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}

		rel, relErr := filepath.Rel(w.worktreePath, path)
		if relErr != nil {
			return nil
		}
		if rel != "." {
			if ignored, matchErr := w.matcher.MatchesOrParentMatches(rel); matchErr == nil && ignored {
				return filepath.SkipDir
			}
		}

		if addErr := w.fsw.Add(path); addErr != nil {
			w.log.WithError(addErr).WithField("path", path).Warn("Failed to watch directory")
		}
		return nil
	})
}
