package autocommit

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/arbor/errors"
	"github.com/grovetools/arbor/git"
	"github.com/grovetools/arbor/logging"
	"github.com/grovetools/arbor/metadata"
)

// DefaultMessageTemplate is used when ForceCommit is given no template.
// {fileCount} and {timestamp} are substituted at commit time.
const DefaultMessageTemplate = "chore: auto-commit {fileCount} file(s) at {timestamp}"

// UnknownCommitHash is recorded when no hash can be extracted from the
// commit output. Hash extraction is best-effort, not load-bearing.
const UnknownCommitHash = "unknown"

// commitHashPattern matches the bracket-delimited summary line git prints,
// e.g. "[main 1a2b3c4] chore: auto-commit".
var commitHashPattern = regexp.MustCompile(`\[[^\]]*\b([0-9a-f]{6,40})\]`)

// Options controls a single ForceCommit invocation.
type Options struct {
	// MessageTemplate is the commit message template; {fileCount} and
	// {timestamp} tokens are substituted.
	MessageTemplate string

	// Push pushes the worktree's branch to origin after committing, if an
	// origin remote exists.
	Push bool
}

// Status is the observable auto-commit state of one worktree.
// NeedsInitialization distinguishes "no metadata document at all" from
// "metadata exists with zero pending changes".
type Status struct {
	Enabled             bool
	LastCommit          *time.Time
	IsProcessing        bool
	PendingChanges      int
	QueueSize           int
	NeedsInitialization bool
}

// Coordinator dedupes and performs forced commits. The in-progress set is
// owned by the instance, keyed by absolute worktree path, and exists only in
// process memory: two coordinators never interfere, and there is no
// cross-process guarantee.
type Coordinator struct {
	store *metadata.Store
	git   git.Runner
	log   *logrus.Entry

	mu         sync.Mutex
	inProgress map[string]struct{}
}

// NewCoordinator creates a Coordinator using the given store and git runner.
func NewCoordinator(store *metadata.Store, runner git.Runner) *Coordinator {
	return &Coordinator{
		store:      store,
		git:        runner,
		log:        logging.NewLogger("autocommit"),
		inProgress: make(map[string]struct{}),
	}
}

// Enable turns on the persisted auto-commit flag for the worktree.
func (c *Coordinator) Enable(worktreePath string) error {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid worktree path")
	}

	return c.store.MergeField(abs, metadata.FieldAutoCommit, map[string]interface{}{
		"enabled": true,
	})
}

// Disable turns off the persisted auto-commit flag and clears any in-progress
// marker for the worktree. A missing metadata document (worktree mid-teardown)
// is tolerated: logged and swallowed. This is the coordinator's one
// intentional error-swallow.
func (c *Coordinator) Disable(worktreePath string) error {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid worktree path")
	}

	c.clear(abs)

	err = c.store.MergeField(abs, metadata.FieldAutoCommit, map[string]interface{}{
		"enabled": false,
	})
	if err != nil {
		if errors.Is(err, errors.ErrCodeMetadataMissing) {
			c.log.WithField("worktree", abs).Info("Auto-commit disable on uninitialized worktree, nothing to do")
			return nil
		}
		return err
	}

	return nil
}

// Status reports the auto-commit state of the worktree.
func (c *Coordinator) Status(worktreePath string) (*Status, error) {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid worktree path")
	}

	md, err := c.store.Load(abs)
	if err != nil {
		return nil, err
	}

	status := &Status{IsProcessing: c.isProcessing(abs)}
	if md == nil {
		status.NeedsInitialization = true
		return status, nil
	}

	if md.AutoCommit != nil {
		status.Enabled = md.AutoCommit.Enabled
		status.LastCommit = md.AutoCommit.LastCommit
		status.PendingChanges = md.AutoCommit.PendingChanges
		status.QueueSize = md.AutoCommit.QueueSize
	}

	return status, nil
}

// ForceCommit stages, commits, and optionally pushes all pending changes in
// the worktree. At most one commit operation runs per worktree path within
// this process: a second call while one is in flight returns immediately.
// Failures are rethrown to the caller with the worktree path embedded; the
// coordinator never retries internally.
func (c *Coordinator) ForceCommit(ctx context.Context, worktreePath string, opts Options) error {
	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid worktree path")
	}

	if !c.tryBegin(abs) {
		c.log.WithField("worktree", abs).Debug("Commit already in progress, skipping")
		return nil
	}
	defer c.clear(abs)

	changed, err := git.ChangedPaths(ctx, c.git, abs)
	if err != nil {
		return commitFailed(abs, err)
	}
	if len(changed) == 0 {
		c.log.WithField("worktree", abs).Info("No pending changes, nothing to commit")
		return nil
	}

	now := time.Now()
	message := buildMessage(opts.MessageTemplate, len(changed), now)

	if _, err := c.git.Run(ctx, abs, "add", "-A"); err != nil {
		return commitFailed(abs, err)
	}

	res, err := c.git.Run(ctx, abs, "commit", "-m", message)
	if err != nil {
		return commitFailed(abs, err)
	}

	hash := extractCommitHash(res.Stdout)
	c.log.WithFields(logrus.Fields{
		"worktree": abs,
		"files":    len(changed),
		"commit":   hash,
	}).Info("Auto-commit created")

	if opts.Push {
		if err := c.push(ctx, abs); err != nil {
			return commitFailed(abs, err)
		}
	}

	// Written as a time.Time so yaml emits a plain timestamp the typed
	// decode can read back.
	return c.store.MergeField(abs, metadata.FieldAutoCommit, map[string]interface{}{
		"last_commit":      now,
		"last_commit_hash": hash,
		"pending_changes":  0,
		"queue_size":       0,
	})
}

// push pushes the worktree's branch to origin. A missing origin remote is
// not an error: the push is skipped and logged.
func (c *Coordinator) push(ctx context.Context, abs string) error {
	hasOrigin, err := git.HasRemote(ctx, c.git, abs, "origin")
	if err != nil {
		return err
	}
	if !hasOrigin {
		c.log.WithField("worktree", abs).Info("No origin remote configured, skipping push")
		return nil
	}

	branch, err := git.CurrentBranch(ctx, c.git, abs)
	if err != nil {
		return err
	}

	_, err = c.git.Run(ctx, abs, "push", "origin", branch)
	return err
}

func (c *Coordinator) tryBegin(abs string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inProgress[abs]; busy {
		return false
	}
	c.inProgress[abs] = struct{}{}
	return true
}

func (c *Coordinator) clear(abs string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inProgress, abs)
}

func (c *Coordinator) isProcessing(abs string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inProgress[abs]
	return busy
}

// buildMessage substitutes {fileCount} and {timestamp} into the template.
func buildMessage(template string, fileCount int, ts time.Time) string {
	if template == "" {
		template = DefaultMessageTemplate
	}
	message := strings.ReplaceAll(template, "{fileCount}", strconv.Itoa(fileCount))
	return strings.ReplaceAll(message, "{timestamp}", ts.Format(time.RFC3339))
}

// extractCommitHash pulls the short hash out of git commit output. Returns
// the UnknownCommitHash sentinel when no bracket-delimited hash is found.
func extractCommitHash(output string) string {
	if m := commitHashPattern.FindStringSubmatch(output); m != nil {
		return m[1]
	}
	return UnknownCommitHash
}

// commitFailed rethrows err with the worktree path embedded, preserving the
// original error code.
func commitFailed(abs string, err error) error {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	return errors.Wrap(err, code, fmt.Sprintf("auto-commit failed for worktree %s", abs))
}
