package worktree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/arbor/command"
	"github.com/grovetools/arbor/git"
	"github.com/grovetools/arbor/logging"
	"github.com/grovetools/arbor/metadata"
)

// DirName is the directory under the repository root that holds arbor
// worktrees.
const DirName = ".arbor-worktrees"

// Manager creates and removes task worktrees together with their metadata
// documents.
type Manager struct {
	store   *metadata.Store
	git     git.Runner
	wt      *git.WorktreeManager
	builder *command.SafeBuilder
	log     *logrus.Entry
}

// NewManager creates a worktree manager.
func NewManager(store *metadata.Store, runner git.Runner) *Manager {
	return &Manager{
		store:   store,
		git:     runner,
		wt:      git.NewWorktreeManager(runner),
		builder: command.NewSafeBuilder(),
		log:     logging.NewLogger("worktree"),
	}
}

// Root returns the worktrees directory for the repository containing dir.
func (m *Manager) Root(ctx context.Context, dir string) (string, error) {
	gitRoot, err := git.GetGitRoot(ctx, m.git, dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitRoot, DirName), nil
}

// Create adds a git worktree named name branched off baseBranch (the
// repository's current branch when empty) and writes its initial metadata
// document.
func (m *Manager) Create(ctx context.Context, repoDir, name, baseBranch string) (*metadata.WorktreeMetadata, error) {
	if err := m.builder.Validate("worktreeName", name); err != nil {
		return nil, err
	}

	gitRoot, err := git.GetGitRoot(ctx, m.git, repoDir)
	if err != nil {
		return nil, err
	}

	if baseBranch == "" {
		baseBranch, err = git.CurrentBranch(ctx, m.git, gitRoot)
		if err != nil {
			return nil, err
		}
	}

	worktreePath := filepath.Join(gitRoot, DirName, name)
	if err := os.MkdirAll(filepath.Dir(worktreePath), 0o755); err != nil {
		return nil, fmt.Errorf("create worktrees directory: %w", err)
	}

	branch := name
	if err := m.wt.CreateWorktree(ctx, gitRoot, worktreePath, branch, true); err != nil {
		// The branch may survive a previously removed worktree; reuse it.
		if strings.Contains(err.Error(), "already exists") {
			if err := m.wt.CreateWorktree(ctx, gitRoot, worktreePath, branch, false); err != nil {
				return nil, fmt.Errorf("create worktree with existing branch: %w", err)
			}
		} else {
			return nil, err
		}
	}

	md := &metadata.WorktreeMetadata{
		Version:   metadata.SchemaVersion,
		ID:        uuid.NewString(),
		Name:      name,
		Path:      worktreePath,
		Branch:    branch,
		Status:    metadata.StatusActive,
		CreatedAt: time.Now(),
		CreatedBy: os.Getenv("USER"),
		GitInfo: metadata.GitInfo{
			BaseBranch:    baseBranch,
			CurrentBranch: branch,
		},
	}

	if err := m.store.Save(worktreePath, md); err != nil {
		return nil, err
	}

	m.log.WithFields(logrus.Fields{
		"worktree": name,
		"path":     worktreePath,
		"base":     baseBranch,
	}).Info("Created worktree")

	return md, nil
}

// List returns the metadata of every worktree under the repository.
func (m *Manager) List(ctx context.Context, repoDir string) ([]*metadata.WorktreeMetadata, error) {
	root, err := m.Root(ctx, repoDir)
	if err != nil {
		return nil, err
	}
	return m.store.Discover(root)
}

// Archive marks a worktree as archived without removing it.
func (m *Manager) Archive(ctx context.Context, repoDir, identifier string) (*metadata.WorktreeMetadata, error) {
	root, err := m.Root(ctx, repoDir)
	if err != nil {
		return nil, err
	}

	md, err := m.store.Lookup(root, identifier)
	if err != nil {
		return nil, err
	}

	md.Status = metadata.StatusArchived
	if err := m.store.Save(md.Path, md); err != nil {
		return nil, err
	}
	return md, nil
}

// Remove deletes the worktree directory, its metadata document with it.
func (m *Manager) Remove(ctx context.Context, repoDir, identifier string) error {
	root, err := m.Root(ctx, repoDir)
	if err != nil {
		return err
	}

	md, err := m.store.Lookup(root, identifier)
	if err != nil {
		return err
	}

	gitRoot, err := git.GetGitRoot(ctx, m.git, repoDir)
	if err != nil {
		return err
	}

	if err := m.wt.RemoveWorktree(ctx, gitRoot, md.Path); err != nil {
		return err
	}

	m.log.WithField("worktree", md.Name).Info("Removed worktree")
	return nil
}
