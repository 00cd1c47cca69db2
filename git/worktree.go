package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grovetools/arbor/command"
)

// WorktreeInfo contains information about a git worktree
type WorktreeInfo struct {
	Path   string
	Branch string
	Commit string
	Bare   bool
}

// WorktreeManager manages git worktrees
type WorktreeManager struct {
	runner  Runner
	builder *command.SafeBuilder
}

// NewWorktreeManager creates a new worktree manager
func NewWorktreeManager(r Runner) *WorktreeManager {
	return &WorktreeManager{
		runner:  r,
		builder: command.NewSafeBuilder(),
	}
}

// ListWorktrees returns all worktrees for the repository containing repoPath
func (m *WorktreeManager) ListWorktrees(ctx context.Context, repoPath string) ([]WorktreeInfo, error) {
	res, err := m.runner.Run(ctx, repoPath, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}

	return parseWorktreeList(res.Stdout), nil
}

// CreateWorktree creates a new worktree at worktreePath checked out on branch.
func (m *WorktreeManager) CreateWorktree(ctx context.Context, basePath, worktreePath, branch string, createBranch bool) error {
	if err := m.builder.Validate("gitRef", branch); err != nil {
		return fmt.Errorf("invalid branch name: %w", err)
	}

	args := []string{"worktree", "add"}
	if createBranch {
		args = append(args, "-b", branch)
	}
	args = append(args, worktreePath)
	if !createBranch {
		args = append(args, branch)
	}

	if _, err := m.runner.Run(ctx, basePath, args...); err != nil {
		return fmt.Errorf("create worktree: %w", err)
	}

	return nil
}

// RemoveWorktree removes a worktree
func (m *WorktreeManager) RemoveWorktree(ctx context.Context, basePath, worktreePath string) error {
	if _, err := m.runner.Run(ctx, basePath, "worktree", "remove", "--force", worktreePath); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}
	return nil
}

// FindWorktree returns the worktree whose path matches worktreePath, if any.
func (m *WorktreeManager) FindWorktree(ctx context.Context, repoPath, worktreePath string) (*WorktreeInfo, error) {
	worktrees, err := m.ListWorktrees(ctx, repoPath)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(worktreePath)
	if err != nil {
		return nil, err
	}

	for _, wt := range worktrees {
		if wt.Path == abs {
			return &wt, nil
		}
	}

	return nil, nil
}

// parseWorktreeList parses git worktree list --porcelain output
func parseWorktreeList(output string) []WorktreeInfo {
	var worktrees []WorktreeInfo

	var current WorktreeInfo
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			if current.Path != "" {
				worktrees = append(worktrees, current)
				current = WorktreeInfo{}
			}
			continue
		}

		parts := strings.SplitN(line, " ", 2)
		if len(parts) == 1 {
			if parts[0] == "bare" {
				current.Bare = true
			}
			continue
		}

		switch parts[0] {
		case "worktree":
			current.Path = parts[1]
		case "HEAD":
			current.Commit = parts[1]
		case "branch":
			current.Branch = strings.TrimPrefix(parts[1], "refs/heads/")
		}
	}

	if current.Path != "" {
		worktrees = append(worktrees, current)
	}

	return worktrees
}
