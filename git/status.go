package git

import (
	"context"
	"strconv"
	"strings"
)

// StatusInfo contains detailed git status information for a worktree
type StatusInfo struct {
	// Branch is the current branch name
	Branch string `json:"branch"`

	// AheadCount is the number of commits ahead of the upstream branch
	AheadCount int `json:"ahead_count"`

	// BehindCount is the number of commits behind the upstream branch
	BehindCount int `json:"behind_count"`

	// ModifiedCount is the number of modified files
	ModifiedCount int `json:"modified_count"`

	// UntrackedCount is the number of untracked files
	UntrackedCount int `json:"untracked_count"`

	// StagedCount is the number of staged files
	StagedCount int `json:"staged_count"`

	// IsDirty indicates if there are any uncommitted changes
	IsDirty bool `json:"is_dirty"`

	// HasUpstream indicates if the branch has an upstream tracking branch
	HasUpstream bool `json:"has_upstream"`
}

// GetStatus returns detailed status information for the worktree at dir.
func GetStatus(ctx context.Context, r Runner, dir string) (*StatusInfo, error) {
	// git status --porcelain=v2 --branch gives everything in a single call
	res, err := r.Run(ctx, dir, "status", "--porcelain=v2", "--branch")
	if err != nil {
		return nil, err
	}

	return parseStatusV2(res.Stdout), nil
}

// ChangedPaths returns the paths with uncommitted changes (staged, unstaged,
// or untracked) in the worktree at dir.
func ChangedPaths(ctx context.Context, r Runner, dir string) ([]string, error) {
	res, err := r.Run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	return parsePorcelainPaths(res.Stdout), nil
}

// parsePorcelainPaths extracts file paths from `git status --porcelain` output.
func parsePorcelainPaths(output string) []string {
	var paths []string
	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}
		// Two status columns, a space, then the path. Renames carry
		// "old -> new"; the new path is the one that changed.
		path := line[3:]
		if idx := strings.Index(path, " -> "); idx >= 0 {
			path = path[idx+4:]
		}
		paths = append(paths, strings.Trim(path, `"`))
	}
	return paths
}

// parseStatusV2 parses `git status --porcelain=v2 --branch` output.
func parseStatusV2(output string) *StatusInfo {
	status := &StatusInfo{}

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}

		// Header lines start with '#'
		if strings.HasPrefix(line, "# ") {
			parts := strings.Fields(line)
			if len(parts) < 3 {
				continue
			}
			switch parts[1] {
			case "branch.head":
				status.Branch = parts[2]
			case "branch.upstream":
				status.HasUpstream = true
			case "branch.ab":
				// format is +<ahead> -<behind>
				if len(parts) > 2 {
					status.AheadCount, _ = strconv.Atoi(strings.TrimPrefix(parts[2], "+"))
				}
				if len(parts) > 3 {
					status.BehindCount, _ = strconv.Atoi(strings.TrimPrefix(parts[3], "-"))
				}
			}
			continue
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "?": // Untracked
			status.UntrackedCount++
		case "1", "2": // Changed entries (1 for normal, 2 for rename/copy)
			if len(parts) < 2 || len(parts[1]) < 2 {
				continue
			}
			xy := parts[1]
			if xy[0] != '.' {
				status.StagedCount++
			}
			if xy[1] != '.' {
				status.ModifiedCount++
			}
		case "u", "U": // Unmerged
			status.StagedCount++
			status.ModifiedCount++
		}
	}

	status.IsDirty = status.ModifiedCount > 0 || status.UntrackedCount > 0 || status.StagedCount > 0

	return status
}
