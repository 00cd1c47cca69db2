package git

import (
	"context"
	"strings"
)

// CurrentBranch returns the branch checked out in the worktree at dir.
func CurrentBranch(ctx context.Context, r Runner, dir string) (string, error) {
	res, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// GetGitRoot returns the top-level directory of the repository containing dir.
func GetGitRoot(ctx context.Context, r Runner, dir string) (string, error) {
	res, err := r.Run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// HasRemote reports whether a remote with the given name is configured for
// the repository containing dir.
func HasRemote(ctx context.Context, r Runner, dir, name string) (bool, error) {
	res, err := r.Run(ctx, dir, "remote")
	if err != nil {
		return false, err
	}

	for _, remote := range strings.Split(res.Stdout, "\n") {
		if strings.TrimSpace(remote) == name {
			return true, nil
		}
	}
	return false, nil
}
