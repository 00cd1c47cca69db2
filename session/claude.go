package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/grovetools/arbor/command"
	"github.com/grovetools/arbor/metadata"
)

// claudeBinary is the Claude Code CLI entrypoint.
const claudeBinary = "claude"

// ClaudeProvider drives the claude CLI.
type ClaudeProvider struct {
	launcher Launcher
	executor command.Executor
}

// NewClaudeProvider creates the claude provider.
func NewClaudeProvider(launcher Launcher, executor command.Executor) *ClaudeProvider {
	return &ClaudeProvider{launcher: launcher, executor: executor}
}

// Name implements Provider.
func (p *ClaudeProvider) Name() string { return metadata.ProviderClaude }

// IsAvailable reports whether the claude CLI is on PATH.
func (p *ClaudeProvider) IsAvailable() bool {
	_, err := p.executor.LookPath(claudeBinary)
	return err == nil
}

// Launch starts a new interactive session bound to sessionID.
func (p *ClaudeProvider) Launch(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error {
	args := []string{"--session-id", sessionID}
	if force {
		args = append(args, "--dangerously-skip-permissions")
	}
	if prompt != "" {
		args = append(args, prompt)
	}

	_, err := p.launcher.Run(ctx, LaunchSpec{
		Dir:         worktreePath,
		Binary:      claudeBinary,
		Args:        args,
		Interactive: true,
	})
	return err
}

// Resume continues the session with sessionID. The CLI reporting an unknown
// conversation on stderr maps to ErrUnknownSession.
func (p *ClaudeProvider) Resume(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error {
	args := []string{"--resume", sessionID}
	if force {
		args = append(args, "--dangerously-skip-permissions")
	}
	if prompt != "" {
		args = append(args, prompt)
	}

	stderr, err := p.launcher.Run(ctx, LaunchSpec{
		Dir:         worktreePath,
		Binary:      claudeBinary,
		Args:        args,
		Interactive: true,
	})
	if err != nil {
		if isUnknownSessionStderr(stderr) {
			return fmt.Errorf("claude session %s: %w", sessionID, ErrUnknownSession)
		}
		return err
	}
	return nil
}

// isUnknownSessionStderr matches the documented "session/chat not found"
// signals the provider CLIs print for unresumable identifiers.
func isUnknownSessionStderr(stderr string) bool {
	lower := strings.ToLower(stderr)
	return strings.Contains(lower, "no conversation found") ||
		strings.Contains(lower, "session not found") ||
		strings.Contains(lower, "chat not found")
}
