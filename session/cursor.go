package session

import (
	"context"
	"fmt"

	"github.com/grovetools/arbor/command"
	"github.com/grovetools/arbor/metadata"
)

// cursorBinary is the Cursor agent CLI entrypoint.
const cursorBinary = "cursor-agent"

// CursorProvider drives the cursor-agent CLI.
type CursorProvider struct {
	launcher Launcher
	executor command.Executor
}

// NewCursorProvider creates the cursor provider.
func NewCursorProvider(launcher Launcher, executor command.Executor) *CursorProvider {
	return &CursorProvider{launcher: launcher, executor: executor}
}

// Name implements Provider.
func (p *CursorProvider) Name() string { return metadata.ProviderCursor }

// IsAvailable reports whether the cursor-agent CLI is on PATH.
func (p *CursorProvider) IsAvailable() bool {
	_, err := p.executor.LookPath(cursorBinary)
	return err == nil
}

// Launch starts a new interactive chat bound to sessionID.
func (p *CursorProvider) Launch(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error {
	args := []string{"agent", "--chat-id", sessionID}
	if force {
		args = append(args, "--force")
	}
	if prompt != "" {
		args = append(args, prompt)
	}

	_, err := p.launcher.Run(ctx, LaunchSpec{
		Dir:         worktreePath,
		Binary:      cursorBinary,
		Args:        args,
		Interactive: true,
	})
	return err
}

// Resume continues the chat with sessionID.
func (p *CursorProvider) Resume(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error {
	args := []string{"agent", "--resume", sessionID}
	if force {
		args = append(args, "--force")
	}
	if prompt != "" {
		args = append(args, prompt)
	}

	stderr, err := p.launcher.Run(ctx, LaunchSpec{
		Dir:         worktreePath,
		Binary:      cursorBinary,
		Args:        args,
		Interactive: true,
	})
	if err != nil {
		if isUnknownSessionStderr(stderr) {
			return fmt.Errorf("cursor chat %s: %w", sessionID, ErrUnknownSession)
		}
		return err
	}
	return nil
}
