package session

import (
	"context"
	stderrors "errors"

	"github.com/grovetools/arbor/command"
	"github.com/grovetools/arbor/metadata"
)

// ErrUnknownSession signals that the external provider does not recognize
// the session identifier (expired or deleted on the provider side). The
// resolver falls back to creating a new session when it sees this.
var ErrUnknownSession = stderrors.New("provider does not recognize the session")

// Provider is the uniform capability interface over the external AI
// coding-agent CLIs. The concrete providers differ only in command-line
// shape and availability probe, never in resolver logic.
type Provider interface {
	// Name is the provider identifier used in config and metadata.
	Name() string

	// IsAvailable reports whether the provider CLI is installed.
	IsAvailable() bool

	// Launch starts a brand-new session with the given identifier.
	Launch(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error

	// Resume continues an existing session. A resume the provider cannot
	// match reports ErrUnknownSession.
	Resume(ctx context.Context, worktreePath, sessionID, prompt string, force bool) error
}

// DefaultProviders returns the production provider set keyed by name.
func DefaultProviders() map[string]Provider {
	launcher := NewProcessLauncher()
	executor := &command.RealExecutor{}
	return map[string]Provider{
		metadata.ProviderClaude: NewClaudeProvider(launcher, executor),
		metadata.ProviderCursor: NewCursorProvider(launcher, executor),
	}
}
