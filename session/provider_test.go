package session

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLauncher records launch specs and answers with canned stderr/error.
type fakeLauncher struct {
	specs  []LaunchSpec
	stderr string
	err    error
}

func (l *fakeLauncher) Run(ctx context.Context, spec LaunchSpec) (string, error) {
	l.specs = append(l.specs, spec)
	return l.stderr, l.err
}

func TestIsUnknownSessionStderr(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   bool
	}{
		{"claude wording", "Error: No conversation found with session ID abc", true},
		{"generic wording", "error: session not found", true},
		{"cursor wording", "Chat not found: def", true},
		{"mixed case", "SESSION NOT FOUND", true},
		{"unrelated failure", "error: rate limit exceeded", false},
		{"empty stderr", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUnknownSessionStderr(tt.stderr))
		})
	}
}

func TestClaudeProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("launch command line", func(t *testing.T) {
		launcher := &fakeLauncher{}
		p := NewClaudeProvider(launcher, nil)

		require.NoError(t, p.Launch(ctx, "/wt", "abc", "do the thing", false))
		require.Len(t, launcher.specs, 1)

		spec := launcher.specs[0]
		assert.Equal(t, claudeBinary, spec.Binary)
		assert.Equal(t, "/wt", spec.Dir)
		assert.True(t, spec.Interactive)
		assert.Equal(t, []string{"--session-id", "abc", "do the thing"}, spec.Args)
	})

	t.Run("force adds the skip-permissions flag", func(t *testing.T) {
		launcher := &fakeLauncher{}
		p := NewClaudeProvider(launcher, nil)

		require.NoError(t, p.Launch(ctx, "/wt", "abc", "", true))
		assert.Equal(t, []string{"--session-id", "abc", "--dangerously-skip-permissions"}, launcher.specs[0].Args)
	})

	t.Run("resume maps unknown-session stderr to the sentinel", func(t *testing.T) {
		launcher := &fakeLauncher{stderr: "No conversation found with session ID abc", err: fmt.Errorf("exit status 1")}
		p := NewClaudeProvider(launcher, nil)

		err := p.Resume(ctx, "/wt", "abc", "", false)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrUnknownSession))
	})

	t.Run("resume passes other failures through", func(t *testing.T) {
		launcher := &fakeLauncher{stderr: "rate limit exceeded", err: fmt.Errorf("exit status 1")}
		p := NewClaudeProvider(launcher, nil)

		err := p.Resume(ctx, "/wt", "abc", "", false)
		require.Error(t, err)
		assert.False(t, stderrors.Is(err, ErrUnknownSession))
	})
}

func TestCursorProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("launch command line", func(t *testing.T) {
		launcher := &fakeLauncher{}
		p := NewCursorProvider(launcher, nil)

		require.NoError(t, p.Launch(ctx, "/wt", "def", "port it", true))
		require.Len(t, launcher.specs, 1)

		spec := launcher.specs[0]
		assert.Equal(t, cursorBinary, spec.Binary)
		assert.Equal(t, []string{"agent", "--chat-id", "def", "--force", "port it"}, spec.Args)
	})

	t.Run("resume command line", func(t *testing.T) {
		launcher := &fakeLauncher{}
		p := NewCursorProvider(launcher, nil)

		require.NoError(t, p.Resume(ctx, "/wt", "def", "", false))
		assert.Equal(t, []string{"agent", "--resume", "def"}, launcher.specs[0].Args)
	})

	t.Run("resume maps unknown-chat stderr to the sentinel", func(t *testing.T) {
		launcher := &fakeLauncher{stderr: "chat not found: def", err: fmt.Errorf("exit status 1")}
		p := NewCursorProvider(launcher, nil)

		err := p.Resume(ctx, "/wt", "def", "", false)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, ErrUnknownSession))
	})
}
