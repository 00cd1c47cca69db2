package session

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/grovetools/arbor/command"
)

// LaunchSpec describes one provider CLI invocation.
type LaunchSpec struct {
	// Dir is the working directory for the child process.
	Dir string

	// Binary and Args form the command line.
	Binary string
	Args   []string

	// Interactive inherits stdin and stdout so the session runs in the
	// caller's terminal. The invoking call blocks until the child exits.
	Interactive bool
}

// Launcher is the process-launch collaborator. It returns the captured
// stderr text alongside the run error so callers can classify failures.
type Launcher interface {
	Run(ctx context.Context, spec LaunchSpec) (stderr string, err error)
}

// ProcessLauncher is the production Launcher.
type ProcessLauncher struct {
	executor command.Executor
}

// NewProcessLauncher creates a launcher backed by the real executor.
func NewProcessLauncher() *ProcessLauncher {
	return &ProcessLauncher{executor: &command.RealExecutor{}}
}

// Run starts the child process and blocks until it exits. Stderr is teed:
// the user still sees it live, and the captured copy is returned for
// classification (the unknown-session signal lives there).
func (l *ProcessLauncher) Run(ctx context.Context, spec LaunchSpec) (string, error) {
	cmd := l.executor.CommandContext(ctx, spec.Binary, spec.Args...)
	cmd.Dir = spec.Dir

	var stderrBuf bytes.Buffer
	if spec.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	err := cmd.Run()
	return stderrBuf.String(), err
}
