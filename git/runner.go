package git

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/grovetools/arbor/command"
	"github.com/grovetools/arbor/errors"
)

// Result holds the captured output of a completed git command.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes git commands in a working directory. The interface exists
// so higher layers (auto-commit, lifecycle) can inject fakes in tests.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (*Result, error)
}

// CLI is the production Runner backed by the git binary.
type CLI struct {
	executor command.Executor
	timeout  time.Duration
}

// NewCLI creates a Runner with the default timeout.
func NewCLI() *CLI {
	return NewCLIWithExecutor(&command.RealExecutor{})
}

// NewCLIWithExecutor creates a Runner with a custom Executor.
func NewCLIWithExecutor(exec command.Executor) *CLI {
	return &CLI{
		executor: exec,
		timeout:  command.DefaultTimeout,
	}
}

// WithTimeout returns a copy of the CLI using the given per-command timeout.
func (c *CLI) WithTimeout(timeout time.Duration) *CLI {
	if timeout > command.MaxTimeout {
		timeout = command.MaxTimeout
	}
	return &CLI{executor: c.executor, timeout: timeout}
}

// Run executes `git <args...>` in dir and returns the captured output.
// Non-zero exits become GIT_COMMAND errors carrying the command and stderr;
// a deadline expiry becomes a GIT_TIMEOUT error carrying the command.
func (c *CLI) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	execCmd := c.executor.CommandContext(runCtx, "git", args...)
	execCmd.Dir = dir

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	err := execCmd.Run()
	cmdline := "git " + strings.Join(args, " ")
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errors.GitTimeout(cmdline, c.timeout.String())
		}
		return nil, errors.GitCommand(cmdline, stderr.String(), err)
	}

	return &Result{Stdout: stdout.String(), Stderr: stderr.String()}, nil
}
