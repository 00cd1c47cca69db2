package cli

import (
	"fmt"
	"strings"

	"github.com/grovetools/arbor/session"
)

// Report is the uniform caller-facing result: a status plus a human-readable
// message. Every surface — direct call or protocol tool call — renders the
// same block.
type Report struct {
	Status  string
	Message string
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Success creates an ok report.
func Success(format string, args ...interface{}) *Report {
	return &Report{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

// Failure creates an error report.
func Failure(format string, args ...interface{}) *Report {
	return &Report{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// String renders the report as a text block.
func (r *Report) String() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(r.Status), r.Message)
}

// FromOutcome renders a session resolution outcome.
func FromOutcome(o *session.Outcome) *Report {
	switch o.Kind {
	case session.OutcomeResumed:
		return Success("Resumed %s session %s for worktree '%s'.", o.Provider, o.SessionID, o.WorktreeName)
	case session.OutcomeCreated:
		return Success("Started new %s session %s for worktree '%s'.", o.Provider, o.SessionID, o.WorktreeName)
	case session.OutcomeCreatedExpired:
		return Success("Started new %s session %s for worktree '%s' (previous one expired).", o.Provider, o.SessionID, o.WorktreeName)
	case session.OutcomeNoSession:
		return Failure("No AI-agent session found for worktree '%s'. Run 'arbor session setup %s' to create one.", o.WorktreeName, o.WorktreeName)
	}
	return Failure("Unknown session outcome '%s'.", o.Kind)
}
