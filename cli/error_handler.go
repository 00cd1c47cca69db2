package cli

import (
	"fmt"

	"github.com/grovetools/arbor/errors"
)

// FromError converts any error into a uniform failure report. This is the
// single point where internal errors become user-facing text; components
// below this layer never format user-facing messages themselves.
func FromError(err error) *Report {
	switch errors.GetCode(err) {
	case errors.ErrCodeWorktreeNotFound:
		return Failure("%s\nRun 'arbor list' to see available worktrees.", rootMessage(err))

	case errors.ErrCodeMetadataMissing:
		return Failure("%s\nThe worktree is not initialized; run 'arbor create' first.", rootMessage(err))

	case errors.ErrCodeMetadataParse, errors.ErrCodeMetadataValidation:
		return Failure("%s\nFix or remove the metadata document and retry.", rootMessage(err))

	case errors.ErrCodeProviderUnavailable:
		return Failure("%s\nInstall the provider CLI or switch providers in the agent config.", rootMessage(err))

	case errors.ErrCodeGitTimeout:
		return Failure("%s\nThe git operation exceeded its deadline; retry or check the repository state.", rootMessage(err))

	default:
		return Failure("%v", err)
	}
}

func rootMessage(err error) string {
	if arborErr, ok := err.(*errors.ArborError); ok {
		return arborErr.Message
	}
	return fmt.Sprintf("%v", err)
}
