package errors

import (
	"fmt"
	"strings"
)

// WorktreeNotFound creates a worktree lookup failure error
func WorktreeNotFound(identifier string) *ArborError {
	return New(ErrCodeWorktreeNotFound, fmt.Sprintf("worktree '%s' not found", identifier)).
		WithDetail("identifier", identifier)
}

// MetadataMissing signals an operation that assumes an initialized worktree
func MetadataMissing(worktreePath string) *ArborError {
	return New(ErrCodeMetadataMissing, fmt.Sprintf("no metadata document for worktree: %s", worktreePath)).
		WithDetail("worktreePath", worktreePath)
}

// MetadataParse wraps a failure to parse a present metadata document
func MetadataParse(worktreePath string, err error) *ArborError {
	return Wrap(err, ErrCodeMetadataParse, fmt.Sprintf("unparsable metadata document for worktree: %s", worktreePath)).
		WithDetail("worktreePath", worktreePath)
}

// MetadataValidation wraps a schema validation failure
func MetadataValidation(worktreePath string, err error) *ArborError {
	return Wrap(err, ErrCodeMetadataValidation, fmt.Sprintf("metadata document failed validation: %s", worktreePath)).
		WithDetail("worktreePath", worktreePath)
}

// GitCommand creates a non-zero-exit git error carrying the command and stderr
func GitCommand(command string, stderr string, err error) *ArborError {
	message := fmt.Sprintf("git command failed: %s", command)
	if trimmed := strings.TrimSpace(stderr); trimmed != "" {
		message = fmt.Sprintf("%s: %s", message, trimmed)
	}
	return Wrap(err, ErrCodeGitCommand, message).
		WithDetail("command", command).
		WithDetail("stderr", stderr)
}

// GitTimeout creates a deadline-exceeded git error carrying the command
func GitTimeout(command string, timeout string) *ArborError {
	return New(ErrCodeGitTimeout, fmt.Sprintf("git command timed out after %s: %s", timeout, command)).
		WithDetail("command", command).
		WithDetail("timeout", timeout)
}

// ProviderUnavailable signals that an external AI CLI is not installed
func ProviderUnavailable(provider string) *ArborError {
	return New(ErrCodeProviderUnavailable, fmt.Sprintf("provider CLI '%s' is not installed or not on PATH", provider)).
		WithDetail("provider", provider)
}

// SessionResume wraps a resume failure that is not the expected
// unknown-session signal
func SessionResume(provider, sessionID string, err error) *ArborError {
	return Wrap(err, ErrCodeSessionResume, fmt.Sprintf("failed to resume %s session %s", provider, sessionID)).
		WithDetail("provider", provider).
		WithDetail("sessionId", sessionID)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *ArborError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}
