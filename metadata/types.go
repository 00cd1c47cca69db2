package metadata

import (
	"time"
)

// SchemaVersion is the current version of the worktree metadata document.
// Documents with a lower version are migrated in place at load time.
const SchemaVersion = 1

// WorktreeStatus describes the lifecycle state of a worktree.
type WorktreeStatus string

const (
	StatusActive    WorktreeStatus = "active"
	StatusCompleted WorktreeStatus = "completed"
	StatusArchived  WorktreeStatus = "archived"
)

// Provider names for AI coding-agent CLI backends.
const (
	ProviderClaude = "claude"
	ProviderCursor = "cursor"
)

// Top-level document field names accepted by Store.MergeField.
const (
	FieldAutoCommit    = "auto_commit"
	FieldClaudeSession = "claude_session"
	FieldCursorSession = "cursor_session"
	FieldGitInfo       = "git_info"
)

// WorktreeMetadata is the persisted per-worktree document. Fields this tool
// does not know about are captured in Extra and written back untouched.
type WorktreeMetadata struct {
	Version   int            `yaml:"version"`
	ID        string         `yaml:"id"`
	Name      string         `yaml:"name"`
	Path      string         `yaml:"path"`
	Branch    string         `yaml:"branch"`
	Status    WorktreeStatus `yaml:"status"`
	CreatedAt time.Time      `yaml:"created_at"`
	CreatedBy string         `yaml:"created_by,omitempty"`

	Teams               []string            `yaml:"teams,omitempty"`
	ConversationHistory []ConversationEntry `yaml:"conversation_history,omitempty"`

	GitInfo GitInfo `yaml:"git_info"`

	ClaudeSession *SessionRecord  `yaml:"claude_session,omitempty"`
	CursorSession *SessionRecord  `yaml:"cursor_session,omitempty"`
	AutoCommit    *AutoCommitInfo `yaml:"auto_commit,omitempty"`

	Extra map[string]interface{} `yaml:",inline"`
}

// GitInfo records the branch topology of a worktree.
type GitInfo struct {
	BaseBranch    string `yaml:"base_branch,omitempty"`
	CurrentBranch string `yaml:"current_branch,omitempty"`
}

// ConversationEntry is one item of a worktree's conversation history.
type ConversationEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Role      string    `yaml:"role"`
	Summary   string    `yaml:"summary"`

	Extra map[string]interface{} `yaml:",inline"`
}

// SessionRecord tracks one provider's AI-agent session for a worktree.
// At most one live record exists per provider.
type SessionRecord struct {
	Enabled        bool       `yaml:"enabled"`
	SessionID      string     `yaml:"session_id,omitempty"`
	CreatedAt      time.Time  `yaml:"created_at"`
	LastResumedAt  *time.Time `yaml:"last_resumed_at,omitempty"`
	PromptTemplate string     `yaml:"prompt_template,omitempty"`

	Extra map[string]interface{} `yaml:",inline"`
}

// Live reports whether the record can be resumed. An enabled record with a
// missing identifier is equivalent to no session at all.
func (r *SessionRecord) Live() bool {
	return r != nil && r.Enabled && r.SessionID != ""
}

// AutoCommitInfo is the persisted auto-commit block of a worktree document.
type AutoCommitInfo struct {
	Enabled        bool       `yaml:"enabled"`
	LastCommit     *time.Time `yaml:"last_commit,omitempty"`
	PendingChanges int        `yaml:"pending_changes"`
	QueueSize      int        `yaml:"queue_size"`

	Extra map[string]interface{} `yaml:",inline"`
}

// Session returns the record for the named provider, or nil.
func (m *WorktreeMetadata) Session(provider string) *SessionRecord {
	switch provider {
	case ProviderClaude:
		return m.ClaudeSession
	case ProviderCursor:
		return m.CursorSession
	}
	return nil
}

// SetSession replaces the record for the named provider. Records of other
// providers are never touched.
func (m *WorktreeMetadata) SetSession(provider string, record *SessionRecord) {
	switch provider {
	case ProviderClaude:
		m.ClaudeSession = record
	case ProviderCursor:
		m.CursorSession = record
	}
}

// HasAnySession reports whether any provider has a live session record.
func (m *WorktreeMetadata) HasAnySession() bool {
	return m.ClaudeSession.Live() || m.CursorSession.Live()
}

// SessionFieldName maps a provider to its top-level document field.
func SessionFieldName(provider string) string {
	if provider == ProviderCursor {
		return FieldCursorSession
	}
	return FieldClaudeSession
}
