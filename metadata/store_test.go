package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/grovetools/arbor/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore()
	require.NoError(t, err)
	return store
}

func writeDocument(t *testing.T, worktreePath, content string) {
	t.Helper()
	path := DocumentPath(worktreePath)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readRawDocument(t *testing.T, worktreePath string) map[string]interface{} {
	t.Helper()
	data, err := os.ReadFile(DocumentPath(worktreePath))
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &raw))
	return raw
}

const minimalDoc = `version: 1
id: wt-001
name: fix-login
path: /tmp/fix-login
branch: fix-login
status: active
`

func TestStoreLoad(t *testing.T) {
	store := newTestStore(t)

	t.Run("absent document is nil, nil", func(t *testing.T) {
		md, err := store.Load(t.TempDir())
		require.NoError(t, err)
		assert.Nil(t, md)
	})

	t.Run("minimal document loads", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc)

		md, err := store.Load(dir)
		require.NoError(t, err)
		require.NotNil(t, md)
		assert.Equal(t, "wt-001", md.ID)
		assert.Equal(t, "fix-login", md.Name)
		assert.Equal(t, StatusActive, md.Status)
		assert.Nil(t, md.ClaudeSession)
		assert.Nil(t, md.CursorSession)
		assert.Nil(t, md.AutoCommit)
	})

	t.Run("unparsable document is an error, never treated as absent", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, "{{{ not yaml")

		md, err := store.Load(dir)
		require.Error(t, err)
		assert.Nil(t, md)
		assert.True(t, errors.Is(err, errors.ErrCodeMetadataParse))
	})

	t.Run("document missing required fields fails validation", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, "version: 1\nid: wt-002\n")

		_, err := store.Load(dir)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeMetadataValidation))
	})

	t.Run("unknown fields are accepted", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc+"custom_tool:\n  setting: 42\n")

		md, err := store.Load(dir)
		require.NoError(t, err)
		require.NotNil(t, md)
		assert.Contains(t, md.Extra, "custom_tool")
	})
}

func TestStoreSave(t *testing.T) {
	store := newTestStore(t)

	t.Run("round trip preserves fields and absent optionals stay absent", func(t *testing.T) {
		dir := t.TempDir()
		md := &WorktreeMetadata{
			ID:        "wt-003",
			Name:      "feature-x",
			Path:      dir,
			Branch:    "feature-x",
			Status:    StatusActive,
			CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
			GitInfo:   GitInfo{BaseBranch: "main", CurrentBranch: "feature-x"},
		}
		require.NoError(t, store.Save(dir, md))

		loaded, err := store.Load(dir)
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, md.ID, loaded.ID)
		assert.Equal(t, md.Name, loaded.Name)
		assert.Equal(t, "main", loaded.GitInfo.BaseBranch)
		assert.Nil(t, loaded.ClaudeSession)
		assert.Nil(t, loaded.AutoCommit)

		raw := readRawDocument(t, dir)
		_, hasClaudeSession := raw["claude_session"]
		assert.False(t, hasClaudeSession, "absent optional must not be written as an empty block")
	})

	t.Run("save stamps the current schema version", func(t *testing.T) {
		dir := t.TempDir()
		md := &WorktreeMetadata{ID: "wt-004", Name: "n", Path: dir}
		require.NoError(t, store.Save(dir, md))
		assert.Equal(t, SchemaVersion, md.Version)

		raw := readRawDocument(t, dir)
		assert.Equal(t, SchemaVersion, raw["version"])
	})

	t.Run("save writes back unknown fields untouched", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc+"custom_tool:\n  setting: 42\n")

		md, err := store.Load(dir)
		require.NoError(t, err)
		md.Status = StatusCompleted
		require.NoError(t, store.Save(dir, md))

		raw := readRawDocument(t, dir)
		assert.Equal(t, "completed", raw["status"])
		custom, ok := raw["custom_tool"].(map[string]interface{})
		require.True(t, ok, "unknown top-level field must survive a save")
		assert.Equal(t, 42, custom["setting"])
	})
}

func TestStoreMergeField(t *testing.T) {
	store := newTestStore(t)

	t.Run("missing document fails with METADATA_MISSING", func(t *testing.T) {
		err := store.MergeField(t.TempDir(), FieldAutoCommit, map[string]interface{}{"enabled": true})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeMetadataMissing))
	})

	t.Run("creates the section when absent", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc)

		require.NoError(t, store.MergeField(dir, FieldAutoCommit, map[string]interface{}{"enabled": true}))

		md, err := store.Load(dir)
		require.NoError(t, err)
		require.NotNil(t, md.AutoCommit)
		assert.True(t, md.AutoCommit.Enabled)
	})

	t.Run("merges shallowly, leaving sibling keys alone", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc+`claude_session:
  enabled: true
  session_id: abc-123
  prompt_template: custom
`)

		err := store.MergeField(dir, FieldClaudeSession, map[string]interface{}{
			"last_resumed_at": "2026-08-26T10:00:00Z",
		})
		require.NoError(t, err)

		raw := readRawDocument(t, dir)
		section := raw["claude_session"].(map[string]interface{})
		assert.Equal(t, "abc-123", section["session_id"])
		assert.Equal(t, "custom", section["prompt_template"])
		assert.Equal(t, true, section["enabled"])
	})

	t.Run("leaves unrelated fields, including unknown ones, untouched", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc+"custom_tool:\n  setting: 42\ncursor_session:\n  enabled: true\n  session_id: cur-1\n")

		err := store.MergeField(dir, FieldAutoCommit, map[string]interface{}{"enabled": true})
		require.NoError(t, err)

		raw := readRawDocument(t, dir)
		assert.Contains(t, raw, "custom_tool")
		cursor := raw["cursor_session"].(map[string]interface{})
		assert.Equal(t, "cur-1", cursor["session_id"])
	})
}

func TestStoreMigration(t *testing.T) {
	store := newTestStore(t)

	t.Run("v0 history is renamed and the document rewritten once", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, `id: wt-old
name: legacy
path: /tmp/legacy
history:
  - role: user
    summary: first message
`)

		md, err := store.Load(dir)
		require.NoError(t, err)
		require.NotNil(t, md)
		require.Len(t, md.ConversationHistory, 1)
		assert.Equal(t, "first message", md.ConversationHistory[0].Summary)

		raw := readRawDocument(t, dir)
		assert.Equal(t, SchemaVersion, raw["version"])
		assert.NotContains(t, raw, "history")
		assert.Contains(t, raw, "conversation_history")
	})

	t.Run("current documents are not rewritten", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc)

		before, err := os.ReadFile(DocumentPath(dir))
		require.NoError(t, err)

		_, err = store.Load(dir)
		require.NoError(t, err)

		after, err := os.ReadFile(DocumentPath(dir))
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestMigrateIdempotent(t *testing.T) {
	doc := map[string]interface{}{
		"version": SchemaVersion,
		"id":      "x",
		"name":    "n",
		"path":    "/p",
	}
	assert.False(t, migrate(doc))
}
