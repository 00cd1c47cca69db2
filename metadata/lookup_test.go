package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/arbor/errors"
)

func seedWorktree(t *testing.T, root, id, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	writeDocument(t, dir, fmt.Sprintf(`version: 1
id: %s
name: %s
path: %s
branch: %s
status: active
`, id, name, dir, name))
	return dir
}

func TestDiscover(t *testing.T) {
	store := newTestStore(t)

	t.Run("missing root yields empty result", func(t *testing.T) {
		docs, err := store.Discover(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("finds documents sorted by name", func(t *testing.T) {
		root := t.TempDir()
		seedWorktree(t, root, "id-b", "beta")
		seedWorktree(t, root, "id-a", "alpha")
		require.NoError(t, os.MkdirAll(filepath.Join(root, "no-doc"), 0755))

		docs, err := store.Discover(root)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "alpha", docs[0].Name)
		assert.Equal(t, "beta", docs[1].Name)
	})

	t.Run("broken document fails loudly", func(t *testing.T) {
		root := t.TempDir()
		seedWorktree(t, root, "id-a", "alpha")
		writeDocument(t, filepath.Join(root, "broken"), "{{{ not yaml")

		_, err := store.Discover(root)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeMetadataParse))
	})
}

func TestLookup(t *testing.T) {
	store := newTestStore(t)
	root := t.TempDir()
	dir := seedWorktree(t, root, "id-a", "alpha")

	t.Run("by name", func(t *testing.T) {
		md, err := store.Lookup(root, "alpha")
		require.NoError(t, err)
		assert.Equal(t, "id-a", md.ID)
	})

	t.Run("by id", func(t *testing.T) {
		md, err := store.Lookup(root, "id-a")
		require.NoError(t, err)
		assert.Equal(t, "alpha", md.Name)
	})

	t.Run("by direct path", func(t *testing.T) {
		md, err := store.Lookup(root, dir)
		require.NoError(t, err)
		assert.Equal(t, "alpha", md.Name)
	})

	t.Run("unknown identifier is WORKTREE_NOT_FOUND", func(t *testing.T) {
		_, err := store.Lookup(root, "does-not-exist")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeWorktreeNotFound))
	})
}

func TestDecodeExtra(t *testing.T) {
	store := newTestStore(t)

	type watchBlock struct {
		Ignore   []string `yaml:"ignore"`
		Interval string   `yaml:"interval"`
	}

	t.Run("decodes a caller-supplied block", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc+"watch:\n  ignore:\n    - node_modules\n    - dist\n  interval: 10s\n")

		md, err := store.Load(dir)
		require.NoError(t, err)

		var cfg watchBlock
		require.NoError(t, md.DecodeExtra("watch", &cfg))
		assert.Equal(t, []string{"node_modules", "dist"}, cfg.Ignore)
		assert.Equal(t, "10s", cfg.Interval)
	})

	t.Run("missing block leaves the target zero-valued", func(t *testing.T) {
		dir := t.TempDir()
		writeDocument(t, dir, minimalDoc)

		md, err := store.Load(dir)
		require.NoError(t, err)

		var cfg watchBlock
		require.NoError(t, md.DecodeExtra("watch", &cfg))
		assert.Empty(t, cfg.Ignore)
		assert.Empty(t, cfg.Interval)
	})
}

func TestSessionRecordLive(t *testing.T) {
	assert.False(t, (*SessionRecord)(nil).Live())
	assert.False(t, (&SessionRecord{Enabled: false, SessionID: "x"}).Live())
	assert.False(t, (&SessionRecord{Enabled: true}).Live(), "enabled with no identifier is no session")
	assert.True(t, (&SessionRecord{Enabled: true, SessionID: "x"}).Live())
}
