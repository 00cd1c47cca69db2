package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	vars := Variables{
		TaskDescription: "fix the login flow",
		Branch:          "fix-login",
		BaseBranch:      "main",
		WorktreePath:    "/repo/.arbor-worktrees/fix-login",
		WorktreeName:    "fix-login",
	}

	t.Run("substitutes all known placeholders", func(t *testing.T) {
		got := Render("{{worktree_name}} on {{branch}} from {{base_branch}} at {{worktree_path}}: {{task_description}}", vars)
		assert.Equal(t, "fix-login on fix-login from main at /repo/.arbor-worktrees/fix-login: fix the login flow", got)
	})

	t.Run("substitutes repeated placeholders", func(t *testing.T) {
		got := Render("{{branch}} {{branch}} {{branch}}", vars)
		assert.Equal(t, "fix-login fix-login fix-login", got)
	})

	t.Run("leaves unknown placeholders verbatim", func(t *testing.T) {
		got := Render("{{branch}} {{unknown_thing}}", vars)
		assert.Equal(t, "fix-login {{unknown_thing}}", got)
	})

	t.Run("requires exact placeholder names", func(t *testing.T) {
		// {{branch_extra}} is not {{branch}}; no partial matching.
		got := Render("{{branch_extra}}", vars)
		assert.Equal(t, "{{branch_extra}}", got)
	})

	t.Run("empty variable yields empty substitution", func(t *testing.T) {
		got := Render("task: {{task_description}}", Variables{})
		assert.Equal(t, "task: ", got)
	})

	t.Run("template without placeholders is unchanged", func(t *testing.T) {
		got := Render("no placeholders here", vars)
		assert.Equal(t, "no placeholders here", got)
	})

	t.Run("default template renders fully", func(t *testing.T) {
		got := Render(DefaultTemplate, vars)
		assert.NotContains(t, got, "{{")
		assert.Contains(t, got, "fix the login flow")
		assert.Contains(t, got, "'fix-login'")
	})
}
