package prompt

import (
	"strings"
)

// DefaultTemplate is the prompt used to start a new AI-agent session when
// the global config does not provide one.
const DefaultTemplate = `You are working in the git worktree '{{worktree_name}}' at {{worktree_path}}.
The branch '{{branch}}' is based on '{{base_branch}}'.

Task: {{task_description}}

Work only inside this worktree. Commit incrementally as you make progress.`

// Variables is the fixed set of placeholders available to prompt templates.
type Variables struct {
	TaskDescription string
	Branch          string
	BaseBranch      string
	WorktreePath    string
	WorktreeName    string
}

func (v Variables) toMap() map[string]string {
	return map[string]string{
		"task_description": v.TaskDescription,
		"branch":           v.Branch,
		"base_branch":      v.BaseBranch,
		"worktree_path":    v.WorktreePath,
		"worktree_name":    v.WorktreeName,
	}
}

// Render substitutes every literal occurrence of {{name}} for each known
// variable, including repeats. Placeholder names must match exactly;
// placeholders outside the fixed set are left verbatim.
func Render(template string, vars Variables) string {
	rendered := template
	for name, value := range vars.toMap() {
		rendered = strings.ReplaceAll(rendered, "{{"+name+"}}", value)
	}
	return rendered
}
