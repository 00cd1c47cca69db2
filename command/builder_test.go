package command

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestValidateWorktreeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "fix-login", false},
		{"valid with underscore", "fix_login", false},
		{"valid with numbers", "task123", false},
		{"valid with dots", "release.1.2", false},
		{"empty name", "", true},
		{"starts with hyphen", "-task", true},
		{"starts with dot", ".hidden", true},
		{"spaces", "my task", true},
		{"shell metacharacters", "task;rm", true},
		{"path separator", "a/b", true},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateWorktreeName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateWorktreeName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFileName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid path", "/path/to/file.txt", false},
		{"relative path", "relative/path.txt", false},
		{"directory traversal", "../etc/passwd", true},
		{"command injection semicolon", "file.txt; rm -rf /", true},
		{"command injection pipe", "file.txt | cat", true},
		{"command injection backtick", "file`cmd`.txt", true},
		{"empty path", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateFileName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGitRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple branch", "main", false},
		{"nested ref", "feature/login-fix", false},
		{"with dots", "release-1.2", false},
		{"empty ref", "", true},
		{"spaces", "bad ref", true},
		{"shell metacharacters", "ref;ls", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateGitRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateGitRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder(t *testing.T) {
	sb := NewSafeBuilder()

	t.Run("build rejects empty command name", func(t *testing.T) {
		if _, err := sb.Build(context.Background(), ""); err == nil {
			t.Error("expected error for empty command name")
		}
	})

	t.Run("default timeout is applied", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "git", "status")
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if cmd.Timeout() != DefaultTimeout {
			t.Errorf("Timeout() = %v, want %v", cmd.Timeout(), DefaultTimeout)
		}
	})

	t.Run("timeout is capped at the maximum", func(t *testing.T) {
		cmd, err := sb.Build(context.Background(), "git", "status")
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		cmd = cmd.WithTimeout(1 * time.Hour)
		if cmd.Timeout() != MaxTimeout {
			t.Errorf("Timeout() = %v, want %v", cmd.Timeout(), MaxTimeout)
		}
	})

	t.Run("validate dispatches to the named validator", func(t *testing.T) {
		if err := sb.Validate("worktreeName", "good-name"); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
		if err := sb.Validate("worktreeName", "bad name"); err == nil {
			t.Error("expected error for invalid worktree name")
		}
		if err := sb.Validate("unknownType", "x"); err == nil {
			t.Error("expected error for unknown validator")
		}
	})
}
