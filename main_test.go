// ABOUTME: Tests for the hunksplit command line surface
// ABOUTME: Covers argument validation, help text and a dry run against a real repository

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/obra/hunksplit/internal/testutils"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no ranges", nil, "at least one range is required"},
		{"missing colon", []string{"invalid-format"}, "invalid range format"},
		{"not numbers", []string{"file.txt:abc-def"}, "failed to parse"},
		{"inverted", []string{"file.txt:20-10"}, "start line must be <= end line"},
		{"zero line", []string{"file.txt:0-10"}, "line numbers must be >= 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatalf("Expected error for %v", tt.args)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, part := range []string{"path:start-end", "--revision", "--dry-run", "--line-endings"} {
		if !strings.Contains(out, part) {
			t.Errorf("Expected help to mention %q, got:\n%s", part, out)
		}
	}
}

func TestDryRun_ActualRepo(t *testing.T) {
	repo := testutils.NewTestRepo(t)
	repo.WriteFile("a.txt", "one\nfour\n")
	repo.Commit("Initial commit")
	repo.WriteFile("a.txt", "one\ntwo\nthree\nfour\n")
	head := repo.Commit("Add two and three")

	t.Chdir(repo.Dir)
	out, err := execute(t, "--dry-run", "--no-color", "a.txt:2-2")
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if !strings.Contains(out, "Would split commit") {
		t.Errorf("Expected dry-run preview, got:\n%s", out)
	}
	if repo.Rev("main") != head {
		t.Errorf("Dry run must not move main")
	}
}

func TestSplit_ActualRepo(t *testing.T) {
	repo := testutils.NewTestRepo(t)
	repo.WriteFile("a.txt", "one\nfour\n")
	repo.Commit("Initial commit")
	repo.WriteFile("a.txt", "one\ntwo\nthree\nfour\n")
	head := repo.Commit("Add two and three")

	t.Chdir(repo.Dir)
	out, err := execute(t, "-m", "Add three", "a.txt:3-3")
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}
	if !strings.Contains(out, "To revert this split") {
		t.Errorf("Expected summary with undo instructions, got:\n%s", out)
	}
	if got := repo.GetCommitMessage("main"); got != "Add three" {
		t.Errorf("Expected selected commit message on main, got %q", got)
	}
	if got := repo.Show("main~1", "a.txt"); got != "one\ntwo\nfour\n" {
		t.Errorf("Unexpected remainder content %q", got)
	}
	if repo.Rev("main^{tree}") != repo.Rev(head+"^{tree}") {
		t.Errorf("Expected main to keep the original tree")
	}
}

func TestLineEndingsFlag_Invalid(t *testing.T) {
	repo := testutils.NewTestRepo(t)
	repo.WriteFile("a.txt", "one\n")
	repo.Commit("Initial commit")

	t.Chdir(repo.Dir)
	_, err := execute(t, "--line-endings", "sideways", "a.txt:1-1")
	if err == nil {
		t.Fatal("Expected error for unknown line ending mode")
	}
}
