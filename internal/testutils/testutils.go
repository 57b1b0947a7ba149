// ABOUTME: Test utilities for git operations and repository setup
// ABOUTME: Provides helper functions to create test repos and inspect their history

package testutils

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestRepo represents a test git repository
type TestRepo struct {
	Dir string
	t   *testing.T
}

// NewTestRepo creates a new temporary git repository for testing
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()

	repo := &TestRepo{Dir: t.TempDir(), t: t}
	repo.Git("init", "-q", "-b", "main")
	repo.Git("config", "user.name", "Test User")
	repo.Git("config", "user.email", "test@example.com")
	repo.Git("config", "commit.gpgsign", "false")

	return repo
}

// WriteFile writes content to a file in the test repo
func (r *TestRepo) WriteFile(path, content string) {
	r.t.Helper()

	fullPath := filepath.Join(r.Dir, path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		r.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		r.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// Commit adds all files and creates a commit with the given message
func (r *TestRepo) Commit(message string) string {
	r.t.Helper()

	r.Git("add", "-A")
	r.Git("commit", "-q", "-m", message)

	return r.Rev("HEAD")
}

// Rev resolves a revision to a full commit ID
func (r *TestRepo) Rev(rev string) string {
	r.t.Helper()

	return r.Git("rev-parse", "--verify", rev)
}

// Show returns the content of path at rev, untrimmed
func (r *TestRepo) Show(rev, path string) string {
	r.t.Helper()

	cmd := exec.Command("git", "show", rev+":"+path)
	cmd.Dir = r.Dir
	output, err := cmd.Output()
	if err != nil {
		r.t.Fatalf("Failed to show %s:%s: %v", rev, path, err)
	}
	return string(output)
}

// GetCommitMessage returns the commit message for a given commit
func (r *TestRepo) GetCommitMessage(commit string) string {
	r.t.Helper()

	return r.Git("log", "--format=%B", "-n", "1", commit)
}

// Parents returns the parent IDs of a commit
func (r *TestRepo) Parents(commit string) []string {
	r.t.Helper()

	return strings.Fields(r.Git("log", "--format=%P", "-n", "1", commit))
}

// Git executes a git command in the test repo and returns its trimmed output
func (r *TestRepo) Git(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("Git command failed: git %v, error: %v\n%s", args, err, output)
	}

	return strings.TrimSpace(string(output))
}
