// ABOUTME: Git operations and utilities for repository manipulation
// ABOUTME: Provides safe wrappers around git commands with proper error handling

// Package git provides git repository operations and utilities.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var (
	// ErrCommitNotFound is returned when a revision does not name a commit.
	ErrCommitNotFound = errors.New("commit not found")
	// ErrPathNotFound is returned when a path is absent from a commit's tree.
	ErrPathNotFound = errors.New("file not found in commit")
	// ErrNotRegularFile is returned for symlinks, submodules and directories.
	ErrNotRegularFile = errors.New("not a regular file")
)

// Repository represents a git repository
type Repository struct {
	Dir string
}

// NewRepository creates a new repository instance
func NewRepository(dir string) *Repository {
	return &Repository{Dir: dir}
}

// Open returns the repository containing dir, rooted at its top level.
func Open(ctx context.Context, dir string) (*Repository, error) {
	out, err := NewRepository(dir).GitOutput(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}
	return NewRepository(strings.TrimSpace(out)), nil
}

// CommandError is returned when a git command exits unsuccessfully.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// exitCode returns the exit status carried by err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

type runOpts struct {
	stdin []byte
	env   []string
}

func (r *Repository) run(ctx context.Context, opts runOpts, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	if len(opts.env) > 0 {
		cmd.Env = append(os.Environ(), opts.env...)
	}
	if opts.stdin != nil {
		cmd.Stdin = bytes.NewReader(opts.stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Args:   args,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// RunGit executes a git command in the repository
func (r *Repository) RunGit(ctx context.Context, args ...string) error {
	_, err := r.run(ctx, runOpts{}, args...)
	return err
}

// GitOutput executes a git command and returns its output
func (r *Repository) GitOutput(ctx context.Context, args ...string) (string, error) {
	output, err := r.run(ctx, runOpts{}, args...)
	if err != nil {
		return "", err
	}
	return string(output), nil
}
