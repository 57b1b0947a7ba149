// ABOUTME: Branch listing and atomic multi-ref updates
// ABOUTME: RefTransaction applies every update in one git update-ref --stdin run

package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Ref is a branch (or a detached HEAD) and the commit it points at.
type Ref struct {
	Name   string
	Target string
}

// Refs lists every branch, plus HEAD when it is detached.
func (r *Repository) Refs(ctx context.Context) ([]Ref, error) {
	out, err := r.GitOutput(ctx, "for-each-ref", "--format=%(objectname) %(refname)", "refs/heads")
	if err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	var refs []Ref
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		target, name, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		refs = append(refs, Ref{Name: name, Target: target})
	}

	detached, err := r.headDetached(ctx)
	if err != nil {
		return nil, err
	}
	if detached {
		head, err := r.GitOutput(ctx, "rev-parse", "--verify", "--quiet", "HEAD")
		if err == nil {
			refs = append(refs, Ref{Name: "HEAD", Target: strings.TrimSpace(head)})
		}
	}
	return refs, nil
}

func (r *Repository) headDetached(ctx context.Context) (bool, error) {
	err := r.RunGit(ctx, "symbolic-ref", "-q", "HEAD")
	if err == nil {
		return false, nil
	}
	if exitCode(err) == 1 {
		return true, nil
	}
	return false, fmt.Errorf("failed to read HEAD: %w", err)
}

// RefUpdate moves Name from Old to New.
type RefUpdate struct {
	Name string
	Old  string
	New  string
}

// ErrTransactionClosed is returned when a finished transaction is reused.
var ErrTransactionClosed = errors.New("ref transaction already closed")

// RefTransaction buffers ref updates and applies them all or none. Each
// update verifies the ref still holds its old value, so a concurrent change
// to any ref fails the whole transaction.
type RefTransaction struct {
	repo    *Repository
	reason  string
	updates []RefUpdate
	closed  bool
}

// Begin starts a ref transaction; reason is recorded in the reflog.
func (r *Repository) Begin(reason string) *RefTransaction {
	return &RefTransaction{repo: r, reason: reason}
}

// Update queues moving name from oldID to newID.
func (t *RefTransaction) Update(name, newID, oldID string) {
	t.updates = append(t.updates, RefUpdate{Name: name, Old: oldID, New: newID})
}

// Commit applies every queued update atomically.
func (t *RefTransaction) Commit(ctx context.Context) error {
	if t.closed {
		return ErrTransactionClosed
	}
	t.closed = true
	if len(t.updates) == 0 {
		return nil
	}

	var stdin strings.Builder
	for _, u := range t.updates {
		if u.Name == "HEAD" {
			stdin.WriteString("option no-deref\n")
		}
		fmt.Fprintf(&stdin, "update %s %s %s\n", u.Name, u.New, u.Old)
	}
	args := []string{"update-ref", "-m", t.reason, "--stdin"}
	if _, err := t.repo.run(ctx, runOpts{stdin: []byte(stdin.String())}, args...); err != nil {
		return fmt.Errorf("failed to update refs: %w", err)
	}
	return nil
}

// Abort discards the queued updates. It is a no-op after Commit.
func (t *RefTransaction) Abort() {
	if t.closed {
		return
	}
	t.closed = true
	t.updates = nil
}
