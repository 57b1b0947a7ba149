// ABOUTME: In-memory Repository and Transaction used by split tests
// ABOUTME: Content-addressed trees plus injectable commit and ref update failures

package split

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"sort"

	"github.com/obra/hunksplit/internal/git"
)

// fakeRepo is an in-memory Repository whose tree IDs are derived from content,
// so identical trees compare equal just as they do in git.
type fakeRepo struct {
	commits     map[string]git.Commit
	trees       map[string]map[string][]byte
	changed     map[string][]git.Span
	refs        []git.Ref
	descendants []git.Commit

	created     []git.CommitSpec
	failCommit  int // fail the nth CommitTree call (1-based); 0 never fails
	txCommitErr error
	tx          *fakeTx
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		commits: make(map[string]git.Commit),
		trees:   make(map[string]map[string][]byte),
		changed: make(map[string][]git.Span),
	}
}

func (f *fakeRepo) addTree(files map[string]string) string {
	tree := make(map[string][]byte, len(files))
	for path, content := range files {
		tree[path] = []byte(content)
	}
	return f.storeTree(tree)
}

func (f *fakeRepo) storeTree(tree map[string][]byte) string {
	paths := make([]string, 0, len(tree))
	for path := range tree {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	h := sha1.New()
	for _, path := range paths {
		fmt.Fprintf(h, "%s\x00%d\x00%s", path, len(tree[path]), tree[path])
	}
	id := fmt.Sprintf("tree%x", h.Sum(nil))
	f.trees[id] = tree
	return id
}

func (f *fakeRepo) addCommit(c git.Commit) git.Commit {
	f.commits[c.ID] = c
	return c
}

func (f *fakeRepo) ResolveCommit(_ context.Context, rev string) (git.Commit, error) {
	c, ok := f.commits[rev]
	if !ok {
		return git.Commit{}, fmt.Errorf("%w: %s", git.ErrCommitNotFound, rev)
	}
	return c, nil
}

func (f *fakeRepo) ReadFile(_ context.Context, commit, path string) ([]byte, error) {
	content, ok := f.trees[f.commits[commit].Tree][path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", git.ErrPathNotFound, path)
	}
	return content, nil
}

func (f *fakeRepo) ChangedHunks(_ context.Context, _ git.Commit, _ []string) (map[string][]git.Span, error) {
	return f.changed, nil
}

func (f *fakeRepo) WriteTree(_ context.Context, base string, changes map[string][]byte) (string, error) {
	src, ok := f.trees[base]
	if !ok {
		return "", errors.New("no such tree " + base)
	}
	tree := make(map[string][]byte, len(src))
	for path, content := range src {
		tree[path] = content
	}
	for path, content := range changes {
		tree[path] = content
	}
	return f.storeTree(tree), nil
}

func (f *fakeRepo) CommitTree(_ context.Context, spec git.CommitSpec) (string, error) {
	f.created = append(f.created, spec)
	if f.failCommit == len(f.created) {
		return "", errors.New("object store is read-only")
	}
	id := fmt.Sprintf("new%d", len(f.created))
	f.commits[id] = git.Commit{ID: id, Tree: spec.Tree, Parents: spec.Parents, Author: spec.Author, Message: spec.Message}
	return id, nil
}

func (f *fakeRepo) Refs(_ context.Context) ([]git.Ref, error) {
	return f.refs, nil
}

func (f *fakeRepo) Descendants(_ context.Context, _ string, _ []string) ([]git.Commit, error) {
	return f.descendants, nil
}

func (f *fakeRepo) Begin(reason string) Transaction {
	f.tx = &fakeTx{reason: reason, err: f.txCommitErr}
	return f.tx
}

type fakeTx struct {
	reason    string
	err       error
	updates   []git.RefUpdate
	committed bool
	aborted   bool
}

func (t *fakeTx) Update(name, newID, oldID string) {
	t.updates = append(t.updates, git.RefUpdate{Name: name, Old: oldID, New: newID})
}

func (t *fakeTx) Commit(_ context.Context) error {
	if t.err != nil {
		return t.err
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Abort() {
	if !t.committed {
		t.aborted = true
	}
}
