// ABOUTME: Re-parents the descendants of a split commit onto its replacement
// ABOUTME: Trees are reused unchanged since the replacement has the original tree

package split

import (
	"context"
	"fmt"

	"github.com/obra/hunksplit/internal/git"
)

// descendantsOf filters candidates, which must be ordered parents first, to
// the commits that have root as an ancestor.
func descendantsOf(root string, candidates []git.Commit) []git.Commit {
	reached := map[string]bool{root: true}
	var out []git.Commit
	for _, c := range candidates {
		for _, p := range c.Parents {
			if reached[p] {
				reached[c.ID] = true
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// reparent recreates each descendant with every rewritten parent replaced,
// keeping its tree, author and message. The returned map includes
// original -> replacement.
func (s *Splitter) reparent(ctx context.Context, original, replacement string, descendants []git.Commit) (map[string]string, error) {
	rewritten := map[string]string{original: replacement}
	for _, c := range descendants {
		parents := make([]string, len(c.Parents))
		for i, p := range c.Parents {
			if np, ok := rewritten[p]; ok {
				parents[i] = np
			} else {
				parents[i] = p
			}
		}
		id, err := s.repo.CommitTree(ctx, git.CommitSpec{
			Tree:    c.Tree,
			Parents: parents,
			Author:  c.Author,
			Message: c.Message,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to re-parent %s: %w", c.Short(), err)
		}
		s.printDebug("Re-parented %s as %s\n", c.Short(), git.ShortID(id))
		rewritten[c.ID] = id
	}
	return rewritten, nil
}
