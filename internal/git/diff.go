// ABOUTME: Lists the lines a commit changed in each file
// ABOUTME: Parses zero-context git diffs with sourcegraph/go-diff

package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Span is a 1-indexed inclusive run of lines on the new side of a diff.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	if s.Start == s.End {
		return fmt.Sprintf("%d", s.Start)
	}
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Overlaps reports whether s shares a line with start..end.
func (s Span) Overlaps(start, end int) bool {
	return s.Start <= end && start <= s.End
}

// ChangedHunks returns, per path, the new-side spans the commit added or
// modified relative to its first parent. Pure deletions have no new-side
// lines and are omitted.
func (r *Repository) ChangedHunks(ctx context.Context, commit Commit, paths []string) (map[string][]Span, error) {
	args := []string{"-c", "core.quotepath=false"}
	if len(commit.Parents) > 0 {
		args = append(args, "diff", "-U0", "--no-color", "--no-ext-diff", "--no-renames", commit.Parents[0], commit.ID)
	} else {
		args = append(args, "diff-tree", "-p", "-r", "-U0", "--no-color", "--no-ext-diff", "--no-commit-id", "--root", commit.ID)
	}
	// Header names are matched below, so user prefix settings must not apply.
	args = append(args, "--src-prefix=a/", "--dst-prefix=b/")
	args = append(args, "--")
	args = append(args, paths...)

	out, err := r.run(ctx, runOpts{}, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", commit.Short(), err)
	}
	return parseHunks(out)
}

func parseHunks(out []byte) (map[string][]Span, error) {
	spans := make(map[string][]Span)
	if len(bytes.TrimSpace(out)) == 0 {
		return spans, nil
	}
	fileDiffs, err := diff.ParseMultiFileDiff(out)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}
	for _, d := range fileDiffs {
		if d.NewName == "/dev/null" {
			continue
		}
		name := strings.TrimPrefix(d.NewName, "b/")
		for _, h := range d.Hunks {
			if h.NewLines == 0 {
				continue
			}
			spans[name] = append(spans[name], Span{
				Start: int(h.NewStartLine),
				End:   int(h.NewStartLine + h.NewLines - 1),
			})
		}
	}
	return spans, nil
}
