// ABOUTME: Reading and writing commit objects
// ABOUTME: Resolves revisions, lists descendants and creates commits with explicit parents

package git

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Signature identifies an author or committer. Date is in git's raw format,
// "<unix seconds> <timezone offset>".
type Signature struct {
	Name  string
	Email string
	Date  string
}

// Commit is a commit object's metadata.
type Commit struct {
	ID      string
	Tree    string
	Parents []string
	Author  Signature
	Message string
}

// Short returns the abbreviated commit ID.
func (c Commit) Short() string {
	return ShortID(c.ID)
}

// ShortID abbreviates a commit ID to seven characters.
func ShortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return subject
}

// CommitSpec describes a commit to write.
type CommitSpec struct {
	Tree    string
	Parents []string
	Author  Signature
	Message string
}

const (
	fieldSep  = "\x1f"
	logFormat = "%H%x1f%T%x1f%P%x1f%an%x1f%ae%x1f%ad%x1f%B"
)

var jjParentRev = regexp.MustCompile(`^@(-*)$`)

// normalizeRevision accepts "@" for HEAD and "@-", "@--", ... for its ancestors.
func normalizeRevision(rev string) string {
	m := jjParentRev.FindStringSubmatch(rev)
	if m == nil {
		return rev
	}
	if len(m[1]) == 0 {
		return "HEAD"
	}
	return "HEAD~" + strconv.Itoa(len(m[1]))
}

// ResolveCommit resolves rev to a commit and reads its metadata.
func (r *Repository) ResolveCommit(ctx context.Context, rev string) (Commit, error) {
	if rev == "" || strings.HasPrefix(rev, "-") {
		return Commit{}, fmt.Errorf("%w: %q", ErrCommitNotFound, rev)
	}
	out, err := r.GitOutput(ctx, "rev-parse", "--verify", "--quiet", normalizeRevision(rev)+"^{commit}")
	if err != nil {
		return Commit{}, fmt.Errorf("%w: %s", ErrCommitNotFound, rev)
	}
	id := strings.TrimSpace(out)

	commits, err := r.log(ctx, "-1", id)
	if err != nil {
		return Commit{}, err
	}
	if len(commits) != 1 {
		return Commit{}, fmt.Errorf("%w: %s", ErrCommitNotFound, rev)
	}
	return commits[0], nil
}

// Descendants returns the commits reachable from tips but not from commit,
// parents before children. Not every returned commit necessarily descends
// from commit; callers check parent links.
func (r *Repository) Descendants(ctx context.Context, commit string, tips []string) ([]Commit, error) {
	if len(tips) == 0 {
		return nil, nil
	}
	args := []string{"--topo-order", "--reverse"}
	args = append(args, tips...)
	args = append(args, "^"+commit, "--")
	commits, err := r.log(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list descendants of %s: %w", ShortID(commit), err)
	}
	return commits, nil
}

func (r *Repository) log(ctx context.Context, args ...string) ([]Commit, error) {
	full := append([]string{"log", "-z", "--no-show-signature", "--date=raw", "--format=" + logFormat}, args...)
	out, err := r.GitOutput(ctx, full...)
	if err != nil {
		return nil, err
	}
	return parseLog(out)
}

func parseLog(out string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(out, "\x00") {
		record = strings.TrimPrefix(record, "\n")
		if record == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 7)
		if len(fields) != 7 {
			return nil, fmt.Errorf("failed to parse output of 'git log': %q", record)
		}
		commits = append(commits, Commit{
			ID:      fields[0],
			Tree:    fields[1],
			Parents: strings.Fields(fields[2]),
			Author:  Signature{Name: fields[3], Email: fields[4], Date: fields[5]},
			Message: strings.TrimRight(fields[6], "\n"),
		})
	}
	return commits, nil
}

// CommitTree writes a commit object and returns its ID. The author is taken
// from spec when set; the committer is the current user.
func (r *Repository) CommitTree(ctx context.Context, spec CommitSpec) (string, error) {
	args := []string{"commit-tree", spec.Tree}
	for _, p := range spec.Parents {
		args = append(args, "-p", p)
	}
	args = append(args, "-F", "-")

	var env []string
	if spec.Author.Name != "" {
		env = append(env,
			"GIT_AUTHOR_NAME="+spec.Author.Name,
			"GIT_AUTHOR_EMAIL="+spec.Author.Email,
			"GIT_AUTHOR_DATE=@"+spec.Author.Date,
		)
	}

	msg := spec.Message
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	out, err := r.run(ctx, runOpts{stdin: []byte(msg), env: env}, args...)
	if err != nil {
		return "", fmt.Errorf("failed to create commit: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
