// ABOUTME: Splits one commit into a remainder commit and a selected-lines commit
// ABOUTME: Plans the split, writes both commits, re-parents descendants and moves refs atomically

// Package split rewrites a commit into two along explicit line ranges.
package split

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/obra/hunksplit/internal/config"
	"github.com/obra/hunksplit/internal/git"
	"github.com/obra/hunksplit/internal/hunk"
)

var (
	// ErrCommitNotFound is returned when the revision to split does not exist.
	ErrCommitNotFound = git.ErrCommitNotFound
	// ErrFileNotFound is returned when a range names a path absent from the commit.
	ErrFileNotFound = git.ErrPathNotFound
	// ErrBinaryFile is returned when a range names a file that is not text.
	ErrBinaryFile = errors.New("binary files cannot be split")
	// ErrExcludedPath is returned when a range names a path excluded by configuration.
	ErrExcludedPath = errors.New("path is excluded by configuration")
	// ErrNothingSelected is returned when the ranges cover no line of any file.
	ErrNothingSelected = errors.New("ranges select no lines")
	// ErrTreeMismatch is returned when the selected commit would not reproduce
	// the original commit's tree.
	ErrTreeMismatch = errors.New("selected tree does not match the original tree")
)

// binarySniffLen is how much of a file is searched for NUL bytes, as git does.
const binarySniffLen = 8000

// Transaction groups ref updates so they are applied together or not at all.
type Transaction interface {
	Update(name, newID, oldID string)
	Commit(ctx context.Context) error
	Abort()
}

// Repository is the version control store a Splitter rewrites.
type Repository interface {
	ResolveCommit(ctx context.Context, rev string) (git.Commit, error)
	ReadFile(ctx context.Context, commit, path string) ([]byte, error)
	ChangedHunks(ctx context.Context, commit git.Commit, paths []string) (map[string][]git.Span, error)
	WriteTree(ctx context.Context, base string, changes map[string][]byte) (string, error)
	CommitTree(ctx context.Context, spec git.CommitSpec) (string, error)
	Refs(ctx context.Context) ([]git.Ref, error)
	Descendants(ctx context.Context, commit string, tips []string) ([]git.Commit, error)
	Begin(reason string) Transaction
}

type gitRepository struct {
	*git.Repository
}

func (r gitRepository) Begin(reason string) Transaction {
	return r.Repository.Begin(reason)
}

// FromGit adapts a git repository for use by a Splitter.
func FromGit(repo *git.Repository) Repository {
	return gitRepository{repo}
}

// Splitter plans and performs commit splits
type Splitter struct {
	repo     Repository
	config   *config.Config
	debug    bool
	debugOut io.Writer
}

// NewSplitter creates a new splitter. A nil cfg uses config.Default().
func NewSplitter(repo Repository, cfg *config.Config) *Splitter {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Splitter{
		repo:     repo,
		config:   cfg,
		debug:    cfg.Debug,
		debugOut: os.Stderr,
	}
}

// SetDebug enables detailed debug output
func (s *Splitter) SetDebug(debug bool) {
	s.debug = debug
}

// SetDebugOutput redirects debug output, which goes to stderr by default.
func (s *Splitter) SetDebugOutput(w io.Writer) {
	s.debugOut = w
}

func (s *Splitter) printDebug(format string, args ...interface{}) {
	if s.debug {
		fmt.Fprintf(s.debugOut, "DEBUG: "+format, args...)
	}
}

// FilePlan is the partition of one file named by the ranges.
type FilePlan struct {
	Path      string
	Ranges    []hunk.LineRange
	Original  []byte
	Partition hunk.PartitionResult
	// Changed lists the lines the commit added or modified in this file.
	Changed []git.Span
}

// Plan describes a split without performing it.
type Plan struct {
	Commit           git.Commit
	Files            []FilePlan
	RemainderMessage string
	SelectedMessage  string
	// Descendants are the commits that will be re-parented, parents first.
	Descendants []git.Commit
	// Refs are the refs that point at the commit or one of its descendants.
	Refs     []git.Ref
	Warnings []string
}

// Plan resolves rev, reads and partitions every file named by ranges, and
// works out which descendants and refs a split would rewrite. It writes nothing.
func (s *Splitter) Plan(ctx context.Context, rev string, ranges []hunk.LineRange, message string) (*Plan, error) {
	commit, err := s.repo.ResolveCommit(ctx, rev)
	if err != nil {
		return nil, err
	}
	s.printDebug("Resolved %s to %s %q\n", rev, commit.ID, commit.Subject())

	paths := hunk.Paths(ranges)
	sort.Strings(paths)
	for _, path := range paths {
		if s.config.Excluded(path) {
			return nil, fmt.Errorf("%w: %s", ErrExcludedPath, path)
		}
	}

	plan := &Plan{Commit: commit}
	mode := s.config.EOLMode()
	selectedAny := false
	for _, path := range paths {
		content, err := s.repo.ReadFile(ctx, commit.ID, path)
		if err != nil {
			return nil, err
		}
		if bytes.IndexByte(content[:min(len(content), binarySniffLen)], 0) >= 0 {
			return nil, fmt.Errorf("%w: %s", ErrBinaryFile, path)
		}

		fp := FilePlan{
			Path:      path,
			Ranges:    rangesFor(ranges, path),
			Original:  content,
			Partition: hunk.Partition(content, ranges, path, mode),
		}
		if len(fp.Partition.SelectedLines) > 0 {
			selectedAny = true
		}
		s.printDebug("%s: %d selected, %d remaining lines\n", path, len(fp.Partition.SelectedLines), len(fp.Partition.RemainderLines))
		plan.Files = append(plan.Files, fp)
	}
	if !selectedAny {
		return nil, fmt.Errorf("%w in %s", ErrNothingSelected, commit.Short())
	}

	changed, err := s.repo.ChangedHunks(ctx, commit, paths)
	if err != nil {
		return nil, err
	}
	for i := range plan.Files {
		fp := &plan.Files[i]
		fp.Changed = changed[fp.Path]
		plan.Warnings = append(plan.Warnings, rangeWarnings(*fp, commit)...)
	}

	plan.RemainderMessage, plan.SelectedMessage = GenerateSplitMessages(
		commit.Message, message, s.config.RemainderPrefix, s.config.SelectedPrefix)

	refs, err := s.repo.Refs(ctx)
	if err != nil {
		return nil, err
	}
	tips := make([]string, 0, len(refs))
	for _, ref := range refs {
		tips = append(tips, ref.Target)
	}
	candidates, err := s.repo.Descendants(ctx, commit.ID, tips)
	if err != nil {
		return nil, err
	}
	plan.Descendants = descendantsOf(commit.ID, candidates)

	affected := map[string]bool{commit.ID: true}
	for _, d := range plan.Descendants {
		affected[d.ID] = true
	}
	for _, ref := range refs {
		if affected[ref.Target] {
			plan.Refs = append(plan.Refs, ref)
		}
	}
	s.printDebug("%d descendants to re-parent, %d refs to move\n", len(plan.Descendants), len(plan.Refs))

	return plan, nil
}

func rangesFor(ranges []hunk.LineRange, path string) []hunk.LineRange {
	var out []hunk.LineRange
	for _, r := range ranges {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// rangeWarnings flags ranges that are clamped away entirely or that touch no
// line the commit changed.
func rangeWarnings(fp FilePlan, commit git.Commit) []string {
	var warnings []string
	lines := hunk.CountLines(fp.Original)
	for _, r := range fp.Ranges {
		if r.Start > lines {
			warnings = append(warnings, fmt.Sprintf("range %s starts past the end of %s (%d lines)", r, fp.Path, lines))
			continue
		}
		touches := false
		for _, span := range fp.Changed {
			if span.Overlaps(r.Start, r.End) {
				touches = true
				break
			}
		}
		if !touches {
			warnings = append(warnings, fmt.Sprintf("range %s selects no lines changed by %s", r, commit.Short()))
		}
	}
	return warnings
}

// Result describes a completed split.
type Result struct {
	Original  git.Commit
	Remainder string
	Selected  string
	// Rewritten maps each re-parented descendant to its replacement.
	Rewritten map[string]string
	Refs      []git.RefUpdate
}

// Split splits the commit named by rev into a remainder commit, holding
// everything except the selected lines, and a selected commit on top of it
// that restores them. Descendants are re-parented onto the selected commit
// and refs are moved in a single transaction; on any failure no ref changes.
func (s *Splitter) Split(ctx context.Context, rev string, ranges []hunk.LineRange, message string) (*Result, error) {
	plan, err := s.Plan(ctx, rev, ranges, message)
	if err != nil {
		return nil, err
	}
	return s.Apply(ctx, plan)
}

// Apply performs a split previously computed by Plan.
func (s *Splitter) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	commit := plan.Commit
	tx := s.repo.Begin("hunksplit: split " + commit.Short())
	committed := false
	defer func() {
		if !committed {
			tx.Abort()
			s.printDebug("Aborted ref transaction for %s\n", commit.Short())
		}
	}()

	remainders := make(map[string][]byte, len(plan.Files))
	originals := make(map[string][]byte, len(plan.Files))
	for _, fp := range plan.Files {
		remainders[fp.Path] = fp.Partition.Remainder
		originals[fp.Path] = fp.Original
	}

	remainderTree, err := s.repo.WriteTree(ctx, commit.Tree, remainders)
	if err != nil {
		return nil, err
	}
	selectedTree, err := s.repo.WriteTree(ctx, remainderTree, originals)
	if err != nil {
		return nil, err
	}
	if selectedTree != commit.Tree {
		return nil, fmt.Errorf("%w: %s != %s", ErrTreeMismatch, git.ShortID(selectedTree), git.ShortID(commit.Tree))
	}

	remainder, err := s.repo.CommitTree(ctx, git.CommitSpec{
		Tree:    remainderTree,
		Parents: commit.Parents,
		Author:  commit.Author,
		Message: plan.RemainderMessage,
	})
	if err != nil {
		return nil, err
	}
	s.printDebug("Created remainder commit %s (tree %s)\n", remainder, remainderTree)

	selected, err := s.repo.CommitTree(ctx, git.CommitSpec{
		Tree:    selectedTree,
		Parents: []string{remainder},
		Author:  commit.Author,
		Message: plan.SelectedMessage,
	})
	if err != nil {
		return nil, err
	}
	s.printDebug("Created selected commit %s (tree %s)\n", selected, selectedTree)

	rewritten, err := s.reparent(ctx, commit.ID, selected, plan.Descendants)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Original:  commit,
		Remainder: remainder,
		Selected:  selected,
		Rewritten: make(map[string]string, len(plan.Descendants)),
	}
	for _, d := range plan.Descendants {
		result.Rewritten[d.ID] = rewritten[d.ID]
	}
	for _, ref := range plan.Refs {
		update := git.RefUpdate{Name: ref.Name, Old: ref.Target, New: rewritten[ref.Target]}
		tx.Update(update.Name, update.New, update.Old)
		result.Refs = append(result.Refs, update)
		s.printDebug("Moving %s from %s to %s\n", update.Name, git.ShortID(update.Old), git.ShortID(update.New))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true
	return result, nil
}
