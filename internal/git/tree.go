// ABOUTME: File reads from commit trees and construction of modified trees
// ABOUTME: Builds trees through a private temporary index, never the worktree's

package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	modeFile    = "100644"
	modeSymlink = "120000"
)

type treeEntry struct {
	mode string
	typ  string
	id   string
}

// lookup finds path in treeish. The bool is false when the path is absent.
func (r *Repository) lookup(ctx context.Context, treeish, path string) (treeEntry, bool, error) {
	out, err := r.GitOutput(ctx, "ls-tree", "-z", "--full-tree", treeish, "--", path)
	if err != nil {
		return treeEntry{}, false, fmt.Errorf("failed to list %s in %s: %w", path, ShortID(treeish), err)
	}
	for _, record := range strings.Split(out, "\x00") {
		meta, name, ok := strings.Cut(record, "\t")
		if !ok || name != path {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return treeEntry{}, false, fmt.Errorf("failed to parse output of 'git ls-tree': %q", record)
		}
		return treeEntry{mode: fields[0], typ: fields[1], id: fields[2]}, true, nil
	}
	return treeEntry{}, false, nil
}

// ReadFile returns the content of path at commit.
func (r *Repository) ReadFile(ctx context.Context, commit, path string) ([]byte, error) {
	entry, ok, err := r.lookup(ctx, commit, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s at %s", ErrPathNotFound, path, ShortID(commit))
	}
	if entry.typ != "blob" || entry.mode == modeSymlink {
		return nil, fmt.Errorf("%w: %s at %s (%s %s)", ErrNotRegularFile, path, ShortID(commit), entry.mode, entry.typ)
	}

	out, err := r.run(ctx, runOpts{}, "cat-file", "blob", entry.id)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s at %s: %w", path, ShortID(commit), err)
	}
	return out, nil
}

// WriteTree writes a tree equal to base with each path in changes replaced
// by the given content, and returns the tree ID. Replaced files keep their
// mode; new files are written as regular files.
func (r *Repository) WriteTree(ctx context.Context, base string, changes map[string][]byte) (string, error) {
	tmp, err := os.MkdirTemp("", "hunksplit-index-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary index: %w", err)
	}
	defer os.RemoveAll(tmp)
	env := []string{"GIT_INDEX_FILE=" + filepath.Join(tmp, "index")}

	if _, err := r.run(ctx, runOpts{env: env}, "read-tree", base); err != nil {
		return "", fmt.Errorf("failed to read tree %s: %w", ShortID(base), err)
	}

	paths := make([]string, 0, len(changes))
	for path := range changes {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		mode := modeFile
		entry, ok, err := r.lookup(ctx, base, path)
		if err != nil {
			return "", err
		}
		if ok {
			mode = entry.mode
		}

		blob, err := r.run(ctx, runOpts{stdin: changes[path]}, "hash-object", "-w", "--stdin")
		if err != nil {
			return "", fmt.Errorf("failed to write blob for %s: %w", path, err)
		}
		info := fmt.Sprintf("%s,%s,%s", mode, strings.TrimSpace(string(blob)), path)
		if _, err := r.run(ctx, runOpts{env: env}, "update-index", "--add", "--cacheinfo", info); err != nil {
			return "", fmt.Errorf("failed to stage %s: %w", path, err)
		}
	}

	out, err := r.run(ctx, runOpts{env: env}, "write-tree")
	if err != nil {
		return "", fmt.Errorf("failed to write tree: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
