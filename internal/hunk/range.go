// ABOUTME: Parsing and validation of path:start-end line range arguments
// ABOUTME: Produces LineRange values consumed by the partitioner and splitter

// Package hunk selects and partitions lines of file content by line range.
package hunk

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
)

var (
	// ErrInvalidFormat is returned when a range is not of the form path:start-end.
	ErrInvalidFormat = errors.New("invalid range format")
	// ErrNotANumber is returned when a line number is not a non-negative integer.
	ErrNotANumber = errors.New("not a non-negative integer")
	// ErrZeroLine is returned when either line number is zero.
	ErrZeroLine = errors.New("line numbers must be >= 1")
	// ErrInvertedRange is returned when start is greater than end.
	ErrInvertedRange = errors.New("start line must be <= end line")
)

// LineRange selects lines Start through End (1-indexed, inclusive) of Path.
type LineRange struct {
	Path  string
	Start int
	End   int
}

// String renders the range in the same form Parse accepts.
func (r LineRange) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Path, r.Start, r.End)
}

// Parse parses a path:start-end string. The path is everything before the
// last colon, so paths that contain colons are accepted.
func Parse(s string) (LineRange, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return LineRange{}, fmt.Errorf("%w: expected path:start-end, got %q", ErrInvalidFormat, s)
	}
	path, spec := s[:idx], s[idx+1:]
	if path == "" {
		return LineRange{}, fmt.Errorf("%w: expected path:start-end, got %q (empty path)", ErrInvalidFormat, s)
	}

	bounds := strings.Split(spec, "-")
	if len(bounds) != 2 {
		return LineRange{}, fmt.Errorf("%w: expected start-end, got %q", ErrInvalidFormat, spec)
	}

	start, err := parseLine(bounds[0])
	if err != nil {
		return LineRange{}, fmt.Errorf("failed to parse start line number in %q: %w", s, err)
	}
	end, err := parseLine(bounds[1])
	if err != nil {
		return LineRange{}, fmt.Errorf("failed to parse end line number in %q: %w", s, err)
	}

	if start < 1 || end < 1 {
		return LineRange{}, fmt.Errorf("%w, got %q", ErrZeroLine, s)
	}
	if start > end {
		return LineRange{}, fmt.Errorf("%w, got %q", ErrInvertedRange, s)
	}

	return LineRange{Path: path, Start: start, End: end}, nil
}

// parseLine accepts decimal digits with an optional single leading '+'.
func parseLine(tok string) (int, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(tok, "+"), 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrNotANumber, tok)
	}
	return int(n), nil
}

// ParseAll parses every argument and reports all invalid ones together.
// No ranges are returned unless every argument is valid.
func ParseAll(args []string) ([]LineRange, error) {
	var errs *multierror.Error
	ranges := make([]LineRange, 0, len(args))
	for _, arg := range args {
		r, err := Parse(arg)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		ranges = append(ranges, r)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return ranges, nil
}

// Paths returns the distinct paths referenced by ranges in first-seen order.
func Paths(ranges []LineRange) []string {
	seen := make(map[string]bool, len(ranges))
	var paths []string
	for _, r := range ranges {
		if seen[r.Path] {
			continue
		}
		seen[r.Path] = true
		paths = append(paths, r.Path)
	}
	return paths
}
