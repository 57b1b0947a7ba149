// ABOUTME: Line partitioning of file content into selected and remaining lines
// ABOUTME: Select/Complement join with \n; Partition can keep original line endings

package hunk

import (
	"bytes"
	"fmt"
	"sort"
)

// EOLMode controls how Partition rejoins the lines it emits.
type EOLMode int

const (
	// PreserveEOL keeps each line's original terminator.
	PreserveEOL EOLMode = iota
	// NormalizeEOL drops terminators and joins lines with "\n".
	NormalizeEOL
)

// ParseEOLMode maps the configuration spelling of a mode to its value.
func ParseEOLMode(s string) (EOLMode, error) {
	switch s {
	case "", "preserve":
		return PreserveEOL, nil
	case "normalize":
		return NormalizeEOL, nil
	}
	return 0, fmt.Errorf("unknown line ending mode %q (want preserve or normalize)", s)
}

func (m EOLMode) String() string {
	if m == NormalizeEOL {
		return "normalize"
	}
	return "preserve"
}

// line is one line of content without and with its terminator.
type line struct {
	text []byte
	raw  []byte
}

// splitLines splits content on "\r\n", "\n" and "\r". A terminator at the
// very end does not start another line.
func splitLines(content []byte) []line {
	var lines []line
	start := 0
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			lines = append(lines, line{text: content[start:i], raw: content[start : i+1]})
			start = i + 1
		case '\r':
			end := i + 1
			if end < len(content) && content[end] == '\n' {
				end++
			}
			lines = append(lines, line{text: content[start:i], raw: content[start:end]})
			start = end
			i = end - 1
		}
	}
	if start < len(content) {
		lines = append(lines, line{text: content[start:], raw: content[start:]})
	}
	return lines
}

// CountLines returns the number of lines in content.
func CountLines(content []byte) int {
	return len(splitLines(content))
}

// matching returns the ranges for path ordered by start, ties keeping input order.
func matching(ranges []LineRange, path string) []LineRange {
	var out []LineRange
	for _, r := range ranges {
		if r.Path == path {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// span converts r to a half-open 0-indexed interval clamped to n lines.
func span(r LineRange, n int) (int, int) {
	start := min(max(r.Start-1, 0), n)
	end := min(r.End, n)
	return start, max(start, end)
}

func join(lines []line) []byte {
	texts := make([][]byte, len(lines))
	for i, l := range lines {
		texts[i] = l.text
	}
	return bytes.Join(texts, []byte("\n"))
}

// Select returns the lines of content covered by the ranges for path, in
// range order, joined with "\n". Lines covered by more than one range are
// emitted once per range.
func Select(content []byte, ranges []LineRange, path string) []byte {
	applicable := matching(ranges, path)
	if len(applicable) == 0 {
		return []byte{}
	}
	lines := splitLines(content)
	var selected []line
	for _, r := range applicable {
		start, end := span(r, len(lines))
		selected = append(selected, lines[start:end]...)
	}
	return join(selected)
}

// Complement returns the lines of content not covered by any range for
// path, joined with "\n". When no range names path, content is returned as is.
func Complement(content []byte, ranges []LineRange, path string) []byte {
	applicable := matching(ranges, path)
	if len(applicable) == 0 {
		return content
	}
	lines := splitLines(content)
	excluded := excludedLines(applicable, len(lines))
	var kept []line
	for i, l := range lines {
		if !excluded[i] {
			kept = append(kept, l)
		}
	}
	return join(kept)
}

func excludedLines(ranges []LineRange, n int) []bool {
	excluded := make([]bool, n)
	for _, r := range ranges {
		start, end := span(r, n)
		for i := start; i < end; i++ {
			excluded[i] = true
		}
	}
	return excluded
}

// PartitionResult holds the two halves of one file's content.
type PartitionResult struct {
	Selected  []byte
	Remainder []byte
	// SelectedLines and RemainderLines are sorted 0-indexed line numbers;
	// together they cover every line exactly once.
	SelectedLines  []int
	RemainderLines []int
}

// Partition splits content into the lines covered by any range for path and
// the rest, each in original order. Unlike Select, a line covered by
// overlapping ranges is selected once.
func Partition(content []byte, ranges []LineRange, path string, mode EOLMode) PartitionResult {
	applicable := matching(ranges, path)
	if len(applicable) == 0 {
		res := PartitionResult{Selected: []byte{}, Remainder: content}
		for i := range CountLines(content) {
			res.RemainderLines = append(res.RemainderLines, i)
		}
		return res
	}

	lines := splitLines(content)
	excluded := excludedLines(applicable, len(lines))
	var selected, remainder []line
	var res PartitionResult
	for i, l := range lines {
		if excluded[i] {
			selected = append(selected, l)
			res.SelectedLines = append(res.SelectedLines, i)
		} else {
			remainder = append(remainder, l)
			res.RemainderLines = append(res.RemainderLines, i)
		}
	}

	if mode == NormalizeEOL {
		res.Selected, res.Remainder = join(selected), join(remainder)
		return res
	}
	res.Selected, res.Remainder = concat(selected), concat(remainder)
	return res
}

func concat(lines []line) []byte {
	var buf bytes.Buffer
	for _, l := range lines {
		buf.Write(l.raw)
	}
	if buf.Len() == 0 {
		return []byte{}
	}
	return buf.Bytes()
}
