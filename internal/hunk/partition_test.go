// ABOUTME: Tests for Select, Complement and Partition
// ABOUTME: Exercises clamping, overlap handling and line ending behaviour

package hunk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ranges(path string, spans ...[2]int) []LineRange {
	var out []LineRange
	for _, s := range spans {
		out = append(out, LineRange{Path: path, Start: s[0], End: s[1]})
	}
	return out
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ranges  []LineRange
		want    string
	}{
		{
			name:    "simple",
			content: "line 1\nline 2\nline 3\nline 4\nline 5",
			ranges:  ranges("t", [2]int{2, 4}),
			want:    "line 2\nline 3\nline 4",
		},
		{
			name:    "multiple ranges",
			content: "line 1\nline 2\nline 3\nline 4\nline 5\nline 6",
			ranges:  ranges("t", [2]int{1, 2}, [2]int{5, 6}),
			want:    "line 1\nline 2\nline 5\nline 6",
		},
		{
			name:    "ranges given out of order",
			content: "line 1\nline 2\nline 3\nline 4\nline 5\nline 6",
			ranges:  ranges("t", [2]int{5, 6}, [2]int{1, 2}),
			want:    "line 1\nline 2\nline 5\nline 6",
		},
		{
			name:    "clamped to file length",
			content: "line 1\nline 2\nline 3",
			ranges:  ranges("t", [2]int{2, 10}),
			want:    "line 2\nline 3",
		},
		{
			name:    "entirely past end",
			content: "line 1\nline 2",
			ranges:  ranges("t", [2]int{5, 9}),
			want:    "",
		},
		{
			name:    "overlap emits twice",
			content: "line 1\nline 2\nline 3",
			ranges:  ranges("t", [2]int{1, 2}, [2]int{2, 3}),
			want:    "line 1\nline 2\nline 2\nline 3",
		},
		{
			name:    "crlf terminators dropped",
			content: "line 1\r\nline 2\r\nline 3\r\n",
			ranges:  ranges("t", [2]int{1, 2}),
			want:    "line 1\nline 2",
		},
		{
			name:    "other path ignored",
			content: "line 1\nline 2\nline 3",
			ranges:  ranges("other.txt", [2]int{1, 2}),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select([]byte(tt.content), tt.ranges, "t")
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestComplement(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ranges  []LineRange
		want    string
	}{
		{
			name:    "simple",
			content: "line 1\nline 2\nline 3\nline 4\nline 5",
			ranges:  ranges("t", [2]int{2, 4}),
			want:    "line 1\nline 5",
		},
		{
			name:    "multiple ranges",
			content: "line 1\nline 2\nline 3\nline 4\nline 5\nline 6",
			ranges:  ranges("t", [2]int{2, 3}, [2]int{5, 5}),
			want:    "line 1\nline 4\nline 6",
		},
		{
			name:    "overlap collapses",
			content: "line 1\nline 2\nline 3\nline 4",
			ranges:  ranges("t", [2]int{1, 2}, [2]int{2, 3}),
			want:    "line 4",
		},
		{
			name:    "whole file",
			content: "line 1\nline 2\nline 3",
			ranges:  ranges("t", [2]int{1, 3}),
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Complement([]byte(tt.content), tt.ranges, "t")
			if string(got) != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestComplement_NoMatchingPathIsPassthrough(t *testing.T) {
	content := []byte("line 1\r\nline 2\n\nline 3\n")
	got := Complement(content, ranges("other.txt", [2]int{1, 2}), "test.txt")
	if !bytes.Equal(got, content) {
		t.Errorf("Expected original bytes %q, got %q", content, got)
	}
}

func TestSelectAndComplement_PartitionLines(t *testing.T) {
	content := []byte("a\nb\nc\nd\ne\nf\ng")
	rs := ranges("t", [2]int{2, 3}, [2]int{6, 6})

	selected := strings.Split(string(Select(content, rs, "t")), "\n")
	remaining := strings.Split(string(Complement(content, rs, "t")), "\n")

	if len(selected)+len(remaining) != 7 {
		t.Fatalf("Expected 7 lines in total, got %d selected and %d remaining", len(selected), len(remaining))
	}
	for _, l := range selected {
		for _, r := range remaining {
			if l == r {
				t.Errorf("Line %q appears in both halves", l)
			}
		}
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		content string
		want    []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a\n"}},
		{"a\n\n", []string{"a\n", "\n"}},
		{"a\r\nb\rc\nd", []string{"a\r\n", "b\r", "c\n", "d"}},
	}
	for _, tt := range tests {
		var got []string
		for _, l := range splitLines([]byte(tt.content)) {
			got = append(got, string(l.raw))
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("splitLines(%q) mismatch (-want +got):\n%s", tt.content, diff)
		}
	}
}

// interleave rebuilds content from a preserve-mode partition.
func interleave(t *testing.T, content []byte, res PartitionResult) []byte {
	t.Helper()
	selected := splitLines(res.Selected)
	remainder := splitLines(res.Remainder)
	if len(selected) != len(res.SelectedLines) || len(remainder) != len(res.RemainderLines) {
		t.Fatalf("Line counts do not match indices: %d/%d selected, %d/%d remainder",
			len(selected), len(res.SelectedLines), len(remainder), len(res.RemainderLines))
	}
	var buf bytes.Buffer
	si, ri := 0, 0
	for i := range CountLines(content) {
		switch {
		case si < len(res.SelectedLines) && res.SelectedLines[si] == i:
			buf.Write(selected[si].raw)
			si++
		case ri < len(res.RemainderLines) && res.RemainderLines[ri] == i:
			buf.Write(remainder[ri].raw)
			ri++
		default:
			t.Fatalf("Line %d is in neither half", i)
		}
	}
	return buf.Bytes()
}

func TestPartition_PreserveReconstitutes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ranges  []LineRange
	}{
		{"trailing newline", "one\ntwo\nthree\nfour\n", ranges("f", [2]int{2, 3})},
		{"no trailing newline", "one\ntwo\nthree", ranges("f", [2]int{3, 3})},
		{"crlf", "one\r\ntwo\r\nthree\r\n", ranges("f", [2]int{1, 1})},
		{"overlapping", "1\n2\n3\n4\n5\n", ranges("f", [2]int{1, 3}, [2]int{2, 4})},
		{"clamped", "1\n2\n", ranges("f", [2]int{2, 99})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := []byte(tt.content)
			res := Partition(content, tt.ranges, "f", PreserveEOL)
			if got := interleave(t, content, res); !bytes.Equal(got, content) {
				t.Errorf("Expected %q, got %q", content, got)
			}
		})
	}
}

func TestPartition_Overlap(t *testing.T) {
	content := []byte("1\n2\n3\n4\n5\n")
	res := Partition(content, ranges("f", [2]int{1, 3}, [2]int{2, 4}), "f", PreserveEOL)

	if string(res.Selected) != "1\n2\n3\n4\n" {
		t.Errorf("Expected selected lines 1-4 once each, got %q", res.Selected)
	}
	if string(res.Remainder) != "5\n" {
		t.Errorf("Expected remainder %q, got %q", "5\n", res.Remainder)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3}, res.SelectedLines); diff != "" {
		t.Errorf("SelectedLines mismatch (-want +got):\n%s", diff)
	}
}

func TestPartition_NormalizeMatchesComplement(t *testing.T) {
	content := []byte("line 1\r\nline 2\r\nline 3\r\nline 4\r\n")
	rs := ranges("f", [2]int{2, 3})
	res := Partition(content, rs, "f", NormalizeEOL)

	if want := Complement(content, rs, "f"); !bytes.Equal(res.Remainder, want) {
		t.Errorf("Expected remainder %q, got %q", want, res.Remainder)
	}
	if want := Select(content, rs, "f"); !bytes.Equal(res.Selected, want) {
		t.Errorf("Expected selected %q, got %q", want, res.Selected)
	}
}

func TestPartition_NoMatch(t *testing.T) {
	content := []byte("a\nb\n")
	res := Partition(content, ranges("other", [2]int{1, 1}), "f", PreserveEOL)
	if !bytes.Equal(res.Remainder, content) || len(res.Selected) != 0 {
		t.Errorf("Expected passthrough, got selected %q remainder %q", res.Selected, res.Remainder)
	}
	if diff := cmp.Diff([]int{0, 1}, res.RemainderLines); diff != "" {
		t.Errorf("RemainderLines mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEOLMode(t *testing.T) {
	for in, want := range map[string]EOLMode{"": PreserveEOL, "preserve": PreserveEOL, "normalize": NormalizeEOL} {
		got, err := ParseEOLMode(in)
		if err != nil || got != want {
			t.Errorf("ParseEOLMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseEOLMode("crlf"); err == nil {
		t.Error("Expected unknown mode to fail")
	}
}
