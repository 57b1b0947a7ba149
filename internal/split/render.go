// ABOUTME: Human-readable preview of a planned split
// ABOUTME: Shows per-file selections, a coloured remainder diff and the history rewrite

package split

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/obra/hunksplit/internal/git"
	"github.com/obra/hunksplit/internal/hunk"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	headerColor  = color.New(color.Bold)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	hunkColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// Render describes what applying the plan would do.
func (p *Plan) Render() string {
	var output strings.Builder

	fmt.Fprintf(&output, "Would split commit %s: %q\n", p.Commit.Short(), p.Commit.Subject())
	fmt.Fprintf(&output, "├─ Remainder: %q\n", firstLine(p.RemainderMessage))
	fmt.Fprintf(&output, "└─ Selected:  %q\n\n", firstLine(p.SelectedMessage))

	fmt.Fprintf(&output, "Affected files:\n")
	for _, fp := range p.Files {
		renderFile(&output, fp)
	}

	if len(p.Descendants) > 0 || len(p.Refs) > 0 {
		names := make([]string, 0, len(p.Refs))
		for _, ref := range p.Refs {
			names = append(names, ref.Name)
		}
		fmt.Fprintf(&output, "Would re-parent %d descendant commit(s)", len(p.Descendants))
		if len(names) > 0 {
			fmt.Fprintf(&output, " and move %s", strings.Join(names, ", "))
		}
		output.WriteString("\n")
	}

	if len(p.Warnings) > 0 {
		output.WriteString("\nWarnings:\n")
		for _, w := range p.Warnings {
			output.WriteString(warnColor.Sprintf("  ! %s", w) + "\n")
		}
	}

	return output.String()
}

func renderFile(output *strings.Builder, fp FilePlan) {
	selected, remainder := fp.Partition.Selected, fp.Partition.Remainder

	output.WriteString(headerColor.Sprintf("  - %s", fp.Path) + "\n")
	if len(fp.Changed) > 0 {
		spans := make([]string, len(fp.Changed))
		for i, s := range fp.Changed {
			spans[i] = s.String()
		}
		fmt.Fprintf(output, "    Changed lines: %s\n", strings.Join(spans, ", "))
	}
	fmt.Fprintf(output, "    Selected: %d bytes (%d lines)\n", len(selected), hunk.CountLines(selected))
	fmt.Fprintf(output, "    Remaining: %d bytes (%d lines)\n", len(remainder), hunk.CountLines(remainder))

	output.WriteString("\n    Selected content:\n")
	for _, line := range strings.SplitAfter(string(selected), "\n") {
		if line == "" {
			continue
		}
		fmt.Fprintf(output, "      %s", strings.TrimRight(line, "\r\n")+"\n")
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(fp.Original)),
		B:        difflib.SplitLines(string(remainder)),
		FromFile: "a/" + fp.Path,
		ToFile:   "b/" + fp.Path + " (remainder)",
		Context:  1,
	})
	if err != nil || diff == "" {
		output.WriteString("\n")
		return
	}
	output.WriteString("\n    Remainder diff:\n")
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		output.WriteString("      " + colorDiffLine(strings.TrimRight(line, "\n")) + "\n")
	}
	output.WriteString("\n")
}

func colorDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return headerColor.Sprint(line)
	case strings.HasPrefix(line, "@@"):
		return hunkColor.Sprint(line)
	case strings.HasPrefix(line, "+"):
		return addedColor.Sprint(line)
	case strings.HasPrefix(line, "-"):
		return removedColor.Sprint(line)
	}
	return line
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(msg, "\n")
	return line
}

// Summary describes a completed split and how to undo it.
func (r *Result) Summary() string {
	var output strings.Builder

	fmt.Fprintf(&output, "✅ Split %s into:\n", r.Original.Short())
	fmt.Fprintf(&output, "  %s (remainder)\n", git.ShortID(r.Remainder))
	fmt.Fprintf(&output, "  %s (selected)\n", git.ShortID(r.Selected))
	if len(r.Rewritten) > 0 {
		fmt.Fprintf(&output, "Re-parented %d descendant commit(s).\n", len(r.Rewritten))
	}

	if len(r.Refs) == 0 {
		fmt.Fprintf(&output, "No branch pointed at %s; the new commits are not on any branch.\n", r.Original.Short())
		return output.String()
	}
	fmt.Fprintf(&output, "To revert this split, run:\n")
	for _, u := range r.Refs {
		if u.Name == "HEAD" {
			fmt.Fprintf(&output, "  git update-ref --no-deref HEAD %s %s\n", u.Old, u.New)
			continue
		}
		fmt.Fprintf(&output, "  git update-ref %s %s %s\n", u.Name, u.Old, u.New)
	}
	return output.String()
}
