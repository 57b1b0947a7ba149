// ABOUTME: Entry point for the hunksplit command
// ABOUTME: Handles CLI parsing and delegates to the split orchestrator

// Package main provides the CLI interface for hunksplit
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/obra/hunksplit/internal/config"
	"github.com/obra/hunksplit/internal/git"
	"github.com/obra/hunksplit/internal/hunk"
	"github.com/obra/hunksplit/internal/split"
	"github.com/spf13/cobra"
)

type options struct {
	revision    string
	message     string
	lineEndings string
	dryRun      bool
	debug       bool
	noColor     bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "hunksplit <path:start-end>... [-r <rev>] [-m <message>]",
		Short: "Split hunks by line ranges",
		Long: `hunksplit splits one commit into two along explicit line ranges. The first
new commit holds everything except the selected lines; the second restores
them, so together they make the same change as the original. Descendants of
the original commit are re-parented and branches pointing at them are moved.

Line ranges are 1-indexed and inclusive, in the form path:start-end, and refer
to lines of the file as it is in the commit being split.

Examples:
  hunksplit src/main.go:10-20
  hunksplit src/main.go:10-20 src/lib.go:5-15
  hunksplit --revision @- -m "Extract helper" src/main.go:10-20`,
		Args:          requireRanges,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.revision, "revision", "r", "@", "The revision to split (defaults to @, the working copy commit)")
	flags.StringVarP(&opts.message, "message", "m", "", "Message for the commit with the selected changes")
	flags.StringVar(&opts.lineEndings, "line-endings", "", "How split files are rejoined: preserve or normalize (overrides "+config.FileName+")")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "Preview what would be done without making changes")
	flags.BoolVar(&opts.debug, "debug", false, "Enable detailed debug output")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output")

	return cmd
}

func requireRanges(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one range is required (path:start-end)")
	}
	return nil
}

func run(cmd *cobra.Command, opts *options, args []string) error {
	if opts.noColor {
		color.NoColor = true
	}

	// Ranges are validated before the repository is touched.
	ranges, err := hunk.ParseAll(args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	repo, err := git.Open(ctx, wd)
	if err != nil {
		return err
	}

	cfg, err := config.ReadConfig(repo.Dir)
	if err != nil {
		return err
	}
	if opts.lineEndings != "" {
		cfg.LineEndings = opts.lineEndings
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	splitter := split.NewSplitter(split.FromGit(repo), cfg)
	splitter.SetDebug(opts.debug || cfg.Debug)

	plan, err := splitter.Plan(ctx, opts.revision, ranges, opts.message)
	if err != nil {
		return fmt.Errorf("cannot split %s: %w", opts.revision, err)
	}

	out := cmd.OutOrStdout()
	if opts.dryRun {
		fmt.Fprint(out, plan.Render())
		return nil
	}

	for _, w := range plan.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	result, err := splitter.Apply(ctx, plan)
	if err != nil {
		return fmt.Errorf("split of %s failed, no refs were changed: %w", opts.revision, err)
	}
	fmt.Fprint(out, result.Summary())
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
