package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/willibrandon/projsys/buildlog"
	"github.com/willibrandon/projsys/cmd/projsys/cli"
	"github.com/willibrandon/projsys/cmd/projsys/output"
	"github.com/willibrandon/projsys/logmodel"
)

// NewLogCommand creates the log command group
func NewLogCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Inspect binary build logs",
	}
	cmd.AddCommand(newLogSummarizeCommand(console, opts))
	return cmd
}

func newLogSummarizeCommand(console *output.Console, opts *cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file.binlog>...",
		Short: "Print the result, duration, targets and diagnostics of binary logs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), opts, func(env *cli.Env) error {
				return runLogSummarize(cmd.Context(), console, buildlog.NewTable(env.Logger), args)
			})
		},
	}
}

// runLogSummarize replays each log as a build tracked in table. A replay
// finishes as failed when the log cannot be read or the recorded build did
// not succeed.
func runLogSummarize(ctx context.Context, console *output.Console, table *buildlog.Table, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logs := make([]*logmodel.Log, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			b := buildlog.NewBuild(path, nil, nil, buildlog.TypeBuild, time.Now(), "")
			// The replayed log belongs to the caller.
			b.LogPath = ""
			table.Add(b)

			l, err := buildlog.Load(gctx, path)
			succeeded := err == nil && l.Build != nil && l.Build.Result == logmodel.ResultSucceeded
			if ferr := table.Finish(b.ID, succeeded, time.Now()); ferr != nil {
				return ferr
			}
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logs[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, l := range logs {
		if i > 0 {
			console.Println()
		}
		printSummary(console, paths[i], l)
	}
	if len(paths) > 1 {
		console.Println()
		printReplays(console, table.Builds())
	}
	return nil
}

func printReplays(console *output.Console, builds []*buildlog.Build) {
	var succeeded, failed int
	for _, b := range builds {
		switch b.Status() {
		case buildlog.StatusFinished:
			succeeded++
		case buildlog.StatusFailed:
			failed++
		}
	}
	console.Printf("%d log(s): %d succeeded, %d failed\n", len(builds), succeeded, failed)
}

func printSummary(console *output.Console, path string, l *logmodel.Log) {
	console.Header("%s", filepath.Base(path))

	if b := l.Build; b != nil {
		duration := b.Duration().Round(time.Millisecond)
		switch b.Result {
		case logmodel.ResultSucceeded:
			console.Success("  Build succeeded in %s", duration)
		default:
			console.Failure("  Build %s in %s", b.Result, duration)
		}
		if p := b.Project; p != nil {
			console.Printf("  Project: %s\n", p.ProjectFile)
			var targets []string
			for _, t := range p.Targets {
				if t.IsRequestedTarget() {
					targets = append(targets, t.Name)
				}
			}
			if len(targets) > 0 {
				console.Printf("  Targets: %s\n", strings.Join(targets, ", "))
			}
			console.Detail("  Targets run: %d", len(p.Targets))
		}
	}

	if n := len(l.Evaluations); n > 0 {
		projects := 0
		for _, ev := range l.Evaluations {
			projects += len(ev.Projects)
		}
		console.Detail("  Evaluations: %d (%d projects)", n, projects)
	}

	for _, d := range l.Diagnostics() {
		if d.IsError() {
			console.Failure("  %s", d)
		} else {
			console.Caution("  %s", d)
		}
	}
	errors, warnings := l.Counts()
	console.Printf("  %d error(s), %d warning(s)\n", errors, warnings)
}
