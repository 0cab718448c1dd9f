package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// fileResult is the outcome of checking one file.
type fileResult struct {
	path  string
	nodes int
	edges int
	errs  []error
}

// validateCommand creates the "validate" command.
func (c *CLI) validateCommand() *cobra.Command {
	var all, graphviz bool

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check DOT files against the graph invariants",
		Long: `Check DOT files against the graph invariants without storing them.

Each file must parse and satisfy every structural check: start and finish
present, no cycle reachable from start, no duplicate step ids, every step
reachable from start, every edge between declared steps.

By default the first violation of each file is reported; --all reports
every violated check. --graphviz also feeds the canonical text of each file
to the Graphviz parser.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			results, err := validateFiles(ctx, args, all, graphviz)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			invalid := 0
			for _, r := range results {
				if len(r.errs) == 0 {
					printSuccess(out, "%s", r.path)
					printStats(out, r.nodes, r.edges, 0)
					continue
				}
				invalid++
				printError(out, "%s", r.path)
				for _, err := range r.errs {
					printDetail(out, "%s", FormatError(err))
				}
			}
			prog.done(fmt.Sprintf("Checked %d files", len(results)))

			if invalid > 0 {
				return apperr.New(apperr.ErrCodeValidation, "%d of %d files are invalid", invalid, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "report every violated check, not just the first")
	cmd.Flags().BoolVar(&graphviz, "graphviz", false, "also check the text with the Graphviz parser")
	return cmd
}

// validateFiles checks paths concurrently and returns one result per path
// in argument order. Problems with a file are recorded in its result; only
// cancellation fails the whole run.
func validateFiles(ctx context.Context, paths []string, all, graphviz bool) ([]fileResult, error) {
	results := make([]fileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(path, all, graphviz)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(path string, all, graphviz bool) fileResult {
	r := fileResult{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		r.errs = []error{err}
		return r
	}
	g, err := dot.Parse(string(data))
	if err != nil {
		r.errs = []error{err}
		return r
	}
	r.nodes, r.edges = g.NodeCount(), g.EdgeCount()

	if all {
		r.errs = multierr.Errors(g.ValidateAll())
	} else if err := g.Validate(); err != nil {
		r.errs = []error{err}
	}

	if graphviz {
		if err := dot.CheckGraphviz(dot.Serialize(g)); err != nil {
			r.errs = append(r.errs, err)
		}
	}
	return r
}
