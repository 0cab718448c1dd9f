package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/dot"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/engine"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
	pkgio "github.com/AnastasiaP261/sci-activity-doc/pkg/io"
)

const timeLayout = "2006-01-02 15:04"

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var study string

	cmd := &cobra.Command{
		Use:   "new TITLE",
		Short: "Create a graph with the default start -> finish skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				rec, err := e.Create(ctx, args[0], study)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printSuccess(out, "Created graph %s", StyleNumber.Render(strconv.FormatInt(rec.ID, 10)))
				printNextStep(out, "Add steps", fmt.Sprintf("%s rewrite %d levels.json", appName, rec.ID))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&study, "study", "s", "", "id of the owning research study (required)")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

// importCommand creates the "import" command.
func (c *CLI) importCommand() *cobra.Command {
	var study, title string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store a graph read from a DOT or JSON file",
		Long: `Store a graph read from a file as a new graph.

Files ending in .json are read in the node/edge JSON format written by
"export --format json"; anything else is parsed as DOT. The graph must
satisfy every structural check before it is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			g, err := readGraph(path)
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				rec, err := e.Import(ctx, title, study, g)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				printSuccess(out, "Imported graph %s", StyleNumber.Render(strconv.FormatInt(rec.ID, 10)))
				printStats(out, g.NodeCount(), g.EdgeCount(), 0)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&study, "study", "s", "", "id of the owning research study (required)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title (default: file name)")
	_ = cmd.MarkFlagRequired("study")
	return cmd
}

// readGraph parses a graph file by extension.
func readGraph(path string) (*dag.Graph, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		g, err := pkgio.ImportJSON(path)
		if err != nil {
			return nil, apperr.ParseError(err, "read %s", path)
		}
		return g, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return dot.Parse(string(data))
}

// exportCommand creates the "export" command.
func (c *CLI) exportCommand() *cobra.Command {
	var output, format string

	cmd := &cobra.Command{
		Use:               "export ID",
		Short:             "Write a stored graph as DOT or JSON",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeGraphID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}
			if format != "dot" && format != "json" {
				return apperr.New(apperr.ErrCodeInvalidInput, "unknown format %q (want dot or json)", format)
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				view, err := e.Get(ctx, id)
				if err != nil {
					return err
				}
				text := view.Record.Data

				if format == "dot" {
					if output == "" {
						_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
						return err
					}
					return os.WriteFile(output, []byte(text+"\n"), 0o644)
				}

				g, err := dot.Parse(text)
				if err != nil {
					return err
				}
				if output == "" {
					return pkgio.WriteJSON(g, cmd.OutOrStdout())
				}
				return pkgio.ExportJSON(g, output)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "output format: dot or json")
	return cmd
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:               "show ID",
		Short:             "Show a graph's levels and step metadata",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeGraphID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				view, err := e.Get(ctx, id)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					return pkgio.WriteView(pkgio.View{Levels: view.Levels, Metadata: view.Metadata}, out)
				}
				printGraph(out, view)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print levels and metadata as JSON")
	return cmd
}

// levelsCommand creates the "levels" command.
func (c *CLI) levelsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "levels ID",
		Short: "Write the level decomposition of a graph as JSON",
		Long: `Write the level decomposition of a graph as JSON.

The output maps each level to its nodes and each node to its sorted
parents. Edit it and feed it back with "rewrite" to change the graph.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeGraphID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				levels, err := e.Levels(ctx, id)
				if err != nil {
					return err
				}
				if output == "" {
					return pkgio.WriteLevels(levels, cmd.OutOrStdout())
				}
				if err := pkgio.ExportLevels(levels, output); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Wrote %d levels", len(levels))
				printFile(cmd.OutOrStdout(), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

// rewriteCommand creates the "rewrite" command.
func (c *CLI) rewriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite ID LEVELS_FILE",
		Short: "Replace a graph's structure with an edited level file",
		Long: `Replace a graph's structure with the one described by a level file.

Steps kept by the rewrite keep their titles and sub-graph links. The new
graph must pass every structural check; otherwise nothing is stored.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeGraphID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}
			levels, err := pkgio.ImportLevels(args[1])
			if err != nil {
				return apperr.ParseError(err, "read %s", args[1])
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				if _, err := e.Rewrite(ctx, id, levels); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Rewrote graph %d", id)
				return nil
			})
		},
	}
}

// renameCommand creates the "rename" command.
func (c *CLI) renameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename ID TITLE",
		Short:             "Change a graph's title",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeGraphID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				if err := e.Rename(ctx, id, args[1]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Renamed graph %d", id)
				return nil
			})
		},
	}
}

// rmCommand creates the "rm" command.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rm ID...",
		Short:             "Delete graphs",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeGraphIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, len(args))
			for i, arg := range args {
				id, err := parseGraphID(arg)
				if err != nil {
					return err
				}
				ids[i] = id
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				for _, id := range ids {
					if err := e.Delete(ctx, id); err != nil {
						return err
					}
					printSuccess(cmd.OutOrStdout(), "Deleted graph %d", id)
				}
				return nil
			})
		},
	}
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	var study string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored graphs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				recs, err := e.List(ctx, study)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(recs) == 0 {
					printInfo(out, "No graphs stored")
					printNextStep(out, "Create one", appName+" new TITLE --study ID")
					return nil
				}

				rows := make([][]string, len(recs))
				for i, r := range recs {
					rows[i] = []string{
						strconv.FormatInt(r.ID, 10),
						r.Title,
						r.StudyID,
						r.UpdatedAt.Local().Format(timeLayout),
					}
				}
				printTable(out, []string{"ID", "Title", "Study", "Updated"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&study, "study", "s", "", "only list graphs of this study")
	return cmd
}

// printGraph prints the human-readable form of a graph view.
func printGraph(w io.Writer, view *engine.Graph) {
	rec := view.Record
	fmt.Fprintln(w, StyleTitle.Render(rec.Title))
	printKeyValue(w, "ID", strconv.FormatInt(rec.ID, 10))
	printKeyValue(w, "Study", rec.StudyID)
	printKeyValue(w, "Updated", rec.UpdatedAt.Local().Format(timeLayout))

	edges := 0
	for _, level := range view.Levels {
		for _, parents := range level {
			edges += len(parents)
		}
	}
	printStats(w, len(view.Metadata), edges, len(view.Levels))
	fmt.Fprintln(w)

	for _, level := range view.Levels.Order() {
		fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("Level %d", level)))
		for _, id := range view.Levels.IDs(level) {
			line := "  " + StyleValue.Render(id)
			md := view.Metadata[id]
			if md.Title != "" {
				line += " " + md.Title
			}
			if parents := view.Levels[level][id]; len(parents) > 0 {
				line += StyleDim.Render(" ← " + strings.Join(parents, ", "))
			}
			if md.Subgraph != 0 {
				line += " " + styleCommand.Render(fmt.Sprintf("↳ graph %d", md.Subgraph))
			}
			fmt.Fprintln(w, line)
		}
	}
}
