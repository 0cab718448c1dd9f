package cli

import (
	"github.com/spf13/cobra"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/dag/meta"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/engine"
	apperr "github.com/AnastasiaP261/sci-activity-doc/pkg/errors"
)

// nodeCommand creates the node management command.
func (c *CLI) nodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "node",
		Short: "Edit or delete a single step of a graph",
	}

	cmd.AddCommand(c.nodeDeleteCommand())
	cmd.AddCommand(c.nodeEditCommand())

	return cmd
}

// nodeDeleteCommand creates the "node delete" subcommand.
func (c *CLI) nodeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete ID NODE",
		Short:             "Delete a step and connect its parents to its children",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				if err := e.DeleteNode(ctx, id, args[1]); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted step %s from graph %d", args[1], id)
				return nil
			})
		},
	}
}

// nodeEditCommand creates the "node edit" subcommand.
func (c *CLI) nodeEditCommand() *cobra.Command {
	var (
		title    string
		subgraph int64
		unlink   bool
		notes    []int64
	)

	cmd := &cobra.Command{
		Use:   "edit ID NODE",
		Short: "Change a step's title or its link to a sub-graph",
		Long: `Change a step's title or its link to a sub-graph.

Flags that are not given keep the step's current value. Exactly one change
is applied per call, checked in this order: relink to a different graph,
link a graph, remove the link, change the title.

A step with attached notes cannot be linked to a sub-graph; pass the ids of
its notes with --notes so the check can be made.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeNodeID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseGraphID(args[0])
			if err != nil {
				return err
			}
			nodeID := args[1]
			if err := apperr.ValidateNodeID(nodeID); err != nil {
				return err
			}
			if unlink && cmd.Flags().Changed("subgraph") {
				return apperr.New(apperr.ErrCodeInvalidInput, "--subgraph and --unlink are mutually exclusive")
			}

			ctx := cmd.Context()
			return c.withEngine(ctx, func(e *engine.Engine) error {
				current, err := e.NodesMetadata(ctx, id)
				if err != nil {
					return err
				}
				md, ok := current[nodeID]
				if !ok {
					// Let the engine report the unknown node.
					md = meta.NodeMeta{}
				}

				req := meta.Request{
					IsSubgraph: md.Subgraph != 0,
					SubgraphID: md.Subgraph,
					NotesIDs:   notes,
					Title:      md.Title,
				}
				if cmd.Flags().Changed("title") {
					req.Title = title
				}
				if cmd.Flags().Changed("subgraph") {
					req.IsSubgraph = true
					req.SubgraphID = subgraph
				}
				if unlink {
					req.IsSubgraph = false
					req.SubgraphID = 0
				}

				change, err := e.EditNode(ctx, id, nodeID, req)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Applied %s to step %s of graph %d", StyleNumber.Render(string(change)), nodeID, id)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new display title")
	cmd.Flags().Int64Var(&subgraph, "subgraph", 0, "id of the graph the step links to")
	cmd.Flags().BoolVar(&unlink, "unlink", false, "remove the step's sub-graph link")
	cmd.Flags().Int64SliceVar(&notes, "notes", nil, "ids of notes attached to the step")
	return cmd
}
