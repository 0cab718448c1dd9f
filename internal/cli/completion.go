package cli

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/engine"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sciactivity.

Besides commands and flags, the scripts complete graph ids from the
configured store (shown with their titles) and, for "node delete" and
"node edit", the steps of the chosen graph.

Bash:
  $ source <(sciactivity completion bash)

Zsh:
  $ sciactivity completion zsh > "${fpath[1]}/_sciactivity"

Fish:
  $ sciactivity completion fish > ~/.config/fish/completions/sciactivity.fish

PowerShell:
  PS> sciactivity completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeGraphID completes the first argument with the ids of stored
// graphs, each described by its title. Later arguments fall back to file
// completion.
func (c *CLI) completeGraphID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	return c.graphIDs(cmd, toComplete, nil)
}

// completeGraphIDs completes every argument with graph ids not yet given.
func (c *CLI) completeGraphIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return c.graphIDs(cmd, toComplete, args)
}

func (c *CLI) graphIDs(cmd *cobra.Command, prefix string, skip []string) ([]string, cobra.ShellCompDirective) {
	var out []string
	err := c.completeWithEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
		recs, err := e.List(ctx, "")
		if err != nil {
			return err
		}
		for _, r := range recs {
			id := strconv.FormatInt(r.ID, 10)
			if strings.HasPrefix(id, prefix) && !slices.Contains(skip, id) {
				out = append(out, id+"\t"+r.Title)
			}
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeNodeID completes "ID NODE" arguments: graph ids first, then the
// steps of that graph with their titles.
func (c *CLI) completeNodeID(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return c.graphIDs(cmd, toComplete, nil)
	case 1:
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	id, err := parseGraphID(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var out []string
	err = c.completeWithEngine(cmd, func(ctx context.Context, e *engine.Engine) error {
		md, err := e.NodesMetadata(ctx, id)
		if err != nil {
			return err
		}
		for node, m := range md {
			if !strings.HasPrefix(node, toComplete) {
				continue
			}
			if m.Title != "" {
				node += "\t" + m.Title
			}
			out = append(out, node)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	sort.Strings(out)
	return out, cobra.ShellCompDirectiveNoFileComp
}

// completeWithEngine reloads the config, since --config is parsed only after
// the root setup has run for completion requests, and runs fn on an engine.
func (c *CLI) completeWithEngine(cmd *cobra.Command, fn func(context.Context, *engine.Engine) error) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return c.withEngine(ctx, func(e *engine.Engine) error {
		return fn(ctx, e)
	})
}
