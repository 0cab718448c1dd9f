package cli

import (
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/AnastasiaP261/sci-activity-doc/pkg/buildinfo"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability"
	"github.com/AnastasiaP261/sci-activity-doc/pkg/observability/prom"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// Before any subcommand runs, the config file is loaded and the log level is
// taken from it; --verbose overrides it with debug.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "sciactivity manages research workflow graphs",
		Long:          `sciactivity keeps the workflow graphs of research studies: directed graphs of steps between a start node A and a finish node B, stored as DOT text and checked before every write.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sciactivity/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Graphs
	root.AddCommand(c.newCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.levelsCommand())
	root.AddCommand(c.rewriteCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.rmCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.nodeCommand())

	// Offline tools
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// annotationConfigOptional marks commands that run with defaults when the
// file named by --config does not exist yet.
const annotationConfigOptional = "config-optional"

// setup loads the config, applies the log level and registers metrics
// hooks when a textfile is configured.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(c.configPath)
	if errors.Is(err, os.ErrNotExist) && cmd.Annotations[annotationConfigOptional] == "true" {
		cfg, err = DefaultConfig(), nil
	}
	if err != nil {
		return err
	}
	c.config = cfg

	level, _ := log.ParseLevel(cfg.Log.Level)
	if c.verbose {
		level = log.DebugLevel
	}
	c.SetLogLevel(level)

	if cfg.Metrics.Textfile != "" {
		c.metrics = prom.New(prometheus.NewRegistry())
		observability.SetEngineHooks(c.metrics)
		observability.SetStoreHooks(c.metrics)
	}

	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
