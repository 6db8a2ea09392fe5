// Package cli implements the swcmesh command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/internal/config"
)

const appName = "swcmesh"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath    string
	workspacePath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "swcmesh turns neuron morphologies into editable skeletons and surfaces",
		Long: `swcmesh imports SWC and legacy neuron morphology files, keeps editable cable
models of their skeletons in a workspace, and meshes them as smooth
implicit surfaces built from chains of overlapping spheres.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", config.FileName, "settings file")
	root.PersistentFlags().StringVarP(&c.workspacePath, "workspace", "w", "", "workspace database (overrides the settings file)")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.newCommand())
	root.AddCommand(c.modelsCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.reconcileCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.meshCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.runCommand())

	return root
}

// loadConfig reads the settings file and applies the global overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.workspacePath != "" {
		cfg.Workspace = c.workspacePath
	}
	c.Logger.Debug("loaded settings", "config", c.configPath, "workspace", cfg.Workspace)
	return cfg, nil
}
