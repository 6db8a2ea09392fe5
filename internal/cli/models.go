package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/swc"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const defaultModelName = "Cable Model"

func (c *CLI) importCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.swc>",
		Short: "Add an SWC file to the workspace as a cable model",
		Long: `Read an SWC file into an editable cable model named "<base>_cable_model"
and make it the active model. Importing the same file again keeps the
existing model.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(true, func(s *session) error {
				prog := newProgress(loggerFromContext(cmd.Context()))
				res, err := swc.ParseFile(args[0], swc.Options{})
				if err != nil {
					return err
				}
				m, err := cable.FromSWC(args[0], res)
				if err != nil {
					return err
				}
				i, err := s.reg.Add(m)
				if err != nil {
					return err
				}
				if err := s.reg.SelectIndex(i); err != nil {
					return err
				}
				prog.done(fmt.Sprintf("Imported %d points", len(res.Points)))
				printSuccess("Imported %s", StyleHighlight.Render(m.Name))
				printDetail("%d vertices, %d edges", m.NumVertices(), len(m.Mesh.Edges()))
				for _, l := range m.Skipped {
					printWarning("point %d: parent %d not linked: %v", l.ID, l.Parent, l.Err)
				}
				return nil
			})
		},
	}
}

func (c *CLI) newCommand() *cobra.Command {
	var at []float64
	cmd := &cobra.Command{
		Use:   "new [name]",
		Short: "Start a new two-vertex cable model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultModelName
			if len(args) == 1 {
				name = args[0]
			}
			if len(at) != 3 {
				return fmt.Errorf("--at takes three values x,y,z, got %d", len(at))
			}
			return c.withSession(true, func(s *session) error {
				if _, exists := s.reg.Get(name); exists {
					return fmt.Errorf("a cable model named %q already exists", name)
				}
				m := cable.NewBlank(name, v3.Vec{X: at[0], Y: at[1], Z: at[2]})
				i, err := s.reg.Add(m)
				if err != nil {
					return err
				}
				if err := s.reg.SelectIndex(i); err != nil {
					return err
				}
				printSuccess("Created %s", StyleHighlight.Render(name))
				return nil
			})
		},
	}
	cmd.Flags().Float64SliceVar(&at, "at", []float64{0, 0, 0}, "cursor position x,y,z")
	return cmd
}

func (c *CLI) modelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List and manage the workspace's cable models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listModels()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cable models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.listModels()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "use <name>",
		Short: "Make a cable model active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(true, func(s *session) error {
				if err := s.reg.Select(args[0]); err != nil {
					return err
				}
				printSuccess("Active model is %s", StyleHighlight.Render(args[0]))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Remove the active cable model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(true, func(s *session) error {
				m, err := s.reg.RemoveActive()
				if err != nil {
					return err
				}
				printSuccess("Removed %s", StyleHighlight.Render(m.Name))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cable model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(true, func(s *session) error {
				printSuccess("Removed %d models", s.reg.RemoveAll())
				return nil
			})
		},
	})
	return cmd
}

func (c *CLI) listModels() error {
	return c.withSession(false, func(s *session) error {
		if s.reg.Len() == 0 {
			printInfo("No cable models in %s", s.cfg.Workspace)
			return nil
		}
		active := s.reg.ActiveIndex()
		for i, m := range s.reg.Models() {
			marker, name := " ", StyleValue.Render(m.Name)
			if i == active {
				marker, name = styleActive.Render(iconActive), styleActive.Render(m.Name)
			}
			stale := ""
			if cable.NeedsReconcile(m) {
				stale = StyleWarning.Render(" (needs reconcile)")
			}
			fmt.Printf("%s %s %s%s\n", marker, name, StyleDim.Render(fmt.Sprintf("%d vertices", m.NumVertices())), stale)
		}
		return nil
	})
}
