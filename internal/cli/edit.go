package cli

import (
	"errors"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/swc"
)

// errCheckFailed is returned by check when the model has errors.
var errCheckFailed = errors.New("cable model has errors")

func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the active cable model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withActive(false, func(s *session, m *cable.Model) error {
				res := cable.Validate(m)
				for _, f := range res.Errors {
					printError("%s", f.Error())
				}
				for _, f := range res.Warnings {
					printWarning("%s", f.Error())
				}
				counts := cable.TypeCounts(m)
				for _, t := range slices.Sorted(maps.Keys(counts)) {
					printDetail("%-16s %d", t, counts[t])
				}
				if !res.OK() {
					return errCheckFailed
				}
				if cable.NeedsReconcile(m) {
					printInfo("labels are stale; run %s", StyleHighlight.Render(appName+" reconcile"))
				}
				printSuccess("%s: %d errors, %d warnings", m.Name, len(res.Errors), len(res.Warnings))
				return nil
			})
		},
	}
}

func (c *CLI) reconcileCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Relabel the active cable model breadth-first",
		Long: `Re-derive SWC ids and parents of the active cable model from its edges.
Vertex 0 becomes id 1 and every other vertex is numbered in breadth-first
order. Without --force a model whose labels are already consistent is left
alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withActive(true, func(s *session, m *cable.Model) error {
				var rep cable.Report
				if force {
					rep = cable.Reconcile(m)
				} else if r, ran := cable.Ensure(m); ran {
					rep = r
				} else {
					printInfo("%s is already consistent", m.Name)
					return nil
				}
				printSuccess("Relabeled %s", StyleHighlight.Render(m.Name))
				printDetail("%d vertices, %d stale entries dropped", m.NumVertices(), rep.Pruned)
				if rep.Components > 1 {
					printWarning("model has %d disconnected parts; each became its own root", rep.Components)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "relabel even when the labels are consistent")
	return cmd
}

func (c *CLI) exportCommand() *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:   "export <out.swc>",
		Short: "Write the active cable model as SWC",
		Long: `Write the active cable model as an SWC file in world coordinates. The model
is reconciled first when its labels are stale. Vertices with no radius are
written with the default sphere radius.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withActive(true, func(s *session, m *cable.Model) error {
				def := s.cfg.Edit.NewSphereRadius
				if cmd.Flags().Changed("radius") {
					def = radius
				}
				points, err := cable.ExportPoints(m)
				if err != nil {
					return err
				}
				lines, err := swc.Serialize(points, def)
				if err != nil {
					return err
				}
				path, err := swc.WriteFile(args[0], lines)
				if err != nil {
					return err
				}
				printSuccess("Exported %d points", len(points))
				printFile(path)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "radius written for vertices without one")
	return cmd
}
