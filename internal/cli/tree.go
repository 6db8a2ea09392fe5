package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/treeviz"
)

func (c *CLI) treeCommand() *cobra.Command {
	var (
		out      string
		detailed bool
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Draw the active cable model's skeleton tree",
		Long: `Write the parent/child tree of the active cable model as Graphviz DOT, or
render it to SVG. Stale labels are reconciled first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withActive(false, func(s *session, m *cable.Model) error {
				dot, err := treeviz.ToDOT(m, treeviz.Options{Detailed: detailed})
				if err != nil {
					return err
				}
				var data []byte
				switch strings.ToLower(filepath.Ext(out)) {
				case ".dot", ".gv":
					data = []byte(dot)
				case ".svg":
					data, err = treeviz.RenderSVG(cmd.Context(), dot)
					if err != nil {
						return err
					}
				default:
					return fmt.Errorf("unsupported tree output %q (use .dot or .svg)", out)
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
				printSuccess("Drew %s", StyleHighlight.Render(m.Name))
				printFile(out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.dot or .svg)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with type and radius")
	cmd.MarkFlagRequired("out")
	return cmd
}
