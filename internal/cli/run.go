package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/pkg/engine"
)

func (c *CLI) runCommand() *cobra.Command {
	var (
		timeout time.Duration
		dryRun  bool
	)
	cmd := &cobra.Command{
		Use:   "run <script.zy>",
		Short: "Run an edit script against the workspace",
		Long: `Evaluate a zygomys Lisp edit script. Its builtins import files, edit the
active cable model, move radius spheres and export SWC; see the package
documentation of pkg/engine for the full list. The workspace is saved when
the script finishes without errors, unless --dry-run is given.`,
		Example: `  (load-swc "cell.swc")
  (extrude 4 (vec3 10 0 0))
  (make-spheres)
  (move-sphere 5 (vec3 12 0 0) :radius 0.8)
  (absorb-spheres)
  (export-swc "cell-edited.swc")`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return c.withSession(!dryRun, func(s *session) error {
				logger := loggerFromContext(cmd.Context())
				sess := engine.NewSession(logger)
				sess.Registry = s.reg
				sess.Import = s.cfg.ParseOptions()
				sess.DefaultRadius = s.cfg.Edit.NewSphereRadius
				sess.Dir = filepath.Dir(args[0])

				eng := engine.NewEngine(logger)
				eng.SetTimeout(timeout)

				prog := newProgress(logger)
				res, evalErrs, err := eng.Run(cmd.Context(), string(src), sess)
				if err != nil {
					return err
				}
				if len(evalErrs) > 0 {
					for _, e := range evalErrs {
						printError("%s", e.Error())
					}
					return fmt.Errorf("%s: %d errors", args[0], len(evalErrs))
				}
				prog.done("Ran " + args[0])
				for _, p := range res.Exported {
					printFile(p)
				}
				if res.Value != "" {
					printInfo("%s", StyleValue.Render(res.Value))
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", engine.EvalTimeout, "evaluation time limit")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not save edits to the workspace")
	return cmd
}
