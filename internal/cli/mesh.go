package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/chazu/swcmesher/internal/config"
	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/kernel/sdfx"
	"github.com/chazu/swcmesher/pkg/morph"
	"github.com/chazu/swcmesher/pkg/swc"
	"github.com/chazu/swcmesher/pkg/tessellate"
)

// meshOpts holds the flags of the mesh command. Unset flags fall back to
// the settings file.
type meshOpts struct {
	out         string
	name        string
	resolution  int
	blend       float64
	radiusScale float64
	minRadius   float64
	capEnds     bool
}

func (c *CLI) meshCommand() *cobra.Command {
	var opts meshOpts
	cmd := &cobra.Command{
		Use:   "mesh [file]",
		Short: "Polygonize a morphology as a smooth surface",
		Long: `Build the implicit surface of a morphology and write it as STL or as a
JSON triangle mesh. With a file argument the file is read directly (any
supported format); without one the active cable model is used, so edits
and radii set through spheres show up in the surface.`,
		Example: `  swcmesh mesh cell.swc --out cell.stl
  swcmesh mesh --out edited.json --resolution 300 --blend 0.5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			topts := opts.apply(cmd, cfg)
			topts.Logger = loggerFromContext(cmd.Context())

			var branches []morph.Branch
			if len(args) == 1 {
				res, err := swc.ParseFile(args[0], cfg.ParseOptions())
				if err != nil {
					return err
				}
				branches = res.Branches
				if opts.name == "" {
					topts.Name = swc.BaseName(args[0])
				}
			} else {
				err := c.withActive(false, func(s *session, m *cable.Model) error {
					cable.Ensure(m)
					segs := cable.Segments(m, cfg.Edit.NewSphereRadius, cfg.Import.SegmentLimit)
					branches = cable.Branches(segs, cfg.Edit.NewSphereRadius)
					if opts.name == "" {
						topts.Name = m.Name
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			return writeMesh(opts.out, branches, topts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (.stl or .json)")
	cmd.Flags().StringVar(&opts.name, "name", "", "surface name (defaults to the source name)")
	cmd.Flags().IntVar(&opts.resolution, "resolution", 0, "marching cubes cells along the longest axis")
	cmd.Flags().Float64Var(&opts.blend, "blend", 0, "smooth-union distance (0 is a sharp union)")
	cmd.Flags().Float64Var(&opts.radiusScale, "radius-scale", 0, "radius multiplier")
	cmd.Flags().Float64Var(&opts.minRadius, "min-radius", 0, "smallest sphere radius")
	cmd.Flags().BoolVar(&opts.capEnds, "cap-ends", false, "add a sphere on every segment end")
	cmd.MarkFlagRequired("out")
	return cmd
}

// apply overlays the changed flags on the configured surface settings.
func (o meshOpts) apply(cmd *cobra.Command, cfg config.Config) tessellate.Options {
	topts := cfg.TessellateOptions()
	flags := cmd.Flags()
	if o.name != "" {
		topts.Name = o.name
	}
	if flags.Changed("resolution") {
		topts.Cells = o.resolution
	}
	if flags.Changed("blend") {
		topts.Blend = o.blend
	}
	if flags.Changed("radius-scale") {
		topts.Surface.RadiusScale = o.radiusScale
	}
	if flags.Changed("min-radius") {
		topts.Surface.MinForcedRadius = o.minRadius
	}
	if flags.Changed("cap-ends") {
		topts.Surface.CapEnds = o.capEnds
	}
	return topts
}

func writeMesh(out string, branches []morph.Branch, opts tessellate.Options) error {
	prog := newProgress(opts.Logger)
	k := sdfx.New()

	switch strings.ToLower(filepath.Ext(out)) {
	case ".stl":
		path, err := tessellate.WriteSTL(out, branches, k, opts)
		if err != nil {
			return err
		}
		prog.done("Meshed surface")
		printSuccess("Wrote %s", StyleHighlight.Render(opts.Name))
		printFile(path)
		if info, err := os.Stat(path); err == nil {
			printDetail("%s", humanize.Bytes(uint64(info.Size())))
		}
		return nil
	case ".json":
		mesh, err := tessellate.Tessellate(branches, k, opts)
		if err != nil {
			return err
		}
		data, err := json.Marshal(mesh)
		if err != nil {
			return fmt.Errorf("encode mesh: %w", err)
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return err
		}
		prog.done("Meshed surface")
		printSuccess("Wrote %s", StyleHighlight.Render(mesh.Name))
		printDetail("%d vertices, %d triangles, %s", mesh.VertexCount(), mesh.TriangleCount(), humanize.Bytes(uint64(len(data))))
		printFile(out)
		return nil
	default:
		return fmt.Errorf("unsupported mesh output %q (use .stl or .json)", out)
	}
}
