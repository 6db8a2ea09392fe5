package engine

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/morph"
	"github.com/chazu/swcmesher/pkg/scene"
	"github.com/chazu/swcmesher/pkg/swc"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtinFunc is the signature zygomys calls builtins with. It must stay an
// alias so wrapped builtins pass straight to AddFunction.
type builtinFunc = zygo.ZlispUserFunction

// withActive wraps a builtin that edits the active cable model.
func withActive(s *Session, fn func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error)) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		m, err := s.Registry.Active()
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		out, err := fn(m, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	}
}

// registerBuiltins installs the editing builtins into a zygomys environment.
// Builtin names use underscores because preprocessSource rewrites the
// kebab-case names scripts are written with.
//
// Vertex arguments are current vertex indices (0-based), as the host editor
// addresses them; sphere arguments are vertex ids.
func registerBuiltins(env *zygo.Zlisp, s *Session, res *Result, logger *log.Logger) {

	// (vec3 1 2 3)
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, _, err := argPosition(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// (load-swc "cell.swc") imports the file as a cable model and selects it.
	env.AddFunction("load_swc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("load-swc requires a path")
		}
		path, err := argString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-swc: path: %w", err)
		}
		path = s.path(path)
		parsed, err := swc.ParseFile(path, s.Import)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-swc: %w", err)
		}
		m, err := cable.FromSWC(path, parsed)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("load-swc: %w", err)
		}
		if _, err := s.Registry.Add(m); err != nil {
			return zygo.SexpNull, fmt.Errorf("load-swc: %w", err)
		}
		if err := s.Registry.Select(m.Name); err != nil {
			return zygo.SexpNull, fmt.Errorf("load-swc: %w", err)
		}
		for _, l := range m.Skipped {
			logger.Warn("parent link skipped", "path", path, "id", l.ID, "parent", l.Parent, "err", l.Err)
		}
		logger.Debug("script loaded cable model", "path", path, "name", m.Name, "vertices", m.NumVertices())
		return strResult(m.Name), nil
	})

	// (new-cable "name" :at (vec3 0 0 0)) starts a two-vertex model.
	env.AddFunction("new_cable", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		if len(pa.pos) != 1 {
			return zygo.SexpNull, fmt.Errorf("new-cable requires a name")
		}
		modelName, err := argString(pa.pos[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("new-cable: name: %w", err)
		}
		var cursor v3.Vec
		if v, ok := pa.kw["at"]; ok {
			cursor, _, err = argPosition([]zygo.Sexp{v})
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("new-cable: at: %w", err)
			}
		}
		m := cable.NewBlank(modelName, cursor)
		if _, err := s.Registry.Add(m); err != nil {
			return zygo.SexpNull, fmt.Errorf("new-cable: %w", err)
		}
		if err := s.Registry.Select(m.Name); err != nil {
			return zygo.SexpNull, fmt.Errorf("new-cable: %w", err)
		}
		return strResult(m.Name), nil
	})

	// (select "name")
	env.AddFunction("select", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("select requires a model name")
		}
		modelName, err := argString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		if err := s.Registry.Select(modelName); err != nil {
			return zygo.SexpNull, fmt.Errorf("select: %w", err)
		}
		return strResult(modelName), nil
	})

	// (extrude 3 (vec3 1 0 0)) adds a vertex joined to vertex 3 and
	// returns its index.
	env.AddFunction("extrude", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("requires a vertex and a position")
		}
		from, err := argInt(args[0])
		if err != nil {
			return nil, err
		}
		p, _, err := argPosition(args[1:])
		if err != nil {
			return nil, err
		}
		i, err := m.Mesh.Extrude(from, p)
		if err != nil {
			return nil, err
		}
		return intResult(i), nil
	}))

	// (connect 0 4)
	env.AddFunction("connect", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := vertexPair(args)
		if err != nil {
			return nil, err
		}
		if err := m.Mesh.AddEdge(a, b); err != nil {
			return nil, err
		}
		return zygo.SexpNull, nil
	}))

	// (disconnect 0 4) returns whether an edge was removed.
	env.AddFunction("disconnect", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		a, b, err := vertexPair(args)
		if err != nil {
			return nil, err
		}
		return &zygo.SexpBool{Val: m.Mesh.DeleteEdge(a, b)}, nil
	}))

	// (delete-vertex 2)
	env.AddFunction("delete_vertex", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires a vertex")
		}
		i, err := argInt(args[0])
		if err != nil {
			return nil, err
		}
		if err := m.Mesh.DeleteVertex(i); err != nil {
			return nil, err
		}
		return zygo.SexpNull, nil
	}))

	// (move 2 (vec3 0 0 5)) places vertex 2 in model space.
	env.AddFunction("move", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("requires a vertex and a position")
		}
		i, err := argInt(args[0])
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= m.NumVertices() {
			return nil, fmt.Errorf("vertex index %d out of range [0,%d)", i, m.NumVertices())
		}
		p, _, err := argPosition(args[1:])
		if err != nil {
			return nil, err
		}
		m.Mesh.SetPosition(i, p)
		return zygo.SexpNull, nil
	}))

	// (set-radius 2 0.75)
	env.AddFunction("set_radius", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("requires a vertex and a radius")
		}
		i, err := argInt(args[0])
		if err != nil {
			return nil, err
		}
		if i < 0 || i >= m.NumVertices() {
			return nil, fmt.Errorf("vertex index %d out of range [0,%d)", i, m.NumVertices())
		}
		r, err := argNumber(args[1])
		if err != nil {
			return nil, err
		}
		m.SetRadius(i, morph.RadiusFromStored(r))
		return zygo.SexpNull, nil
	}))

	// (reconcile) relabels the active model and returns its component count.
	env.AddFunction("reconcile", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		rep := cable.Reconcile(m)
		if rep.Components > 1 {
			logger.Warn("cable model is not connected", "name", m.Name, "components", rep.Components)
		}
		return intResult(rep.Components), nil
	}))

	// (make-spheres) emits one radius sphere per vertex.
	env.AddFunction("make_spheres", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		p := cable.EmitProxies(m, s.Scene, s.DefaultRadius)
		return intResult(p.Len()), nil
	}))

	// (move-sphere 3 (vec3 1 2 3) :radius 0.5) edits the proxy of id 3.
	env.AddFunction("move_sphere", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := splitArgs(args)
		if len(pa.pos) < 2 {
			return nil, fmt.Errorf("requires a vertex id and a position")
		}
		id, err := argInt(pa.pos[0])
		if err != nil {
			return nil, err
		}
		p, _, err := argPosition(pa.pos[1:])
		if err != nil {
			return nil, err
		}
		radius := -1.0
		if v, ok := pa.kw["radius"]; ok {
			if radius, err = argNumber(v); err != nil {
				return nil, fmt.Errorf("radius: %w", err)
			}
		}
		if m.Proxies().Len() == 0 {
			return nil, fmt.Errorf("cable model %q has no vertex spheres", m.Name)
		}
		oid, ok := m.Proxies().Object(id)
		if !ok {
			return nil, fmt.Errorf("no sphere for vertex id %d", id)
		}
		err = s.Scene.Update(oid, func(o *scene.Object) {
			o.Location = p
			if radius > 0 {
				d := 2 * radius
				o.Dimensions = v3.Vec{X: d, Y: d, Z: d}
			}
		})
		if err != nil {
			return nil, err
		}
		return zygo.SexpNull, nil
	}))

	// (absorb-spheres) copies sphere positions and sizes onto the vertices.
	env.AddFunction("absorb_spheres", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		n, err := cable.AbsorbProxies(m)
		if err != nil {
			return nil, err
		}
		return intResult(n), nil
	}))

	// (hide-spheres) or (hide-spheres false)
	env.AddFunction("hide_spheres", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		hidden := true
		if len(args) > 0 {
			var err error
			if hidden, err = argBool(args[0]); err != nil {
				return nil, err
			}
		}
		if err := cable.HideProxies(m, hidden); err != nil {
			return nil, err
		}
		return zygo.SexpNull, nil
	}))

	// (delete-spheres)
	env.AddFunction("delete_spheres", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		return intResult(cable.DeleteProxies(m)), nil
	}))

	// (export-swc "out.swc") writes the active model.
	env.AddFunction("export_swc", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires a path")
		}
		path, err := argString(args[0])
		if err != nil {
			return nil, err
		}
		points, err := cable.ExportPoints(m)
		if err != nil {
			return nil, err
		}
		lines, err := swc.Serialize(points, s.DefaultRadius)
		if err != nil {
			return nil, err
		}
		written, err := swc.WriteFile(s.path(path), lines)
		if err != nil {
			return nil, err
		}
		res.Exported = append(res.Exported, written)
		return strResult(written), nil
	}))

	// (vertex-count)
	env.AddFunction("vertex_count", withActive(s, func(m *cable.Model, args []zygo.Sexp) (zygo.Sexp, error) {
		return intResult(m.NumVertices()), nil
	}))
}

func vertexPair(args []zygo.Sexp) (int, int, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("requires two vertices, got %d", len(args))
	}
	a, err := argInt(args[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := argInt(args[1])
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
