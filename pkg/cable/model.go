package cable

import (
	"fmt"
	"math"

	"github.com/chazu/swcmesher/pkg/morph"
	"github.com/chazu/swcmesher/pkg/swc"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Model is one editable cable model: a named mesh plus its placement in the
// scene. Proxies, when present, are the radius spheres bound to its ids.
type Model struct {
	Name      string
	Mesh      *Mesh
	Placement Placement

	// Skipped lists the parent links FromPoints could not turn into edges,
	// such as the second half of a two-point parent cycle. It is not
	// persisted.
	Skipped []SkippedLink

	proxies *ProxySet
}

// SkippedLink is a parent link of point ID that produced no edge.
type SkippedLink struct {
	ID, Parent int
	Err        error
}

// NewModel wraps an existing mesh. The mesh must carry the cable layers.
func NewModel(name string, mesh *Mesh) (*Model, error) {
	if !mesh.HasCableLayers() {
		return nil, &PreconditionError{Msg: fmt.Sprintf("object %q is not a cable model (missing vertex layers)", name)}
	}
	return &Model{Name: name, Mesh: mesh, Placement: Identity()}, nil
}

// NewBlank makes the two-vertex starter model used when drawing a neuron
// from scratch: vertices at cursor -/+ 2 on X, ids 1 and 2, dendrite type,
// radii unset.
func NewBlank(name string, cursor v3.Vec) *Model {
	mesh := newCableMesh()
	a := mesh.AddVertex(cursor.Sub(v3.Vec{X: 2}))
	b := mesh.AddVertex(cursor.Add(v3.Vec{X: 2}))
	mesh.AddEdge(a, b)

	m := &Model{Name: name, Mesh: mesh, Placement: Identity()}
	m.setPoint(a, morph.Point{ID: 1, Type: morph.TypeDendrite, Parent: morph.RootParent})
	m.setPoint(b, morph.Point{ID: 2, Type: morph.TypeDendrite, Parent: 1})
	return m
}

// FromPoints builds a model with one vertex per point, in the given order,
// and one edge per point whose parent id resolves to another point. Links
// the mesh rejects are recorded in Skipped.
func FromPoints(name string, points []morph.Point) *Model {
	mesh := newCableMesh()
	m := &Model{Name: name, Mesh: mesh, Placement: Identity()}

	byID := make(map[int]int, len(points))
	for _, p := range points {
		i := mesh.AddVertex(p.Pos)
		m.setPoint(i, p)
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = i
		}
	}
	for i, p := range points {
		if p.IsRoot() {
			continue
		}
		pi, ok := byID[p.Parent]
		if !ok {
			continue
		}
		if err := mesh.AddEdge(pi, i); err != nil {
			m.Skipped = append(m.Skipped, SkippedLink{ID: p.ID, Parent: p.Parent, Err: err})
		}
	}
	return m
}

// FromSWC builds the line-skeleton model of an SWC parse. The model is
// named after the file: "<base>_cable_model".
func FromSWC(path string, res *swc.Result) (*Model, error) {
	if res.Dialect != swc.DialectSWC {
		return nil, &PreconditionError{Msg: fmt.Sprintf("%s is a %s file; cable models need SWC", path, res.Dialect)}
	}
	return FromPoints(swc.BaseName(path)+"_cable_model", res.Points), nil
}

func newCableMesh() *Mesh {
	mesh := NewMesh()
	for _, n := range RequiredLayers {
		mesh.EnsureLayer(n)
	}
	return mesh
}

func (m *Model) layer(name string) *Layer {
	return m.Mesh.EnsureLayer(name)
}

func (m *Model) setPoint(i int, p morph.Point) {
	m.layer(LayerID).Set(i, float64(p.ID))
	m.layer(LayerParent).Set(i, float64(p.Parent))
	m.layer(LayerType).Set(i, float64(p.Type))
	if p.Radius.IsSet() {
		m.layer(LayerRadius).Set(i, p.Radius.Or(0))
	} else {
		m.layer(LayerRadius).Set(i, -1)
	}
}

// NumVertices returns the vertex count of the model's mesh.
func (m *Model) NumVertices() int { return m.Mesh.NumVertices() }

// ID returns the stored id of vertex i, if any.
func (m *Model) ID(i int) (int, bool) {
	v, ok := m.layer(LayerID).Get(i)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return int(v), true
}

// Point returns vertex i as a point in local coordinates. Missing layer
// values read as: id 0, parent root, type undefined, radius unset.
func (m *Model) Point(i int) morph.Point {
	p := morph.Point{Pos: m.Mesh.Position(i), Parent: morph.RootParent}
	if id, ok := m.ID(i); ok {
		p.ID = id
	}
	if v, ok := m.layer(LayerParent).Get(i); ok {
		p.Parent = int(v)
	}
	if v, ok := m.layer(LayerType).Get(i); ok {
		p.Type = morph.Type(int(v))
	}
	if v, ok := m.layer(LayerRadius).Get(i); ok {
		p.Radius = morph.RadiusFromStored(v)
	}
	return p
}

// SetRadius stores a radius for vertex i.
func (m *Model) SetRadius(i int, r morph.Radius) {
	if r.IsSet() {
		m.layer(LayerRadius).Set(i, r.Or(0))
		return
	}
	m.layer(LayerRadius).Set(i, -1)
}

// SetType stores the structure type of vertex i.
func (m *Model) SetType(i int, t morph.Type) {
	m.layer(LayerType).Set(i, float64(t))
}

// WorldPos returns the world-space position of vertex i.
func (m *Model) WorldPos(i int) v3.Vec {
	return m.Placement.ToWorld(m.Mesh.Position(i))
}

// IndexOf returns the vertex index holding id. When ids are duplicated the
// lowest index wins.
func (m *Model) IndexOf(id int) (int, bool) {
	for i := 0; i < m.NumVertices(); i++ {
		if got, ok := m.ID(i); ok && got == id {
			return i, true
		}
	}
	return -1, false
}

// idIndex maps every stored id to its lowest vertex index.
func (m *Model) idIndex() map[int]int {
	out := make(map[int]int, m.NumVertices())
	for i := 0; i < m.NumVertices(); i++ {
		if id, ok := m.ID(i); ok {
			if _, dup := out[id]; !dup {
				out[id] = i
			}
		}
	}
	return out
}

// Proxies returns the radius proxies bound to the model, or nil.
func (m *Model) Proxies() *ProxySet { return m.proxies }
