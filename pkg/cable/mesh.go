package cable

import (
	"fmt"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Layer names attached to every cable model vertex.
const (
	LayerID     = "index_number"
	LayerParent = "parent_index"
	LayerType   = "segment_type"
	LayerRadius = "radius"
)

// RequiredLayers lists the layers that make a mesh a cable model.
var RequiredLayers = []string{LayerID, LayerParent, LayerType, LayerRadius}

// Edge is an undirected pair of vertex indices.
type Edge [2]int

func (e Edge) has(i int) bool { return e[0] == i || e[1] == i }

func (e Edge) other(i int) int {
	if e[0] == i {
		return e[1]
	}
	return e[0]
}

func (e Edge) canonical() Edge {
	if e[0] > e[1] {
		return Edge{e[1], e[0]}
	}
	return e
}

// Layer is sparse per-vertex scalar storage addressed by vertex index.
// Vertices added after the layer was filled have no entry until assigned.
type Layer struct {
	Name string
	data map[int]float64
}

func newLayer(name string) *Layer {
	return &Layer{Name: name, data: make(map[int]float64)}
}

// Get returns the value stored for vertex i.
func (l *Layer) Get(i int) (float64, bool) {
	v, ok := l.data[i]
	return v, ok
}

// Set stores v for vertex i.
func (l *Layer) Set(i int, v float64) { l.data[i] = v }

// Delete drops the entry for vertex i.
func (l *Layer) Delete(i int) { delete(l.data, i) }

// Len returns the number of stored entries.
func (l *Layer) Len() int { return len(l.data) }

// Indices returns the vertex indices holding entries, ascending.
func (l *Layer) Indices() []int {
	out := make([]int, 0, len(l.data))
	for i := range l.data {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// prune drops entries at indices >= n and returns how many were dropped.
func (l *Layer) prune(n int) int {
	dropped := 0
	for i := range l.data {
		if i >= n {
			delete(l.data, i)
			dropped++
		}
	}
	return dropped
}

// shiftDown removes index i and renumbers every higher index down by one.
func (l *Layer) shiftDown(i int) {
	next := make(map[int]float64, len(l.data))
	for k, v := range l.data {
		switch {
		case k < i:
			next[k] = v
		case k > i:
			next[k-1] = v
		}
	}
	l.data = next
}

// Mesh is the mutable vertex/edge graph backing a cable model. Vertices are
// addressed by their current index; deleting a vertex renumbers the ones
// after it, exactly like the host editor does.
type Mesh struct {
	verts  []v3.Vec
	edges  []Edge
	layers map[string]*Layer
}

// NewMesh returns an empty mesh with no layers.
func NewMesh() *Mesh {
	return &Mesh{layers: make(map[string]*Layer)}
}

// NumVertices returns the vertex count.
func (m *Mesh) NumVertices() int { return len(m.verts) }

// Position returns the local position of vertex i.
func (m *Mesh) Position(i int) v3.Vec { return m.verts[i] }

// SetPosition moves vertex i.
func (m *Mesh) SetPosition(i int, p v3.Vec) { m.verts[i] = p }

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p v3.Vec) int {
	m.verts = append(m.verts, p)
	return len(m.verts) - 1
}

// DeleteVertex removes vertex i together with its edges and layer entries.
func (m *Mesh) DeleteVertex(i int) error {
	if err := m.checkIndex(i); err != nil {
		return err
	}
	m.verts = append(m.verts[:i], m.verts[i+1:]...)
	kept := m.edges[:0]
	for _, e := range m.edges {
		if e.has(i) {
			continue
		}
		for k := range e {
			if e[k] > i {
				e[k]--
			}
		}
		kept = append(kept, e)
	}
	m.edges = kept
	for _, l := range m.layers {
		l.shiftDown(i)
	}
	return nil
}

// Edges returns a copy of the edge list in storage order.
func (m *Mesh) Edges() []Edge {
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out
}

// AddEdge connects a and b. Self loops and duplicates are rejected.
func (m *Mesh) AddEdge(a, b int) error {
	if err := m.checkIndex(a); err != nil {
		return err
	}
	if err := m.checkIndex(b); err != nil {
		return err
	}
	if a == b {
		return fmt.Errorf("cable: self edge on vertex %d", a)
	}
	if m.HasEdge(a, b) {
		return fmt.Errorf("cable: edge %d-%d already exists", a, b)
	}
	m.edges = append(m.edges, Edge{a, b})
	return nil
}

// HasEdge reports whether a and b are connected.
func (m *Mesh) HasEdge(a, b int) bool {
	want := Edge{a, b}.canonical()
	for _, e := range m.edges {
		if e.canonical() == want {
			return true
		}
	}
	return false
}

// DeleteEdge disconnects a and b and reports whether an edge was removed.
func (m *Mesh) DeleteEdge(a, b int) bool {
	want := Edge{a, b}.canonical()
	for k, e := range m.edges {
		if e.canonical() == want {
			m.edges = append(m.edges[:k], m.edges[k+1:]...)
			return true
		}
	}
	return false
}

// Extrude adds a vertex at p connected to vertex from.
func (m *Mesh) Extrude(from int, p v3.Vec) (int, error) {
	if err := m.checkIndex(from); err != nil {
		return -1, err
	}
	i := m.AddVertex(p)
	m.edges = append(m.edges, Edge{from, i})
	return i, nil
}

// Neighbors returns the vertices adjacent to i in ascending index order.
func (m *Mesh) Neighbors(i int) []int {
	var out []int
	for _, e := range m.edges {
		if e.has(i) {
			out = append(out, e.other(i))
		}
	}
	sort.Ints(out)
	return out
}

// adjacency builds sorted neighbour lists for every vertex in one pass.
func (m *Mesh) adjacency() [][]int {
	adj := make([][]int, len(m.verts))
	for _, e := range m.edges {
		adj[e[0]] = append(adj[e[0]], e[1])
		adj[e[1]] = append(adj[e[1]], e[0])
	}
	for _, n := range adj {
		sort.Ints(n)
	}
	return adj
}

// Layer returns the named layer.
func (m *Mesh) Layer(name string) (*Layer, bool) {
	l, ok := m.layers[name]
	return l, ok
}

// EnsureLayer returns the named layer, creating it when missing.
func (m *Mesh) EnsureLayer(name string) *Layer {
	if l, ok := m.layers[name]; ok {
		return l
	}
	l := newLayer(name)
	m.layers[name] = l
	return l
}

// LayerNames returns the names of all layers, sorted.
func (m *Mesh) LayerNames() []string {
	out := make([]string, 0, len(m.layers))
	for n := range m.layers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// HasCableLayers reports whether every required layer is present.
func (m *Mesh) HasCableLayers() bool {
	for _, n := range RequiredLayers {
		if _, ok := m.layers[n]; !ok {
			return false
		}
	}
	return true
}

func (m *Mesh) checkIndex(i int) error {
	if i < 0 || i >= len(m.verts) {
		return fmt.Errorf("cable: vertex index %d out of range [0,%d)", i, len(m.verts))
	}
	return nil
}
