package cable

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// rawModel builds an unlabeled cable model with n vertices on the X axis
// and the given edges, as if drawn by hand in the editor.
func rawModel(t *testing.T, n int, edges ...[2]int) *Model {
	t.Helper()
	mesh := newCableMesh()
	for i := 0; i < n; i++ {
		mesh.AddVertex(v3.Vec{X: float64(i)})
	}
	for _, e := range edges {
		if err := mesh.AddEdge(e[0], e[1]); err != nil {
			t.Fatalf("AddEdge(%d, %d): %v", e[0], e[1], err)
		}
	}
	m, err := NewModel("raw", mesh)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

// labels returns the id and parent of every vertex in index order.
func labels(m *Model) (ids, parents []int) {
	for i := 0; i < m.NumVertices(); i++ {
		p := m.Point(i)
		ids = append(ids, p.ID)
		parents = append(parents, p.Parent)
	}
	return ids, parents
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
