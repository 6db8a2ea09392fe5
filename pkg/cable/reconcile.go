package cable

import "github.com/chazu/swcmesher/pkg/morph"

// Report describes what a reconciliation did.
type Report struct {
	Relabeled  bool
	Components int // connected components found; > 1 means a forest
	Pruned     int // stale layer entries dropped
	Proxies    int // proxies regenerated
}

// NeedsReconcile reports whether the stored labeling is no longer a
// consistent tree over the current mesh: the ids are not exactly 1..N
// without duplicates, a vertex has no id, or the parent ids disagree with
// the edges.
func NeedsReconcile(m *Model) bool {
	n := m.NumVertices()
	if m.layer(LayerID).Len() != n {
		return true
	}
	seen := make([]bool, n+1)
	byID := make([]int, n+1)
	for i := 0; i < n; i++ {
		id, ok := m.ID(i)
		if !ok || id < 1 || id > n || seen[id] {
			return true
		}
		seen[id] = true
		byID[id] = i
	}

	// Every non-root vertex must be joined to its parent by an edge, and
	// there must be no other edges.
	edges := make(map[Edge]bool, len(m.Mesh.edges))
	for _, e := range m.Mesh.edges {
		edges[e.canonical()] = true
	}
	links := 0
	for i := 0; i < n; i++ {
		p := m.Point(i)
		if p.Parent == morph.RootParent {
			continue
		}
		if p.Parent < 1 || p.Parent > n || !edges[Edge{i, byID[p.Parent]}.canonical()] {
			return true
		}
		links++
	}
	return links != len(edges)
}

// Reconcile relabels the whole mesh breadth-first. Vertex 0 becomes id 1;
// every newly reached neighbour gets the next id and the id of the vertex it
// was reached from as parent. Neighbours are visited in ascending vertex
// index so the result does not depend on edge storage order.
//
// Vertices not reachable from vertex 0 are relabeled the same way, each
// further component rooted at its lowest unvisited index with the root
// parent sentinel, so every vertex always ends with an id in 1..N.
//
// Stale layer entries beyond the vertex count are dropped, and bound
// proxies are rebuilt when any id or parent changed.
func Reconcile(m *Model) Report {
	n := m.NumVertices()
	var rep Report
	if n == 0 {
		rep.Pruned = m.prune()
		return rep
	}

	adj := m.Mesh.adjacency()
	ids := make([]int, n)
	parents := make([]int, n)
	next := 1

	for start := 0; start < n; start++ {
		if ids[start] != 0 {
			continue
		}
		rep.Components++
		ids[start] = next
		parents[start] = morph.RootParent
		next++

		queue := []int{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range adj[cur] {
				if ids[nb] != 0 {
					continue
				}
				ids[nb] = next
				parents[nb] = ids[cur]
				next++
				queue = append(queue, nb)
			}
		}
	}

	idLayer, parentLayer := m.layer(LayerID), m.layer(LayerParent)
	changed := false
	for i := 0; i < n; i++ {
		if v, ok := idLayer.Get(i); !ok || int(v) != ids[i] {
			changed = true
		}
		if v, ok := parentLayer.Get(i); !ok || int(v) != parents[i] {
			changed = true
		}
		idLayer.Set(i, float64(ids[i]))
		parentLayer.Set(i, float64(parents[i]))
	}
	rep.Relabeled = true
	rep.Pruned = m.prune()

	// A graph with a cycle never stops needing reconciliation; leave its
	// proxies alone when the labels come out the same.
	if changed && m.proxies != nil && m.proxies.Len() > 0 {
		rep.Proxies = m.proxies.regenerate(m)
	}
	return rep
}

// Ensure reconciles only when the labeling is inconsistent. Running it twice
// with no edits in between is a no-op the second time.
func Ensure(m *Model) (Report, bool) {
	if !NeedsReconcile(m) {
		return Report{}, false
	}
	return Reconcile(m), true
}

func (m *Model) prune() int {
	n := m.NumVertices()
	dropped := 0
	for _, name := range m.Mesh.LayerNames() {
		l, _ := m.Mesh.Layer(name)
		dropped += l.prune(n)
	}
	return dropped
}
