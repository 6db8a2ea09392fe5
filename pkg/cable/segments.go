package cable

import (
	"fmt"
	"sort"

	"github.com/chazu/swcmesher/pkg/morph"
)

// Segments reads the model's stored labeling as parent-to-child segments in
// ascending child id, the same ordering an SWC parse produces. Coordinates
// are local; unset radii become defaultRadius. A positive limit truncates
// the list.
func Segments(m *Model, defaultRadius float64, limit int) []morph.Segment {
	byID := make(map[int]morph.Point, m.NumVertices())
	for i := 0; i < m.NumVertices(); i++ {
		p := m.Point(i)
		p.Radius = morph.R(p.Radius.Or(defaultRadius))
		byID[p.ID] = p
	}
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var segs []morph.Segment
	for _, id := range ids {
		child := byID[id]
		parent, ok := byID[child.Parent]
		if !ok || child.Parent == morph.RootParent {
			continue
		}
		segs = append(segs, morph.Segment{Parent: parent, Child: child})
	}
	if limit > 0 && len(segs) > limit {
		segs = segs[:limit]
	}
	return segs
}

// Branches converts segments into two-entry branches for the surface builder.
func Branches(segs []morph.Segment, defaultRadius float64) []morph.Branch {
	out := make([]morph.Branch, len(segs))
	for i, s := range segs {
		out[i] = morph.SegmentBranch(s, defaultRadius)
	}
	return out
}

// ExportPoints returns every vertex as a world-space point ordered by id
// 1..N, reconciling the model first when its labeling is inconsistent.
func ExportPoints(m *Model) ([]morph.Point, error) {
	Ensure(m)
	index := m.idIndex()
	n := m.NumVertices()
	out := make([]morph.Point, 0, n)
	for id := 1; id <= n; id++ {
		i, ok := index[id]
		if !ok {
			return nil, fmt.Errorf("cable: model %q has no vertex with id %d", m.Name, id)
		}
		p := m.Point(i)
		p.Pos = m.WorldPos(i)
		out = append(out, p)
	}
	return out, nil
}
