package cable

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/chazu/swcmesher/pkg/morph"
	"github.com/chazu/swcmesher/pkg/scene"
)

// ProxySet binds radius spheres in a scene to the vertex ids of one model.
// The binding is an explicit id -> object map, cleared and rebuilt on every
// regenerate; object names are for display only.
type ProxySet struct {
	scene         scene.Scene
	defaultRadius float64
	byID          map[int]scene.ObjectID
}

// Len returns the number of bound proxies.
func (p *ProxySet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byID)
}

// Object returns the scene object bound to id.
func (p *ProxySet) Object(id int) (scene.ObjectID, bool) {
	oid, ok := p.byID[id]
	return oid, ok
}

// IDs returns the bound vertex ids in ascending order.
func (p *ProxySet) IDs() []int {
	out := make([]int, 0, len(p.byID))
	for id := range p.byID {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// ProxyName is the display name of the proxy for id in a model of n
// vertices: the model name, "_vertex_", and the id zero-padded to the width
// of n.
func ProxyName(model string, id, n int) string {
	return fmt.Sprintf("%s_vertex_%0*d", model, len(strconv.Itoa(n)), id)
}

// EmitProxies creates one sphere per vertex at its world position. The
// radius is the stored one, or defaultRadius when unset. Existing proxies of
// the model are destroyed first, and the model is reconciled if needed.
func EmitProxies(m *Model, sc scene.Scene, defaultRadius float64) *ProxySet {
	if m.proxies != nil {
		m.proxies.clear()
		m.proxies = nil
	}
	Ensure(m)

	p := &ProxySet{scene: sc, defaultRadius: defaultRadius}
	p.build(m)
	m.proxies = p
	return p
}

func (p *ProxySet) build(m *Model) int {
	p.byID = make(map[int]scene.ObjectID, m.NumVertices())
	n := m.NumVertices()
	for i := 0; i < n; i++ {
		pt := m.Point(i)
		r := pt.Radius.Or(p.defaultRadius)
		p.byID[pt.ID] = p.scene.AddSphere(ProxyName(m.Name, pt.ID, n), m.WorldPos(i), r)
	}
	return len(p.byID)
}

func (p *ProxySet) clear() {
	for _, oid := range p.byID {
		p.scene.Delete(oid)
	}
	p.byID = nil
}

// regenerate destroys and rebuilds every proxy after the ids changed.
func (p *ProxySet) regenerate(m *Model) int {
	p.clear()
	return p.build(m)
}

// AbsorbProxies copies proxy positions and sizes back onto the model. Ids
// are walked from 1 and the walk stops at the first id without a live
// proxy; only the ids found before that are updated. The size of a proxy is
// the mean of its three bounding box half-extents. Returns the number of
// vertices updated.
func AbsorbProxies(m *Model) (int, error) {
	if m.proxies.Len() == 0 {
		return 0, &PreconditionError{Msg: fmt.Sprintf("cable model %q has no vertex spheres", m.Name)}
	}
	found := make(map[int]scene.Object)
	for id := 1; id <= m.NumVertices(); id++ {
		oid, ok := m.proxies.byID[id]
		if !ok {
			break
		}
		o, ok := m.proxies.scene.Get(oid)
		if !ok {
			break
		}
		found[id] = o
	}

	index := m.idIndex()
	applied := 0
	for id, o := range found {
		i, ok := index[id]
		if !ok {
			continue
		}
		d := o.Dimensions
		m.Mesh.SetPosition(i, m.Placement.ToLocal(o.Location))
		m.SetRadius(i, morph.R((d.X/2+d.Y/2+d.Z/2)/3))
		applied++
	}
	return applied, nil
}

// HideProxies sets the visibility of every proxy of the model.
func HideProxies(m *Model, hidden bool) error {
	if m.proxies.Len() == 0 {
		return nil
	}
	for _, oid := range m.proxies.byID {
		if _, ok := m.proxies.scene.Get(oid); !ok {
			continue // deleted by the user
		}
		if err := m.proxies.scene.Update(oid, func(o *scene.Object) { o.Hidden = hidden }); err != nil {
			return err
		}
	}
	return nil
}

// DeleteProxies destroys every proxy of the model.
func DeleteProxies(m *Model) int {
	n := m.proxies.Len()
	if m.proxies != nil {
		m.proxies.clear()
		m.proxies = nil
	}
	return n
}
