// Package scene is the object registry of the modeling host: named
// renderable objects (proxy spheres, line skeletons, surfaces) with a
// location, an extent and a visibility flag. Memory is the in-process
// implementation used by the CLI and the script engine.
package scene

import (
	"fmt"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ObjectID is a stable handle to a scene object. IDs are never reused.
type ObjectID uint64

// Kind enumerates the object types the host can hold.
type Kind int

const (
	KindSphere  Kind = iota // radius proxy
	KindLines               // line skeleton
	KindSurface             // polygonized implicit surface
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindLines:
		return "lines"
	case KindSurface:
		return "surface"
	default:
		return "unknown"
	}
}

// Object is a snapshot of one scene object.
type Object struct {
	ID         ObjectID
	Name       string
	Kind       Kind
	Location   v3.Vec
	Dimensions v3.Vec // full bounding box extents
	Hidden     bool
}

// Scene is the host registry the editing workflow consumes.
type Scene interface {
	AddSphere(name string, center v3.Vec, radius float64) ObjectID
	Get(id ObjectID) (Object, bool)
	Lookup(name string) (ObjectID, bool)
	Update(id ObjectID, fn func(o *Object)) error
	Delete(id ObjectID) error
	Objects() []Object
}

// Memory is an in-memory Scene. It is not safe for concurrent use; the
// host serializes user actions.
type Memory struct {
	next    ObjectID
	objects map[ObjectID]*Object
	names   map[string]ObjectID
}

var _ Scene = (*Memory)(nil)

// NewMemory returns an empty scene.
func NewMemory() *Memory {
	return &Memory{
		objects: make(map[ObjectID]*Object),
		names:   make(map[string]ObjectID),
	}
}

// AddSphere creates a sphere object. A name already in use gets a numeric
// suffix, the way the host disambiguates duplicate names.
func (m *Memory) AddSphere(name string, center v3.Vec, radius float64) ObjectID {
	m.next++
	d := 2 * radius
	o := &Object{
		ID:         m.next,
		Name:       m.uniqueName(name),
		Kind:       KindSphere,
		Location:   center,
		Dimensions: v3.Vec{X: d, Y: d, Z: d},
	}
	m.objects[o.ID] = o
	m.names[o.Name] = o.ID
	return o.ID
}

func (m *Memory) uniqueName(name string) string {
	if _, taken := m.names[name]; !taken {
		return name
	}
	for i := 1; ; i++ {
		n := fmt.Sprintf("%s.%03d", name, i)
		if _, taken := m.names[n]; !taken {
			return n
		}
	}
}

// Get returns a copy of the object with the given id.
func (m *Memory) Get(id ObjectID) (Object, bool) {
	o, ok := m.objects[id]
	if !ok {
		return Object{}, false
	}
	return *o, true
}

// Lookup finds an object by exact name.
func (m *Memory) Lookup(name string) (ObjectID, bool) {
	id, ok := m.names[name]
	return id, ok
}

// Update applies fn to the stored object. Renames are tracked.
func (m *Memory) Update(id ObjectID, fn func(o *Object)) error {
	o, ok := m.objects[id]
	if !ok {
		return fmt.Errorf("scene: no object %d", id)
	}
	old := o.Name
	fn(o)
	o.ID = id
	if o.Name != old {
		delete(m.names, old)
		o.Name = m.uniqueName(o.Name)
		m.names[o.Name] = id
	}
	return nil
}

// Delete removes an object.
func (m *Memory) Delete(id ObjectID) error {
	o, ok := m.objects[id]
	if !ok {
		return fmt.Errorf("scene: no object %d", id)
	}
	delete(m.names, o.Name)
	delete(m.objects, id)
	return nil
}

// Objects returns all objects ordered by id.
func (m *Memory) Objects() []Object {
	out := make([]Object, 0, len(m.objects))
	for _, o := range m.objects {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
