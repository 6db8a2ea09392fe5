package store

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func openTemp(t *testing.T) (*Workspace, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workspace.db")
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w, path
}

func testRegistry(t *testing.T) *cable.Registry {
	t.Helper()
	reg := cable.NewRegistry(log.New(io.Discard))

	a := cable.NewBlank("a", v3.Vec{Z: 1})
	if _, err := a.Mesh.Extrude(1, v3.Vec{X: 5, Z: 1}); err != nil {
		t.Fatal(err)
	}
	a.SetRadius(0, morph.R(0.75))
	a.Placement.Location = v3.Vec{X: 10}
	a.Placement.Rotation = v3.Vec{Z: 90}

	b := cable.FromPoints("b", []morph.Point{
		{ID: 1, Type: morph.TypeSoma, Pos: v3.Vec{}, Radius: morph.R(3), Parent: -1},
		{ID: 2, Type: morph.TypeAxon, Pos: v3.Vec{Y: 4}, Radius: morph.Unset(), Parent: 1},
	})
	for _, m := range []*cable.Model{a, b} {
		if _, err := reg.Add(m); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.Select("a"); err != nil {
		t.Fatal(err)
	}
	return reg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	w, _ := openTemp(t)
	reg := testRegistry(t)
	if err := w.Save(reg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := w.Load(log.New(io.Discard))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("Len = %d, want 2", got.Len())
	}
	active, err := got.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active.Name != "a" {
		t.Errorf("active = %q, want a", active.Name)
	}

	for _, want := range reg.Models() {
		m, ok := got.Get(want.Name)
		if !ok {
			t.Fatalf("model %q missing", want.Name)
		}
		if m.NumVertices() != want.NumVertices() {
			t.Fatalf("%s: vertices = %d, want %d", want.Name, m.NumVertices(), want.NumVertices())
		}
		for i := 0; i < m.NumVertices(); i++ {
			if m.Point(i) != want.Point(i) {
				t.Errorf("%s: vertex %d = %+v, want %+v", want.Name, i, m.Point(i), want.Point(i))
			}
		}
		if len(m.Mesh.Edges()) != len(want.Mesh.Edges()) {
			t.Errorf("%s: edges = %v, want %v", want.Name, m.Mesh.Edges(), want.Mesh.Edges())
		}
		if m.Placement != want.Placement {
			t.Errorf("%s: placement = %+v, want %+v", want.Name, m.Placement, want.Placement)
		}
	}

	// The extruded vertex of "a" has no id yet and must still need a
	// reconcile after the round trip.
	if !cable.NeedsReconcile(active) {
		t.Error("restored model lost its pending reconcile")
	}
}

func TestModelIDsAreStable(t *testing.T) {
	w, _ := openTemp(t)
	reg := testRegistry(t)
	if err := w.Save(reg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, err := w.Models()
	if err != nil {
		t.Fatalf("Models: %v", err)
	}

	if _, err := reg.RemoveActive(); err != nil {
		t.Fatal(err)
	}
	if err := w.Save(reg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := w.Models()
	if err != nil {
		t.Fatalf("Models: %v", err)
	}
	if len(second) != 1 || second[0].Name != "b" {
		t.Fatalf("models after remove = %+v", second)
	}
	if second[0].UID != first[1].UID {
		t.Errorf("uid of b changed from %s to %s", first[1].UID, second[0].UID)
	}
	if !second[0].Active {
		t.Error("b should be active after removing a")
	}
	if second[0].Vertices != 2 || second[0].Edges != 1 {
		t.Errorf("counts = %d vertices %d edges, want 2 and 1", second[0].Vertices, second[0].Edges)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workspace.db")
	w, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := w.Save(testRegistry(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	w2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer w2.Close()
	reg, err := w2.Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len = %d, want 2", reg.Len())
	}
}

func TestEmptyWorkspace(t *testing.T) {
	w, _ := openTemp(t)
	reg, err := w.Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len = %d, want 0", reg.Len())
	}
	if _, err := reg.Active(); err != cable.ErrNoActiveModel {
		t.Errorf("Active err = %v, want ErrNoActiveModel", err)
	}
}
