package treeviz

import (
	"strings"
	"testing"

	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestToDOT(t *testing.T) {
	m := cable.NewBlank("cell", v3.Vec{})
	if _, err := m.Mesh.Extrude(1, v3.Vec{X: 5}); err != nil {
		t.Fatal(err)
	}

	dot, err := ToDOT(m, Options{})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	for _, want := range []string{
		`digraph "cell" {`,
		`1 [label="1", fillcolor="#95d5b2", shape=doublecircle];`,
		"1 -> 2;",
		"2 -> 3;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "-> 1;") {
		t.Errorf("root has an incoming edge:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	m := cable.FromPoints("c", []morph.Point{
		{ID: 1, Type: morph.TypeSoma, Radius: morph.R(2), Parent: morph.RootParent},
		{ID: 2, Type: morph.TypeAxon, Pos: v3.Vec{Z: 1}, Parent: 1},
	})
	dot, err := ToDOT(m, Options{Detailed: true})
	if err != nil {
		t.Fatalf("ToDOT: %v", err)
	}
	if !strings.Contains(dot, `label="1\nsoma\nr=2"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `label="2\naxon\nr=unset"`) {
		t.Errorf("unset radius label missing:\n%s", dot)
	}
}
