package swc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/swcmesher/pkg/morph"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestSerialize(t *testing.T) {
	points := []morph.Point{
		{ID: 1, Type: morph.TypeSoma, Pos: v3.Vec{X: 0.5}, Radius: morph.R(3), Parent: 7},
		{ID: 2, Type: morph.TypeDendrite, Pos: v3.Vec{Y: -1.25}, Parent: 1},
	}
	lines, err := Serialize(points, 1)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []string{Header, "1 1 0.5 0 0 3 -1", "2 3 0 -1.25 0 1 1"}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Errorf("lines =\n%s\nwant\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestSerializeRejectsUnordered(t *testing.T) {
	_, err := Serialize([]morph.Point{{ID: 2, Parent: morph.RootParent}}, 1)
	if err == nil {
		t.Fatal("expected error for points out of id order")
	}
}

func TestExportPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"out.swc", "out.swc"},
		{"out", "out.swc"},
		{"out.txt", "out.txt.swc"},
	}
	for _, tt := range tests {
		if got := ExportPath(tt.in); got != tt.want {
			t.Errorf("ExportPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	res, err := Parse(strings.NewReader(threePoint), DialectSWC, Options{})
	if err != nil {
		t.Fatal(err)
	}
	lines, err := Serialize(res.Points, 1)
	if err != nil {
		t.Fatal(err)
	}
	path, err := WriteFile(filepath.Join(t.TempDir(), "copy"), lines)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if !strings.HasSuffix(path, "copy.swc") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	again, err := Parse(strings.NewReader(string(data)), DialectSWC, Options{})
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(again.Points) != len(res.Points) {
		t.Fatalf("points = %d, want %d", len(again.Points), len(res.Points))
	}
	for i := range res.Points {
		if again.Points[i] != res.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, again.Points[i], res.Points[i])
		}
	}
}
