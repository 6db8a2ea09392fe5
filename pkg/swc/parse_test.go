package swc

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/swcmesher/pkg/morph"
)

const threePoint = `# comment
1 1 0 0 0 2 -1

2 3 0 0 5 1.5 1
3 3 0 0 10 1 2
`

func TestParseSWC(t *testing.T) {
	res, err := Parse(strings.NewReader(threePoint), DialectSWC, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 3 || len(res.Segments) != 2 || len(res.Branches) != 2 {
		t.Fatalf("points %d, segments %d, branches %d", len(res.Points), len(res.Segments), len(res.Branches))
	}
	if res.Segments[0].Parent.ID != 1 || res.Segments[0].Child.ID != 2 {
		t.Errorf("first segment = %d->%d", res.Segments[0].Parent.ID, res.Segments[0].Child.ID)
	}
	s := res.Summary
	if !s.HasData || s.Min.Z != 0 || s.Max.Z != 10 || s.RadiusMin != 1 || s.RadiusMax != 2 {
		t.Errorf("summary = %+v", s)
	}
	if s.NodeCount != 3 || s.SegmentCount != 2 || s.LineCount != 3 {
		t.Errorf("counts = nodes %d, segments %d, lines %d", s.NodeCount, s.SegmentCount, s.LineCount)
	}
	if res.Points[0].Type != morph.TypeSoma || !res.Points[0].IsRoot() {
		t.Errorf("root point = %+v", res.Points[0])
	}
}

func TestParseSWCOrdering(t *testing.T) {
	// Segments follow ascending id, not file order; a later duplicate wins.
	src := "3 3 0 0 10 1 2\n1 1 0 0 0 2 -1\n2 3 0 0 5 1 1\n2 3 0 0 6 1 1\n"
	res, err := Parse(strings.NewReader(src), DialectSWC, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Points) != 3 || res.Points[0].ID != 3 {
		t.Fatalf("points = %+v", res.Points)
	}
	if res.Segments[0].Child.ID != 2 || res.Segments[1].Child.ID != 3 {
		t.Errorf("segment order = %d, %d", res.Segments[0].Child.ID, res.Segments[1].Child.ID)
	}
	if res.Segments[0].Child.Pos.Z != 6 {
		t.Errorf("duplicate label did not replace: z = %g", res.Segments[0].Child.Pos.Z)
	}
}

func TestParseSWCUnresolvedParent(t *testing.T) {
	res, err := Parse(strings.NewReader("1 1 0 0 0 1 -1\n2 3 0 0 5 1 9\n"), DialectSWC, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(res.Segments))
	}
}

func TestParseSWCUnsetRadius(t *testing.T) {
	res, err := Parse(strings.NewReader("1 1 0 0 0 -1 -1\n2 3 0 0 5 1 1\n"), DialectSWC, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Points[0].Radius.IsSet() {
		t.Error("negative radius should decode as unset")
	}
	if res.Summary.RadiusMin != 0 {
		t.Errorf("RadiusMin = %g, want 0 for an unset branch radius", res.Summary.RadiusMin)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		src     string
		line    int
	}{
		{"swc short line", DialectSWC, "1 1 0 0 0 1 -1\n2 3 0 0\n", 2},
		{"swc bad number", DialectSWC, "1 1 0 0 x 1 -1\n", 1},
		{"swc bad label", DialectSWC, "# h\na 1 0 0 0 1 -1\n", 2},
		{"legacy control fields", DialectLegacy, "1 2 3\n", 1},
		{"legacy count", DialectLegacy, "1 two\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), tt.dialect, Options{})
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Line != tt.line {
				t.Errorf("Line = %d, want %d", pe.Line, tt.line)
			}
		})
	}
}

func TestParseLegacy(t *testing.T) {
	res, err := Parse(strings.NewReader("1 2\nA B C D\nE F G H\n"), DialectLegacy, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Branches) != 1 || len(res.Branches[0]) != 2 {
		t.Fatalf("branches = %v", res.Branches)
	}
	if res.Summary.HasData || res.Summary.Unparsed != 2 {
		t.Errorf("summary = %+v", res.Summary)
	}

	res, err = Parse(strings.NewReader("1 2\n0 0 0 1\n0 0 4 1\n2 1\n9 9 9 -1\n"), DialectLegacy, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Branches) != 2 || len(res.Warnings) != 1 {
		t.Fatalf("branches %d, warnings %v", len(res.Branches), res.Warnings)
	}
	if res.Summary.RadiusMin != -1 || res.Summary.Max.X != 9 {
		t.Errorf("summary = %+v", res.Summary)
	}
}

func TestParseNBF(t *testing.T) {
	src := `Branch
Node 0 0 0 1
Node 0 0 2 1
Branch
Branch
Node 1 0 0 0.5
Node 2 0 0 0.5
Node 3 0 0 0.5
`
	res, err := Parse(strings.NewReader(src), DialectNBF, Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Branches) != 2 {
		t.Fatalf("branches = %d, want 2 (empty chains dropped)", len(res.Branches))
	}
	if len(res.Branches[1]) != 3 || res.Summary.NodeCount != 5 {
		t.Errorf("second branch %d entries, nodes %d", len(res.Branches[1]), res.Summary.NodeCount)
	}
	if res.Summary.Max.X != 3 || res.Summary.Max.Z != 2 {
		t.Errorf("max = %+v", res.Summary.Max)
	}
}

func TestSegmentLimit(t *testing.T) {
	res, err := Parse(strings.NewReader(threePoint), DialectSWC, Options{SegmentLimit: 1})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(res.Segments) != 1 || len(res.Branches) != 1 {
		t.Fatalf("segments %d, branches %d", len(res.Segments), len(res.Branches))
	}
	if res.Summary.Max.Z != 5 {
		t.Errorf("analysis should see only the kept segments: max z = %g", res.Summary.Max.Z)
	}
	if len(res.Points) != 3 {
		t.Errorf("points are not truncated: %d", len(res.Points))
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cell.swc.txt")
	if err := os.WriteFile(path, []byte(threePoint), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := ParseFile(path, Options{})
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if res.Dialect != DialectSWC || len(res.Segments) != 2 {
		t.Errorf("dialect %v, %d segments", res.Dialect, len(res.Segments))
	}

	bad := filepath.Join(dir, "bad.swc")
	if err := os.WriteFile(bad, []byte("1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err = ParseFile(bad, Options{})
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Path != bad || !strings.HasPrefix(err.Error(), bad+":1:") {
		t.Errorf("err = %v", err)
	}

	if _, err := ParseFile(filepath.Join(dir, "missing.swc"), Options{}); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		path string
		want Dialect
	}{
		{"a.swc", DialectSWC},
		{"dir/a.swc.txt", DialectSWC},
		{"a.nbf", DialectNBF},
		{"a.txt", DialectLegacy},
		{"a", DialectLegacy},
	}
	for _, tt := range tests {
		if got := DetectDialect(tt.path); got != tt.want {
			t.Errorf("DetectDialect(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"/data/pyr.swc":  "pyr",
		"pyr.swc.txt":    "pyr",
		`C:\cells\a.nbf`: "a",
		"plain":          "plain",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}
