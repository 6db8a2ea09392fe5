package cable

import (
	"fmt"
	"math"

	"github.com/chazu/swcmesher/pkg/morph"
)

// Severity indicates whether a finding blocks export or is advisory.
type Severity int

const (
	SeverityError   Severity = iota // blocks export and meshing
	SeverityWarning                 // fixed by reconciliation or advisory
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Finding is a single validation finding about one vertex or the model.
type Finding struct {
	Vertex   int // vertex index, -1 for model-level findings
	Message  string
	Severity Severity
}

func (f Finding) Error() string {
	if f.Vertex < 0 {
		return fmt.Sprintf("[%s] %s", f.Severity, f.Message)
	}
	return fmt.Sprintf("[%s] vertex %d: %s", f.Severity, f.Vertex, f.Message)
}

// ValidationResult separates blocking errors from warnings.
type ValidationResult struct {
	Errors   []Finding
	Warnings []Finding
}

// OK reports whether there are no blocking errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate inspects the model without modifying it.
func Validate(m *Model) ValidationResult {
	var all []Finding
	all = append(all, validatePositions(m)...)
	all = append(all, validateIDs(m)...)
	all = append(all, validateParents(m)...)
	all = append(all, validateComponents(m)...)
	all = append(all, validateSegmentLengths(m)...)

	var res ValidationResult
	for _, f := range all {
		if f.Severity == SeverityError {
			res.Errors = append(res.Errors, f)
		} else {
			res.Warnings = append(res.Warnings, f)
		}
	}
	return res
}

// validatePositions rejects NaN and infinite coordinates.
func validatePositions(m *Model) []Finding {
	var out []Finding
	for i := 0; i < m.NumVertices(); i++ {
		p := m.Mesh.Position(i)
		for _, c := range []float64{p.X, p.Y, p.Z} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				out = append(out, Finding{Vertex: i, Message: "position is not finite", Severity: SeverityError})
				break
			}
		}
	}
	return out
}

// validateIDs reports missing, duplicate and out-of-range ids.
func validateIDs(m *Model) []Finding {
	var out []Finding
	n := m.NumVertices()
	seen := make(map[int]int)
	for i := 0; i < n; i++ {
		id, ok := m.ID(i)
		switch {
		case !ok:
			out = append(out, Finding{Vertex: i, Message: "vertex has no id", Severity: SeverityWarning})
			continue
		case id < 1 || id > n:
			out = append(out, Finding{Vertex: i, Message: fmt.Sprintf("id %d outside 1..%d", id, n), Severity: SeverityWarning})
		}
		if first, dup := seen[id]; dup {
			out = append(out, Finding{Vertex: i, Message: fmt.Sprintf("id %d already used by vertex %d", id, first), Severity: SeverityWarning})
			continue
		}
		seen[id] = i
	}
	return out
}

// validateParents reports parent ids that do not resolve or that are not
// backed by an edge.
func validateParents(m *Model) []Finding {
	var out []Finding
	index := m.idIndex()
	for i := 0; i < m.NumVertices(); i++ {
		p := m.Point(i)
		if p.IsRoot() {
			continue
		}
		pi, ok := index[p.Parent]
		if !ok {
			out = append(out, Finding{Vertex: i, Message: fmt.Sprintf("parent id %d does not exist", p.Parent), Severity: SeverityWarning})
			continue
		}
		if !m.Mesh.HasEdge(i, pi) {
			out = append(out, Finding{Vertex: i, Message: fmt.Sprintf("no edge to parent id %d", p.Parent), Severity: SeverityWarning})
		}
	}
	return out
}

// validateComponents warns when the mesh is a forest rather than one tree.
func validateComponents(m *Model) []Finding {
	n := m.NumVertices()
	if n == 0 {
		return nil
	}
	adj := m.Mesh.adjacency()
	seen := make([]bool, n)
	components := 0
	for s := 0; s < n; s++ {
		if seen[s] {
			continue
		}
		components++
		stack := []int{s}
		seen[s] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[cur] {
				if !seen[nb] {
					seen[nb] = true
					stack = append(stack, nb)
				}
			}
		}
	}
	if components > 1 {
		return []Finding{{Vertex: -1, Message: fmt.Sprintf("mesh has %d disconnected components; each becomes its own root", components), Severity: SeverityWarning}}
	}
	return nil
}

// validateSegmentLengths warns about coincident parent and child vertices,
// which mesh as a single blob.
func validateSegmentLengths(m *Model) []Finding {
	var out []Finding
	for _, e := range m.Mesh.edges {
		if m.Mesh.Position(e[0]).Sub(m.Mesh.Position(e[1])).Length() == 0 {
			out = append(out, Finding{Vertex: e[1], Message: fmt.Sprintf("zero-length edge to vertex %d", e[0]), Severity: SeverityWarning})
		}
	}
	return out
}

// TypeCounts counts a model's structure types.
func TypeCounts(m *Model) map[morph.Type]int {
	out := make(map[morph.Type]int)
	for i := 0; i < m.NumVertices(); i++ {
		out[m.Point(i).Type]++
	}
	return out
}
