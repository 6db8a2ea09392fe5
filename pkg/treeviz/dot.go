// Package treeviz draws the reconciled skeleton of a cable model as a
// Graphviz tree: one node per SWC id, one edge per parent link.
package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/chazu/swcmesher/pkg/cable"
	"github.com/chazu/swcmesher/pkg/morph"
)

// Options configures the diagram.
type Options struct {
	// Detailed adds the type name and radius to each label.
	Detailed bool
}

var typeColors = map[morph.Type]string{
	morph.TypeSoma:           "#f4a261",
	morph.TypeAxon:           "#8ecae6",
	morph.TypeDendrite:       "#95d5b2",
	morph.TypeApicalDendrite: "#b5a3e0",
}

// ToDOT converts a cable model to DOT. The model is reconciled first when
// its labeling is stale.
func ToDOT(m *cable.Model, opts Options) (string, error) {
	points, err := cable.ExportPoints(m)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", m.Name)
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	for _, p := range points {
		fmt.Fprintf(&buf, "  %d [%s];\n", p.ID, strings.Join(fmtAttrs(p, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, p := range points {
		if p.IsRoot() || p.ID == 1 {
			continue
		}
		fmt.Fprintf(&buf, "  %d -> %d;\n", p.Parent, p.ID)
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func fmtAttrs(p morph.Point, detailed bool) []string {
	label := fmt.Sprint(p.ID)
	if detailed {
		label = fmt.Sprintf("%d\n%s\nr=%s", p.ID, p.Type, p.Radius)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c, ok := typeColors[p.Type]; ok {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", c))
	}
	if p.IsRoot() {
		attrs = append(attrs, "shape=doublecircle")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
