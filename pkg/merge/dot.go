package merge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// DotOptions configures DOT export of a merged network.
type DotOptions struct {
	// Detailed includes coordinates in vertex labels. When false, only
	// a short vertex ID is shown.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT format for debug
// visualization of the merged topology. Vertices of the same connected
// component share a fill color. The result can be rendered with
// [RenderDOTSVG] or [RenderDOTPNG].
func ToDOT(n *Network, opts DotOptions) string {
	compOf := make(map[string]int)
	for ci, edgeIdxs := range n.Components {
		for _, ei := range edgeIdxs {
			compOf[n.Edges[ei].A] = ci
			compOf[n.Edges[ei].B] = ci
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph network {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fontsize=10, width=0.3, fixedsize=true];\n")
	buf.WriteString("\n")

	for _, v := range n.Vertices {
		label := shortID(v.ID)
		if opts.Detailed {
			label = fmt.Sprintf("%s\n(%.3g, %.3g)", shortID(v.ID), v.X, v.Y)
		}
		fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=%q, pos=\"%f,%f!\"];\n",
			v.ID, label, compColor(compOf[v.ID]), v.X, v.Y)
	}

	buf.WriteString("\n")
	for _, e := range n.Edges {
		fmt.Fprintf(&buf, "  %q -- %q [label=%q, fontsize=8];\n", e.A, e.B, shortID(e.LineID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// compColor cycles a small palette so adjacent components are usually
// distinguishable.
func compColor(ci int) string {
	palette := []string{"lightblue", "lightgreen", "lightyellow", "lightpink", "lightgrey", "lightcyan"}
	return palette[ci%len(palette)]
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// RenderDOTSVG renders a DOT graph to SVG using Graphviz.
func RenderDOTSVG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.SVG)
}

// RenderDOTPNG renders a DOT graph to PNG using Graphviz.
func RenderDOTPNG(dot string) ([]byte, error) {
	return renderDOT(dot, graphviz.PNG)
}

func renderDOT(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
