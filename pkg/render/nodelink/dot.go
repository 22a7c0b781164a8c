// Package nodelink renders a tree's topology as a Graphviz node-link
// diagram. Unlike the radial snapshots, node-link output shows split
// structure and branch lengths as plain labels, which is handy when
// debugging key correspondence between trees.
package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/phylomovie/phylomovie/pkg/render"
	"github.com/phylomovie/phylomovie/pkg/tree"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes branch lengths and split-index counts in node
	// labels. When false, only leaf names are shown.
	Detailed bool
}

// ToDOT converts a tree to Graphviz DOT format for node-link
// visualization. The resulting DOT string can be rendered using
// [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Internal nodes are rendered as small filled points; leaves carry
// their taxon names. Node IDs are the stable entity keys, so diagrams
// of consecutive trees in a movie can be compared by ID.
func ToDOT(root *tree.Node, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph tree {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontsize=12];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("\n")

	root.Each(func(n *tree.Node) {
		fmt.Fprintf(&buf, "  %q [%s];\n", tree.NodeKey(n), fmtAttrs(n, opts.Detailed))
	})

	buf.WriteString("\n")
	root.Each(func(n *tree.Node) {
		for _, c := range n.Children {
			if opts.Detailed {
				fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
					tree.NodeKey(n), tree.NodeKey(c), strconv.FormatFloat(c.Length, 'g', 4, 64))
			} else {
				fmt.Fprintf(&buf, "  %q -> %q;\n", tree.NodeKey(n), tree.NodeKey(c))
			}
		}
	})

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *tree.Node, detailed bool) string {
	if !n.IsLeaf() {
		label := ""
		if detailed && len(n.SplitIndices) > 0 {
			label = fmt.Sprintf("%d splits", len(n.SplitIndices))
		}
		return fmt.Sprintf("shape=point, width=0.08, label=%q", label)
	}
	return fmt.Sprintf("shape=box, style=\"rounded,filled\", fillcolor=white, label=%q", n.Name)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
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
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPDF].
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// This is a convenience wrapper around [RenderSVG] and [render.ToPNG].
//
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
