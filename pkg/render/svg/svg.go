// Package svg renders laid-out trees and interpolated frames as
// standalone SVG documents. The output mirrors what a GPU renderer
// would draw: branch paths, dashed label extensions, node circles, and
// taxon labels riding the extension ring.
package svg

import (
	"bytes"
	"fmt"
	"math"

	"github.com/phylomovie/phylomovie/pkg/layout"
	"github.com/phylomovie/phylomovie/pkg/morph"
)

// Style holds the visual parameters of a rendering.
type Style struct {
	Width       float64
	Height      float64
	Background  string
	LinkStroke  string
	StrokeWidth float64
	NodeFill    string
	LeafFill    string
	FontSize    float64
	FontFamily  string
}

// DefaultStyle matches the on-screen defaults.
func DefaultStyle() Style {
	return Style{
		Width:       800,
		Height:      600,
		Background:  "#ffffff",
		LinkStroke:  "#2d2d2d",
		StrokeWidth: 1.5,
		NodeFill:    "#6b6b6b",
		LeafFill:    "#1f77b4",
		FontSize:    12,
		FontFamily:  "sans-serif",
	}
}

type Option func(*Style)

func WithSize(w, h float64) Option     { return func(s *Style) { s.Width, s.Height = w, h } }
func WithStrokeWidth(w float64) Option { return func(s *Style) { s.StrokeWidth = w } }
func WithFontSize(size float64) Option { return func(s *Style) { s.FontSize = size } }
func WithBackground(color string) Option {
	return func(s *Style) { s.Background = color }
}

// RenderLayout renders one static tree.
func RenderLayout(ld *layout.LayerData, opts ...Option) []byte {
	s := applyOptions(opts)
	var buf bytes.Buffer
	openDocument(&buf, s)

	for _, l := range ld.Links {
		writePath(&buf, s, l.Path[:], 1)
	}
	for _, e := range ld.Extensions {
		writeExtension(&buf, s, e.Path, 1)
	}
	for _, n := range ld.Nodes {
		writeNode(&buf, s, n, 1)
	}
	for _, l := range ld.Labels {
		writeLabel(&buf, s, l, 1)
	}

	closeDocument(&buf)
	return buf.Bytes()
}

// RenderFrame renders one interpolated frame, honoring per-entity
// opacities so entering and exiting elements fade.
func RenderFrame(f *morph.Frame, opts ...Option) []byte {
	s := applyOptions(opts)
	var buf bytes.Buffer
	openDocument(&buf, s)

	for _, l := range f.Links {
		writePath(&buf, s, l.Path[:], l.Opacity)
	}
	for _, e := range f.Extensions {
		writeExtension(&buf, s, e.Path, e.Opacity)
	}
	for _, n := range f.Nodes {
		writeNode(&buf, s, n.NodeRecord, n.Opacity)
	}
	for _, l := range f.Labels {
		writeLabel(&buf, s, l.LabelRecord, l.Opacity)
	}

	closeDocument(&buf)
	return buf.Bytes()
}

func applyOptions(opts []Option) Style {
	s := DefaultStyle()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// openDocument emits the SVG header and a group that moves the origin
// to the center of the canvas, where the radial layout's origin lives.
func openDocument(buf *bytes.Buffer, s Style) {
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)
	fmt.Fprintf(buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", s.Background)
	fmt.Fprintf(buf, `  <g transform="translate(%.1f,%.1f)">`+"\n", s.Width/2, s.Height/2)
}

func closeDocument(buf *bytes.Buffer) {
	buf.WriteString("  </g>\n</svg>\n")
}

func writePath(buf *bytes.Buffer, s Style, points [][2]float64, opacity float64) {
	if len(points) == 0 || opacity <= 0 {
		return
	}
	var d bytes.Buffer
	fmt.Fprintf(&d, "M %.2f %.2f", points[0][0], points[0][1])
	for _, p := range points[1:] {
		fmt.Fprintf(&d, " L %.2f %.2f", p[0], p[1])
	}
	fmt.Fprintf(buf, `    <path d="%s" fill="none" stroke="%s" stroke-width="%.2f"%s/>`+"\n",
		d.String(), s.LinkStroke, s.StrokeWidth, opacityAttr(opacity))
}

func writeExtension(buf *bytes.Buffer, s Style, path [2][2]float64, opacity float64) {
	if opacity <= 0 {
		return
	}
	fmt.Fprintf(buf, `    <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-dasharray="4 3"%s/>`+"\n",
		path[0][0], path[0][1], path[1][0], path[1][1],
		s.LinkStroke, s.StrokeWidth/2, opacityAttr(opacity*0.6))
}

func writeNode(buf *bytes.Buffer, s Style, n layout.NodeRecord, opacity float64) {
	if opacity <= 0 {
		return
	}
	fill := s.NodeFill
	if n.IsLeaf {
		fill = s.LeafFill
	}
	fmt.Fprintf(buf, `    <circle id="%s" cx="%.2f" cy="%.2f" r="%.2f" fill="%s"%s/>`+"\n",
		n.Key, n.Position[0], n.Position[1], n.RadiusPx, fill, opacityAttr(opacity))
}

func writeLabel(buf *bytes.Buffer, s Style, l layout.LabelRecord, opacity float64) {
	if opacity <= 0 || l.Text == "" {
		return
	}
	deg := l.Rotation * 180 / math.Pi
	anchor := l.TextAnchor
	// Keep labels upright on the left half of the circle.
	if math.Cos(l.Rotation) < 0 {
		deg += 180
	}
	fmt.Fprintf(buf, `    <text transform="translate(%.2f,%.2f) rotate(%.1f)" text-anchor="%s" font-size="%.1f" font-family="%s" dominant-baseline="middle"%s>%s</text>`+"\n",
		l.Position[0], l.Position[1], deg, anchor, s.FontSize, s.FontFamily, opacityAttr(opacity), escapeText(l.Text))
}

func opacityAttr(opacity float64) string {
	if opacity >= 1 {
		return ""
	}
	return fmt.Sprintf(` opacity="%.3f"`, opacity)
}

func escapeText(text string) string {
	var buf bytes.Buffer
	for _, r := range text {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
