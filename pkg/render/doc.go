// Package render turns layer data and animation frames into image
// formats.
//
// # Overview
//
// The rendering pipeline consumes the flat geometry records produced by
// the layout pipeline and emits visual outputs:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Radial tree snapshots and frames (in [svg] subpackage)
//   - Node-link topology diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats
// using the external rsvg-convert tool (from librsvg). Both the svg and
// nodelink renderers feed into them.
//
//	img := svg.RenderLayout(layerData, opts...)
//	pdf, err := render.ToPDF(img)
//	png, err := render.ToPNG(img, 2.0)  // 2x scale
//
// # Radial Snapshots
//
// The [svg] subpackage renders a laid-out tree, or one interpolated
// frame of a transition, as a standalone SVG: branch paths, dashed
// label extensions, node circles, and rotated taxon labels.
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders a tree's topology as a directed
// graph using Graphviz, for inspecting split structure independent of
// the radial geometry.
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	img, err := nodelink.RenderSVG(dot)
//
// [svg]: github.com/phylomovie/phylomovie/pkg/render/svg
// [nodelink]: github.com/phylomovie/phylomovie/pkg/render/nodelink
package render
