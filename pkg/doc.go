// Package pkg provides the core libraries for phylomovie tree animation.
//
// # Overview
//
// Phylomovie plays a sequence of phylogenetic trees as a smooth radial
// animation. The pkg directory is organized into five main areas:
//
//  1. [movie] - The movie record: tree sequences, anchor metadata, distances
//  2. [tree], [layout], [morph] - Geometry (keys, radial layout, interpolation)
//  3. [player], [msa] - Playback (timeline, runner, alignment windows)
//  4. [pipeline], [cache] - Orchestration and the cache layers
//  5. [server], [render] - Output surfaces (HTTP frames, images)
//
// # Architecture
//
// The typical data flow through phylomovie:
//
//	Movie JSON (upstream inference service)
//	         ↓
//	movie.Decode → validated tree sequence
//	         ↓
//	pipeline.Runner: transform → layout.Radial → layout.LayerData
//	         ↓                       (cached: LRU + file/redis)
//	morph.Interpolate between consecutive trees
//	         ↓
//	player.Runner / server / render: frames on screen, wire, or disk
//
// Cross-cutting concerns live in [errors] (coded errors), [observability]
// (hook registries), and [settings] (persisted appearance parameters).
//
// [movie]: github.com/phylomovie/phylomovie/pkg/movie
// [tree]: github.com/phylomovie/phylomovie/pkg/tree
// [layout]: github.com/phylomovie/phylomovie/pkg/layout
// [morph]: github.com/phylomovie/phylomovie/pkg/morph
// [player]: github.com/phylomovie/phylomovie/pkg/player
// [msa]: github.com/phylomovie/phylomovie/pkg/msa
// [pipeline]: github.com/phylomovie/phylomovie/pkg/pipeline
// [cache]: github.com/phylomovie/phylomovie/pkg/cache
// [server]: github.com/phylomovie/phylomovie/pkg/server
// [render]: github.com/phylomovie/phylomovie/pkg/render
// [errors]: github.com/phylomovie/phylomovie/pkg/errors
// [observability]: github.com/phylomovie/phylomovie/pkg/observability
// [settings]: github.com/phylomovie/phylomovie/pkg/settings
package pkg
