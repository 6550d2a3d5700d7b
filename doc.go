// Package ggplay plays video inside a terminal.
//
// # Overview
//
// ggplay decodes a video with an external ffmpeg process, resamples every
// frame on the GPU to fit the terminal grid and prints the result as
// half-block glyphs ("▀"), two image rows per terminal row. The foreground
// color of a glyph carries the upper pixel, the background color the lower.
//
// This package holds the data model shared by the engines, the renderer and
// the playback scheduler:
//
//   - [Raster]: interleaved 8-bit RGBA samples, row-major, stride width*4
//   - [Geometry]: a width/height pair in pixels or terminal cells
//   - [FilterKind] and [FilterParams]: the resampling kernel selection
//   - [Resampler]: the engine contract implemented by internal/gpu and
//     internal/software
//
// # Engines
//
// The GPU engine runs a single WGSL compute shader over 8x8 destination
// tiles. The software engine implements the same per-filter contract on the
// CPU with the same tile partitioning and is selected explicitly with
// --engine=cpu; the GPU engine never falls back to it on its own.
//
// # Logging
//
// ggplay is silent by default. Call [SetLogger] to enable log output; the
// internal packages share the logger returned by [Logger].
package ggplay
