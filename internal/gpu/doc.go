// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu implements the compute-shader resampling engine on the Pure Go
// gogpu/wgpu HAL (zero CGO).
//
// # Pipeline
//
// A single compute pipeline is built once at startup from
// shaders/resample.wgsl. Each Resample call uploads the source raster into
// a read-only storage buffer and a 32-byte uniform:
//
//	struct Params {
//	    in_w, in_h, out_w, out_h: u32,
//	    filter: u32,      // ggplay.FilterKind ordinal
//	    strength: f32,
//	    max_radius: f32,  // kernel support cap in source pixels
//	    _pad: u32,
//	}
//
// and dispatches ceil(out_w/8) x ceil(out_h/8) workgroups of 8x8
// invocations. Every invocation writes exactly one destination pixel, so
// workgroups are independent. The result is copied into a staging buffer,
// the queue is fenced (5s timeout) and the bytes are read back.
//
// # Devices
//
// [New] enumerates Vulkan adapters and prefers a discrete or integrated GPU.
// When no adapter can be opened it returns an error wrapping
// [ggplay.ErrNoDevice]; callers must not fall back to another engine.
// [Resampler.SetDeviceProvider] switches to a device owned by a host
// application instead.
//
// Build with -tags nogpu to exclude this package's engine entirely.
package gpu
