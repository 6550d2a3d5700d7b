// Package player implements the playback scheduler: the loop that pulls
// decoded rasters, resamples them to the terminal, renders them and paces
// the whole cycle against a fixed frame interval.
//
// The scheduler depends only on small interfaces ([Source], [Renderer],
// [ggplay.Resampler], [Clock]) and a channel of [Event] values, so it runs
// unchanged against the real terminal and decoder or against fakes.
//
// # Pacing
//
// With elapsed = now - anchor and expected = floor(elapsed / interval),
// every tick while playing:
//
//  1. reads one frame; end of stream pauses playback,
//  2. if frame+1 < expected, drops the frame's render work and returns,
//  3. if nothing changed since the last render, returns,
//  4. otherwise resamples and renders, sleeps until the frame's slot
//     (anchor + frame*interval) if it is early, and advances the frame.
//
// Toggling pause resets frame to 0 and anchor to now in both directions.
package player
