// Package filter computes the per-axis sampling weights shared by the
// resampling engines.
//
// Every supported filter is separable: the weight of a source pixel for a
// destination pixel is the product of an X weight and a Y weight. An [Axis]
// holds, for every destination coordinate along one axis, the list of
// clamped source indices and their normalized weights.
//
// Coordinates follow the pixel-center convention: destination pixel d maps
// to source position (d+0.5)*in/out - 0.5, so an identity resample lands
// exactly on source pixel centers.
//
// The GPU shader in internal/gpu evaluates the same formulas per invocation.
// Changes here must be mirrored there.
package filter
