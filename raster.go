package ggplay

import "fmt"

// Raster is a rectangular buffer of interleaved 8-bit RGBA samples in
// row-major order with a stride of width*4 bytes. A Raster carries no
// dimensions; they travel alongside it as a [Geometry].
//
// Rasters are handed from producer to consumer and are not mutated after
// the handoff.
type Raster []byte

// NewRaster allocates a zeroed raster for g.
func NewRaster(g Geometry) Raster {
	return make(Raster, g.RasterLen())
}

// Check verifies that r holds exactly one g-sized frame.
func (r Raster) Check(g Geometry) error {
	if !g.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidGeometry, g)
	}
	if len(r) != g.RasterLen() {
		return fmt.Errorf("%w: have %d bytes, %s needs %d", ErrRasterSize, len(r), g, g.RasterLen())
	}
	return nil
}

// RGBA returns the samples of pixel (x, y). The caller guarantees the
// coordinates lie inside g.
func (r Raster) RGBA(g Geometry, x, y int) (red, green, blue, alpha uint8) {
	i := (y*g.Width + x) * 4
	return r[i], r[i+1], r[i+2], r[i+3]
}
