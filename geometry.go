package ggplay

import (
	"fmt"
	"math"
)

// Geometry is a width/height pair. Depending on context it counts pixels
// (rasters) or character cells (the terminal grid).
type Geometry struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (g Geometry) Valid() bool {
	return g.Width > 0 && g.Height > 0
}

// Pixels returns Width*Height.
func (g Geometry) Pixels() int {
	return g.Width * g.Height
}

// RasterLen returns the byte length of an RGBA raster of this size.
func (g Geometry) RasterLen() int {
	return g.Width * g.Height * 4
}

// Rows returns the number of terminal rows needed to show a raster of this
// size with two pixel rows per glyph.
func (g Geometry) Rows() int {
	return (g.Height + 1) / 2
}

func (g Geometry) String() string {
	return fmt.Sprintf("%dx%d", g.Width, g.Height)
}

// FitGeometry returns the largest aspect-preserving raster size for src that
// fits a terminal of term cells. Each cell holds two vertical pixels, so the
// height budget is 2*term.Height pixels.
//
//	scale = min(term.Width/src.Width, 2*term.Height/src.Height)
//	out   = round(src * scale)
//
// Both output dimensions are clamped to at least 1. Invalid input yields the
// zero Geometry.
func FitGeometry(src, term Geometry) Geometry {
	if !src.Valid() || !term.Valid() {
		return Geometry{}
	}
	widthScale := float64(term.Width) / float64(src.Width)
	heightScale := 2 * float64(term.Height) / float64(src.Height)
	scale := math.Min(widthScale, heightScale)

	w := int(math.Round(float64(src.Width) * scale))
	h := int(math.Round(float64(src.Height) * scale))
	return Geometry{Width: max(w, 1), Height: max(h, 1)}
}
