// Package term draws rasters on a terminal with half-block glyphs and turns
// terminal input into player events.
//
// Each glyph covers two vertical pixels: U+2580 UPPER HALF BLOCK painted with
// the top pixel as foreground and the bottom pixel as background. A raster of
// height h therefore occupies (h+1)/2 rows. When h is odd the last row has no
// bottom pixel and keeps the terminal's default background.
//
// The package is built on tcell, which owns raw mode, the alternate screen
// and output buffering. [Session] wraps a tcell.Screen and [Renderer] writes
// into it.
package term
