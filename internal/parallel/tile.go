// Package parallel splits a destination raster into tiles and resamples
// them concurrently.
//
// Tiles are 8x8 pixels, matching the GPU workgroup size, so the CPU and
// GPU engines partition the output the same way. Every destination pixel is
// computed from the source alone, which makes tiles independent.
package parallel

// Tile size constants. They mirror the compute shader's workgroup size.
const (
	// TileWidth is the width of a tile in pixels.
	TileWidth = 8

	// TileHeight is the height of a tile in pixels.
	TileHeight = 8
)

// Tile is a rectangular region of the destination raster.
// Edge tiles may be smaller than TileWidth x TileHeight.
type Tile struct {
	// X and Y are the tile column and row (0-based).
	X, Y int

	// Width and Height are the actual tile dimensions in pixels.
	Width, Height int
}

// Bounds returns the pixel-space origin and size of the tile.
func (t Tile) Bounds() (x, y, w, h int) {
	return t.X * TileWidth, t.Y * TileHeight, t.Width, t.Height
}

// Contains reports whether the pixel (px, py) lies within the tile.
func (t Tile) Contains(px, py int) bool {
	x, y, w, h := t.Bounds()
	return px >= x && px < x+w && py >= y && py < y+h
}

// Tiles covers a width x height raster with tiles in row-major order.
// It returns nil for an empty raster.
func Tiles(width, height int) []Tile {
	if width <= 0 || height <= 0 {
		return nil
	}

	tilesX := (width + TileWidth - 1) / TileWidth
	tilesY := (height + TileHeight - 1) / TileHeight

	tiles := make([]Tile, 0, tilesX*tilesY)
	for ty := range tilesY {
		for tx := range tilesX {
			w := min(TileWidth, width-tx*TileWidth)
			h := min(TileHeight, height-ty*TileHeight)
			tiles = append(tiles, Tile{X: tx, Y: ty, Width: w, Height: h})
		}
	}
	return tiles
}

// GroupCount returns the number of tiles along an axis of the given
// length. It is the dispatch size used for a compute workgroup of the
// same extent.
func GroupCount(length, tile int) uint32 {
	if length <= 0 {
		return 0
	}
	return uint32((length + tile - 1) / tile) //nolint:gosec // length is a positive pixel count
}
