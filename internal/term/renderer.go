package term

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/ggplay"
)

// HalfBlock is U+2580 UPPER HALF BLOCK. Its foreground paints the top half of
// a cell and its background the bottom half.
const HalfBlock = '▀'

// Renderer draws rasters into a session. It implements player.Renderer.
type Renderer struct {
	s *Session
}

// NewRenderer returns a renderer drawing into s.
func NewRenderer(s *Session) *Renderer {
	return &Renderer{s: s}
}

// Render draws r, a raster of geometry g, anchored at the top-left cell and
// flushes the screen. Cells outside the terminal are clipped by the screen.
func (r *Renderer) Render(raster ggplay.Raster, g ggplay.Geometry) error {
	if err := raster.Check(g); err != nil {
		return fmt.Errorf("term: render: %w", err)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.closed {
		return ErrSessionClosed
	}

	screen := r.s.screen
	for row := 0; row < g.Rows(); row++ {
		top := row * 2
		bottom := top + 1
		for x := 0; x < g.Width; x++ {
			style := tcell.StyleDefault.Foreground(pixelColor(raster, g, x, top))
			if bottom < g.Height {
				style = style.Background(pixelColor(raster, g, x, bottom))
			} else {
				style = style.Background(tcell.ColorReset)
			}
			screen.SetContent(x, row, HalfBlock, nil, style)
		}
	}
	screen.Show()
	return nil
}

// Clear blanks the screen.
func (r *Renderer) Clear() {
	r.s.Clear()
}

// pixelColor converts one raster pixel to a true color. Alpha is dropped;
// terminals have no notion of it.
func pixelColor(raster ggplay.Raster, g ggplay.Geometry, x, y int) tcell.Color {
	red, green, blue, _ := raster.RGBA(g, x, y)
	return tcell.NewRGBColor(int32(red), int32(green), int32(blue))
}
