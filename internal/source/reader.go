package source

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/gogpu/ggplay"
)

// Reader cuts a raw RGBA byte stream into rasters of a fixed geometry.
//
// Reads happen on a background goroutine one frame ahead, so Next can honour
// context cancellation while the underlying read blocks.
type Reader struct {
	geom   ggplay.Geometry
	frames chan ggplay.Raster
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	// err is the terminal error. It is written before frames is closed.
	err error
}

// NewReader starts reading g-sized frames from r.
func NewReader(r io.Reader, g ggplay.Geometry) *Reader {
	rd := &Reader{
		geom:   g,
		frames: make(chan ggplay.Raster, 1),
		done:   make(chan struct{}),
	}
	rd.wg.Add(1)
	go rd.run(r)
	return rd
}

// Geometry returns the frame size.
func (rd *Reader) Geometry() ggplay.Geometry { return rd.geom }

func (rd *Reader) run(r io.Reader) {
	defer rd.wg.Done()
	defer close(rd.frames)

	for {
		buf := ggplay.NewRaster(rd.geom)
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				rd.err = io.EOF
			} else {
				rd.err = err
			}
			return
		}
		select {
		case rd.frames <- buf:
		case <-rd.done:
			rd.err = io.EOF
			return
		}
	}
}

// Next returns the next frame. A short read at the end of the stream yields
// io.EOF, as does every call after it.
func (rd *Reader) Next(ctx context.Context) (ggplay.Raster, error) {
	select {
	case buf, ok := <-rd.frames:
		if !ok {
			return nil, rd.err
		}
		return buf, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// stop makes the read goroutine exit once its current read returns.
func (rd *Reader) stop() {
	rd.once.Do(func() { close(rd.done) })
}

// wait blocks until the read goroutine has exited.
func (rd *Reader) wait() { rd.wg.Wait() }
