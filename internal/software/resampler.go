// Package software implements the CPU resampling engine.
//
// The destination raster is split into 8x8 tiles that are resampled in
// parallel on a work-stealing pool. Per-axis tap tables come from
// internal/filter and are cached across frames, so the steady-state cost
// per frame is the weighted sums alone.
package software

import (
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/gogpu/ggplay"
	"github.com/gogpu/ggplay/backend"
	"github.com/gogpu/ggplay/internal/filter"
	"github.com/gogpu/ggplay/internal/parallel"
)

func init() {
	backend.Register(backend.BackendCPU, func() (ggplay.Resampler, error) {
		return New(0), nil
	})
}

// axisCacheSize holds a few filter/strength combinations for both axes.
const axisCacheSize = 32

// Resampler is the CPU engine. It is safe for concurrent use.
type Resampler struct {
	pool   *parallel.WorkerPool
	axes   *filter.Cache
	closed atomic.Bool
	log    atomic.Pointer[slog.Logger]
}

// New creates a CPU engine with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func New(workers int) *Resampler {
	r := &Resampler{
		pool: parallel.NewWorkerPool(workers),
		axes: filter.NewCache(axisCacheSize),
	}
	r.log.Store(ggplay.Logger())
	r.logger().Info("software: resampler started", "workers", r.pool.Workers())
	return r
}

// Name returns "cpu".
func (r *Resampler) Name() string { return backend.BackendCPU }

// SetLogger replaces the logger used by this engine.
func (r *Resampler) SetLogger(l *slog.Logger) {
	if l != nil {
		r.log.Store(l)
	}
}

func (r *Resampler) logger() *slog.Logger { return r.log.Load() }

// Resample produces a p.Dst raster from src. src is not modified.
func (r *Resampler) Resample(src ggplay.Raster, p ggplay.FilterParams) (ggplay.Raster, error) {
	if r.closed.Load() {
		return nil, ggplay.ErrClosed
	}
	if err := p.Validate(src); err != nil {
		return nil, err
	}

	strength := float64(p.Strength)
	job := tileJob{
		src:  src,
		dst:  ggplay.NewRaster(p.Dst),
		srcW: p.Src.Width,
		dstW: p.Dst.Width,
		xs:   r.axes.Axis(p.Filter, p.Src.Width, p.Dst.Width, strength),
		ys:   r.axes.Axis(p.Filter, p.Src.Height, p.Dst.Height, strength),
	}

	tiles := parallel.Tiles(p.Dst.Width, p.Dst.Height)
	jobs := make([]func(), len(tiles))
	for i, t := range tiles {
		jobs[i] = func() { job.run(t) }
	}

	if !r.pool.ExecuteAll(jobs) {
		return nil, ggplay.ErrClosed
	}

	r.logger().Debug("software: resample",
		"src", p.Src, "dst", p.Dst, "filter", p.Filter, "tiles", len(tiles))
	return job.dst, nil
}

// Close stops the worker pool. Close is safe to call multiple times.
func (r *Resampler) Close() {
	if r.closed.CompareAndSwap(false, true) {
		r.pool.Close()
	}
}

// tileJob carries the per-frame inputs shared by all tiles.
// Tiles write disjoint regions of dst.
type tileJob struct {
	src, dst   ggplay.Raster
	srcW, dstW int
	xs, ys     *filter.Axis
}

func (j *tileJob) run(t parallel.Tile) {
	x0, y0, w, h := t.Bounds()
	for dy := y0; dy < y0+h; dy++ {
		ytaps := j.ys.Taps[dy]
		for dx := x0; dx < x0+w; dx++ {
			xtaps := j.xs.Taps[dx]

			var acc [4]float64
			for _, ty := range ytaps {
				row := ty.Index * j.srcW
				for _, tx := range xtaps {
					wgt := ty.Weight * tx.Weight
					off := (row + tx.Index) * 4
					acc[0] += wgt * float64(j.src[off])
					acc[1] += wgt * float64(j.src[off+1])
					acc[2] += wgt * float64(j.src[off+2])
					acc[3] += wgt * float64(j.src[off+3])
				}
			}

			off := (dy*j.dstW + dx) * 4
			j.dst[off] = toByte(acc[0])
			j.dst[off+1] = toByte(acc[1])
			j.dst[off+2] = toByte(acc[2])
			j.dst[off+3] = toByte(acc[3])
		}
	}
}

// toByte rounds half up and clamps to [0, 255]. Lanczos lobes can
// overshoot in both directions.
func toByte(v float64) uint8 {
	v = math.Floor(v + 0.5)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
