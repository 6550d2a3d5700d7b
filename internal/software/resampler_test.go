package software

import (
	"bytes"
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/draw"

	"github.com/gogpu/ggplay"
)

var allFilters = []ggplay.FilterKind{
	ggplay.FilterNearest,
	ggplay.FilterBilinear,
	ggplay.FilterGaussian,
	ggplay.FilterLanczos,
	ggplay.FilterBox,
}

func randomRaster(g ggplay.Geometry, seed int64) ggplay.Raster {
	rng := rand.New(rand.NewSource(seed))
	r := ggplay.NewRaster(g)
	rng.Read(r)
	return r
}

func uniformRaster(g ggplay.Geometry, px [4]byte) ggplay.Raster {
	r := ggplay.NewRaster(g)
	for i := 0; i < len(r); i += 4 {
		copy(r[i:i+4], px[:])
	}
	return r
}

func TestResampleOutputLength(t *testing.T) {
	r := New(4)
	defer r.Close()

	src := ggplay.Geometry{Width: 37, Height: 23}
	in := randomRaster(src, 1)
	for _, kind := range allFilters {
		for _, dst := range []ggplay.Geometry{{Width: 1, Height: 1}, {Width: 10, Height: 7}, {Width: 80, Height: 41}} {
			out, err := r.Resample(in, ggplay.FilterParams{Src: src, Dst: dst, Filter: kind, Strength: 2})
			require.NoError(t, err, "%s %s", kind, dst)
			assert.Len(t, out, dst.RasterLen(), "%s %s", kind, dst)
		}
	}
}

func TestResampleIdentityExact(t *testing.T) {
	r := New(2)
	defer r.Close()

	g := ggplay.Geometry{Width: 19, Height: 11}
	in := randomRaster(g, 2)
	for _, kind := range []ggplay.FilterKind{ggplay.FilterNearest, ggplay.FilterBilinear} {
		out, err := r.Resample(in, ggplay.FilterParams{Src: g, Dst: g, Filter: kind, Strength: 2})
		require.NoError(t, err, "%s", kind)
		assert.Equal(t, in, out, "%s identity resample changed the raster", kind)
	}
}

func TestResampleDoesNotModifySource(t *testing.T) {
	r := New(2)
	defer r.Close()

	g := ggplay.Geometry{Width: 16, Height: 16}
	in := randomRaster(g, 3)
	orig := bytes.Clone(in)
	for _, kind := range allFilters {
		_, err := r.Resample(in, ggplay.FilterParams{Src: g, Dst: ggplay.Geometry{Width: 5, Height: 9}, Filter: kind, Strength: 3})
		require.NoError(t, err)
	}
	assert.Equal(t, orig, in, "source raster was modified")
}

func TestResampleUniformStaysUniform(t *testing.T) {
	r := New(3)
	defer r.Close()

	px := [4]byte{200, 100, 50, 255}
	src := ggplay.Geometry{Width: 64, Height: 48}
	in := uniformRaster(src, px)

	for _, kind := range allFilters {
		out, err := r.Resample(in, ggplay.FilterParams{Src: src, Dst: ggplay.Geometry{Width: 32, Height: 24}, Filter: kind, Strength: 2})
		require.NoError(t, err)
		for i := 0; i < len(out); i++ {
			require.InDelta(t, int(px[i%4]), int(out[i]), 1, "%s: byte %d", kind, i)
		}
	}
}

func TestResampleBoxHalvingAverages(t *testing.T) {
	r := New(1)
	defer r.Close()

	// Columns alternate 0 and 100, so each 2x2 block averages to 50.
	src := ggplay.Geometry{Width: 8, Height: 4}
	in := ggplay.NewRaster(src)
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			if x%2 == 1 {
				off := (y*src.Width + x) * 4
				in[off], in[off+1], in[off+2], in[off+3] = 100, 100, 100, 100
			}
		}
	}

	out, err := r.Resample(in, ggplay.FilterParams{Src: src, Dst: ggplay.Geometry{Width: 4, Height: 2}, Filter: ggplay.FilterBox})
	require.NoError(t, err)
	for i, v := range out {
		require.Equal(t, byte(50), v, "byte %d", i)
	}
}

func TestResampleNearestMatchesXImage(t *testing.T) {
	r := New(4)
	defer r.Close()

	src := ggplay.Geometry{Width: 53, Height: 31}
	in := randomRaster(src, 4)
	srcImg := &image.RGBA{Pix: in, Stride: src.Width * 4, Rect: image.Rect(0, 0, src.Width, src.Height)}

	for _, dst := range []ggplay.Geometry{{Width: 20, Height: 12}, {Width: 53, Height: 31}, {Width: 101, Height: 77}, {Width: 3, Height: 40}} {
		want := image.NewRGBA(image.Rect(0, 0, dst.Width, dst.Height))
		draw.NearestNeighbor.Scale(want, want.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)

		got, err := r.Resample(in, ggplay.FilterParams{Src: src, Dst: dst, Filter: ggplay.FilterNearest})
		require.NoError(t, err)
		assert.Equal(t, want.Pix, []byte(got), "nearest %s differs from x/image NearestNeighbor", dst)
	}
}

func TestResampleWorkerCountIndependent(t *testing.T) {
	one := New(1)
	defer one.Close()
	many := New(8)
	defer many.Close()

	src := ggplay.Geometry{Width: 90, Height: 60}
	in := randomRaster(src, 5)
	for _, kind := range allFilters {
		p := ggplay.FilterParams{Src: src, Dst: ggplay.Geometry{Width: 41, Height: 27}, Filter: kind, Strength: 2.5}
		a, err := one.Resample(in, p)
		require.NoError(t, err)
		b, err := many.Resample(in, p)
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s: output depends on worker count", kind)
	}
}

func TestResampleLanczosClamps(t *testing.T) {
	r := New(2)
	defer r.Close()

	// A hard black/white edge makes Lanczos ring past both ends.
	src := ggplay.Geometry{Width: 16, Height: 1}
	in := ggplay.NewRaster(src)
	for x := 8; x < 16; x++ {
		copy(in[x*4:], []byte{255, 255, 255, 255})
	}
	out, err := r.Resample(in, ggplay.FilterParams{Src: src, Dst: ggplay.Geometry{Width: 40, Height: 1}, Filter: ggplay.FilterLanczos, Strength: 3})
	require.NoError(t, err)
	require.Len(t, out, 160)
	assert.Equal(t, byte(0), out[0])
	assert.Equal(t, byte(255), out[len(out)-1])
}

func TestResampleRejectsBadInput(t *testing.T) {
	r := New(1)
	defer r.Close()

	g := ggplay.Geometry{Width: 4, Height: 4}
	in := ggplay.NewRaster(g)

	tests := []struct {
		name string
		src  ggplay.Raster
		p    ggplay.FilterParams
		want error
	}{
		{"short raster", in[:10], ggplay.FilterParams{Src: g, Dst: g}, ggplay.ErrRasterSize},
		{"zero dst", in, ggplay.FilterParams{Src: g, Dst: ggplay.Geometry{Width: 0, Height: 3}}, ggplay.ErrInvalidGeometry},
		{"zero src", nil, ggplay.FilterParams{Src: ggplay.Geometry{}, Dst: g}, ggplay.ErrInvalidGeometry},
		{"unknown filter", in, ggplay.FilterParams{Src: g, Dst: g, Filter: 99}, ggplay.ErrUnknownFilter},
		{"negative strength", in, ggplay.FilterParams{Src: g, Dst: g, Filter: ggplay.FilterGaussian, Strength: -1}, ggplay.ErrNegativeStrength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resample(tt.src, tt.p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestResampleAfterClose(t *testing.T) {
	r := New(1)
	r.Close()
	r.Close()

	g := ggplay.Geometry{Width: 2, Height: 2}
	_, err := r.Resample(ggplay.NewRaster(g), ggplay.FilterParams{Src: g, Dst: g})
	assert.ErrorIs(t, err, ggplay.ErrClosed)
}

func TestName(t *testing.T) {
	r := New(1)
	defer r.Close()
	assert.Equal(t, "cpu", r.Name())
}
