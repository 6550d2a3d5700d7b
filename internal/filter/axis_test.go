package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/ggplay"
)

var allFilters = []ggplay.FilterKind{
	ggplay.FilterNearest,
	ggplay.FilterBilinear,
	ggplay.FilterGaussian,
	ggplay.FilterLanczos,
	ggplay.FilterBox,
}

func TestAxisNormalized(t *testing.T) {
	sizes := [][2]int{{1, 1}, {1, 7}, {7, 1}, {10, 10}, {100, 40}, {40, 100}, {640, 80}}

	for _, kind := range allFilters {
		for _, sz := range sizes {
			for _, strength := range []float64{0, 1, 2, 5} {
				name := fmt.Sprintf("%s/%dto%d/s%.0f", kind, sz[0], sz[1], strength)
				t.Run(name, func(t *testing.T) {
					a := NewAxis(kind, sz[0], sz[1], strength)
					require.Len(t, a.Taps, sz[1])
					for d, taps := range a.Taps {
						require.NotEmpty(t, taps, "dst %d", d)
						sum := 0.0
						for _, tap := range taps {
							require.GreaterOrEqual(t, tap.Index, 0, "dst %d", d)
							require.Less(t, tap.Index, sz[0], "dst %d", d)
							sum += tap.Weight
						}
						assert.InDelta(t, 1, sum, 1e-9, "dst %d weight sum", d)
					}
				})
			}
		}
	}
}

func TestAxisIdentityExact(t *testing.T) {
	for _, kind := range []ggplay.FilterKind{ggplay.FilterNearest, ggplay.FilterBilinear} {
		a := NewAxis(kind, 13, 13, 2)
		for d, taps := range a.Taps {
			assert.Equal(t, []Tap{{Index: d, Weight: 1}}, taps, "%s identity dst %d", kind, d)
		}
	}
}

func TestAxisNearestDownscale(t *testing.T) {
	a := NewAxis(ggplay.FilterNearest, 10, 5, 0)
	want := []int{1, 3, 5, 7, 9}
	for d, taps := range a.Taps {
		assert.Equal(t, want[d], taps[0].Index, "dst %d", d)
	}
}

func TestAxisBoxHalving(t *testing.T) {
	a := NewAxis(ggplay.FilterBox, 8, 4, 2)
	for d, taps := range a.Taps {
		require.Len(t, taps, 2, "dst %d", d)
		assert.Equal(t, 2*d, taps[0].Index)
		assert.Equal(t, 2*d+1, taps[1].Index)
		for _, tap := range taps {
			assert.InDelta(t, 0.5, tap.Weight, 1e-12, "dst %d", d)
		}
	}
}

func TestAxisGaussianWidensWithStrength(t *testing.T) {
	narrow := NewAxis(ggplay.FilterGaussian, 100, 100, 1)
	wide := NewAxis(ggplay.FilterGaussian, 100, 100, 4)
	assert.Greater(t, wide.MaxTaps(), narrow.MaxTaps())
}

func TestAxisRadiusBounded(t *testing.T) {
	limit := 2*MaxRadius + 2
	for _, kind := range allFilters {
		a := NewAxis(kind, 4000, 10, 1e6)
		assert.LessOrEqual(t, a.MaxTaps(), limit, "%s", kind)
	}
}

func TestAxisSymmetricMirror(t *testing.T) {
	// A symmetric kernel on a centered mapping mirrors left and right.
	a := NewAxis(ggplay.FilterGaussian, 20, 10, 2)
	for d := 0; d < 5; d++ {
		require.Len(t, a.Taps[9-d], len(a.Taps[d]), "dst %d and %d", d, 9-d)
	}
}
