package filter

import (
	"math"

	"github.com/gogpu/ggplay"
)

// Tap is one weighted source sample along an axis.
// Index is already clamped to the source extent (clamp-to-edge).
type Tap struct {
	Index  int
	Weight float64
}

// Axis holds the normalized taps for every destination coordinate along
// one axis. Taps[d] sums to 1.
type Axis struct {
	In, Out int
	Taps    [][]Tap
}

// MaxTaps returns the widest tap list in the axis.
func (a *Axis) MaxTaps() int {
	n := 0
	for _, t := range a.Taps {
		n = max(n, len(t))
	}
	return n
}

// NewAxis computes the taps mapping in source samples onto out destination
// samples with the given filter. in and out must be positive.
func NewAxis(kind ggplay.FilterKind, in, out int, strength float64) *Axis {
	a := &Axis{In: in, Out: out, Taps: make([][]Tap, out)}
	for d := 0; d < out; d++ {
		a.Taps[d] = taps(kind, d, in, out, strength)
	}
	return a
}

// taps computes the normalized taps of destination coordinate d.
func taps(kind ggplay.FilterKind, d, in, out int, strength float64) []Tap {
	inv := float64(in) / float64(out)
	factor := math.Max(inv, 1)
	center := (float64(d)+0.5)*inv - 0.5

	var lo, hi int
	var weight func(i int) float64

	switch kind {
	case ggplay.FilterNearest:
		// The source pixel whose area contains the mapped center.
		// Integer form of floor((d+0.5)*in/out), exact for every size.
		i := clampIndex((2*d+1)*in/(2*out), in)
		return []Tap{{Index: i, Weight: 1}}

	case ggplay.FilterBilinear:
		lo = int(math.Floor(center))
		hi = lo + 1
		t := center - float64(lo)
		weight = func(i int) float64 {
			if i == lo {
				return 1 - t
			}
			return t
		}

	case ggplay.FilterGaussian:
		sigma := GaussianSigma(strength, factor)
		r := GaussianRadius(sigma)
		lo = int(math.Ceil(center - r))
		hi = int(math.Floor(center + r))
		weight = func(i int) float64 {
			return Gaussian(float64(i)-center, sigma)
		}

	case ggplay.FilterLanczos:
		lobes := LanczosLobes(strength)
		r := math.Min(lobes*factor, MaxRadius)
		lo = int(math.Ceil(center - r))
		hi = int(math.Floor(center + r))
		weight = func(i int) float64 {
			return Lanczos((float64(i)-center)/factor, lobes)
		}

	case ggplay.FilterBox:
		// Footprint in pixel-edge coordinates: [x-half, x+half).
		x := (float64(d) + 0.5) * inv
		half := math.Min(0.5*factor, MaxRadius)
		wlo, whi := x-half, x+half
		lo = int(math.Floor(wlo))
		hi = int(math.Ceil(whi)) - 1
		weight = func(i int) float64 {
			return BoxOverlap(i, wlo, whi)
		}

	default:
		return []Tap{{Index: clampIndex(int(math.Floor(center+0.5)), in), Weight: 1}}
	}

	result := make([]Tap, 0, hi-lo+1)
	sum := 0.0
	for i := lo; i <= hi; i++ {
		w := weight(i)
		if w == 0 {
			continue
		}
		result = append(result, Tap{Index: clampIndex(i, in), Weight: w})
		sum += w
	}

	if len(result) == 0 || math.Abs(sum) < 1e-9 {
		return []Tap{{Index: clampIndex(int(math.Floor(center+0.5)), in), Weight: 1}}
	}

	norm := 1 / sum
	for k := range result {
		result[k].Weight *= norm
	}
	return result
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
