package filter

import (
	"math"
)

// MaxRadius bounds the kernel support, in source pixels, of every filter.
// Large strengths combined with heavy downscaling would otherwise make the
// per-pixel cost unbounded.
const MaxRadius = 32

// MinSigma is the smallest Gaussian sigma used. Below it the kernel
// degenerates and may have no non-zero tap.
const MinSigma = 0.3

// MinLanczosLobes is the smallest Lanczos support parameter used.
const MinLanczosLobes = 0.5

// Gaussian evaluates the unnormalized Gaussian exp(-x²/(2σ²)).
func Gaussian(x, sigma float64) float64 {
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

// Sinc is the normalized sinc function sin(πx)/(πx).
func Sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// Lanczos evaluates the Lanczos window of support a at x.
// It is zero outside (-a, a).
func Lanczos(x, a float64) float64 {
	if x <= -a || x >= a {
		return 0
	}
	return Sinc(x) * Sinc(x/a)
}

// BoxOverlap returns the length of the overlap between source pixel i,
// which spans [i, i+1), and the window [lo, hi).
func BoxOverlap(i int, lo, hi float64) float64 {
	a := math.Max(lo, float64(i))
	b := math.Min(hi, float64(i+1))
	if b <= a {
		return 0
	}
	return b - a
}

// GaussianSigma returns the sigma, in source pixels, for the given
// strength and downscale factor. The factor is max(in/out, 1) so that
// downscaling widens the kernel to suppress aliasing.
func GaussianSigma(strength, factor float64) float64 {
	return math.Max(0.5*strength*factor, MinSigma)
}

// GaussianRadius returns the truncated support of a Gaussian with the
// given sigma: ceil(3σ), capped at MaxRadius.
func GaussianRadius(sigma float64) float64 {
	return math.Min(math.Ceil(sigma*3), MaxRadius)
}

// LanczosLobes returns the Lanczos support parameter for a strength.
func LanczosLobes(strength float64) float64 {
	return math.Max(strength, MinLanczosLobes)
}
