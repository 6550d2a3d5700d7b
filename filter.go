package ggplay

import (
	"fmt"
	"math"
	"strings"
)

// FilterKind identifies a resampling kernel. The ordinal values are part of
// the GPU uniform layout and must not be reordered.
type FilterKind uint32

const (
	// FilterNearest copies the source pixel under the destination pixel
	// center. Strength is ignored.
	FilterNearest FilterKind = iota

	// FilterBilinear blends the four nearest source pixels by their
	// fractional distance. Strength is ignored.
	FilterBilinear

	// FilterGaussian takes a normalized Gaussian-weighted sum whose sigma is
	// scaled by strength.
	FilterGaussian

	// FilterLanczos is a separable windowed-sinc reconstruction whose support
	// radius is scaled by strength.
	FilterLanczos

	// FilterBox averages every source pixel whose footprint overlaps the
	// destination pixel. Strength is ignored.
	FilterBox

	// filterCount is the number of defined filters.
	filterCount
)

// DefaultFilter and DefaultStrength are the initial playback settings.
const (
	DefaultFilter   = FilterGaussian
	DefaultStrength = 2.0
)

var filterNames = [filterCount]string{
	FilterNearest:  "nearest",
	FilterBilinear: "bilinear",
	FilterGaussian: "gaussian",
	FilterLanczos:  "lanczos",
	FilterBox:      "box",
}

// String returns the lower-case filter name.
func (k FilterKind) String() string {
	if k < filterCount {
		return filterNames[k]
	}
	return fmt.Sprintf("FilterKind(%d)", uint32(k))
}

// Valid reports whether k is one of the defined filters.
func (k FilterKind) Valid() bool {
	return k < filterCount
}

// UsesStrength reports whether the kernel reads FilterParams.Strength.
func (k FilterKind) UsesStrength() bool {
	return k == FilterGaussian || k == FilterLanczos
}

// ParseFilterKind parses a filter name, case-insensitively.
func ParseFilterKind(s string) (FilterKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range filterNames {
		if n == name {
			return FilterKind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// FilterParams describes one resample call.
type FilterParams struct {
	Src      Geometry
	Dst      Geometry
	Filter   FilterKind
	Strength float32
}

// Validate checks the preconditions of a resample call against src.
func (p FilterParams) Validate(src Raster) error {
	if !p.Dst.Valid() {
		return fmt.Errorf("%w: destination %s", ErrInvalidGeometry, p.Dst)
	}
	if err := src.Check(p.Src); err != nil {
		return err
	}
	if !p.Filter.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownFilter, uint32(p.Filter))
	}
	if p.Strength < 0 || math.IsNaN(float64(p.Strength)) {
		return fmt.Errorf("%w: %v", ErrNegativeStrength, p.Strength)
	}
	return nil
}
