package ggplay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKindNames(t *testing.T) {
	tests := []struct {
		kind FilterKind
		name string
	}{
		{FilterNearest, "nearest"},
		{FilterBilinear, "bilinear"},
		{FilterGaussian, "gaussian"},
		{FilterLanczos, "lanczos"},
		{FilterBox, "box"},
	}
	for i, tt := range tests {
		assert.Equal(t, uint32(i), uint32(tt.kind), "%s ordinal", tt.name)
		assert.Equal(t, tt.name, tt.kind.String())

		got, err := ParseFilterKind(tt.name)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, got)
	}

	got, err := ParseFilterKind("  Lanczos ")
	require.NoError(t, err, "parsing is case-insensitive")
	assert.Equal(t, FilterLanczos, got)

	_, err = ParseFilterKind("mitchell")
	assert.ErrorIs(t, err, ErrUnknownFilter)

	assert.False(t, FilterKind(9).Valid())
	assert.Equal(t, "FilterKind(9)", FilterKind(9).String())
}

func TestUsesStrength(t *testing.T) {
	want := map[FilterKind]bool{
		FilterNearest:  false,
		FilterBilinear: false,
		FilterGaussian: true,
		FilterLanczos:  true,
		FilterBox:      false,
	}
	for k, w := range want {
		assert.Equal(t, w, k.UsesStrength(), "%s", k)
	}
}

func TestFilterParamsValidate(t *testing.T) {
	g := Geometry{Width: 4, Height: 2}
	src := NewRaster(g)

	tests := []struct {
		name string
		src  Raster
		p    FilterParams
		want error
	}{
		{"ok", src, FilterParams{Src: g, Dst: Geometry{1, 1}, Filter: FilterGaussian, Strength: 2}, nil},
		{"zero strength ok", src, FilterParams{Src: g, Dst: g, Filter: FilterLanczos}, nil},
		{"bad dst", src, FilterParams{Src: g, Dst: Geometry{0, 1}}, ErrInvalidGeometry},
		{"bad src geometry", src, FilterParams{Src: Geometry{-4, 2}, Dst: g}, ErrInvalidGeometry},
		{"short raster", src[:31], FilterParams{Src: g, Dst: g}, ErrRasterSize},
		{"unknown filter", src, FilterParams{Src: g, Dst: g, Filter: filterCount}, ErrUnknownFilter},
		{"negative strength", src, FilterParams{Src: g, Dst: g, Strength: -0.5}, ErrNegativeStrength},
		{"NaN strength", src, FilterParams{Src: g, Dst: g, Strength: float32(math.NaN())}, ErrNegativeStrength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate(tt.src)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
