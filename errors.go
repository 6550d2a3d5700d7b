package ggplay

import "errors"

var (
	// ErrNoDevice is returned when no GPU-capable adapter or device can be
	// acquired. It is fatal at startup.
	ErrNoDevice = errors.New("ggplay: no GPU device available")

	// ErrInvalidGeometry is returned for geometries with a non-positive
	// dimension.
	ErrInvalidGeometry = errors.New("ggplay: invalid geometry")

	// ErrRasterSize is returned when a raster's length does not match its
	// geometry.
	ErrRasterSize = errors.New("ggplay: raster size mismatch")

	// ErrUnknownFilter is returned for a FilterKind outside the enumeration.
	ErrUnknownFilter = errors.New("ggplay: unknown filter")

	// ErrNegativeStrength is returned for a negative or NaN filter strength.
	ErrNegativeStrength = errors.New("ggplay: negative filter strength")

	// ErrClosed is returned by a resampler used after Close.
	ErrClosed = errors.New("ggplay: resampler closed")
)
