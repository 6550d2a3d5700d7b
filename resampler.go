package ggplay

// Resampler maps a raster of size Src to a new raster of size Dst under a
// filter kernel.
//
// Every destination pixel is computed independently of the others.
// Implementations return a freshly allocated raster of exactly
// Dst.RasterLen() bytes and never modify src. At most one Resample call is
// in flight at a time; implementations are not required to be safe for
// concurrent use.
type Resampler interface {
	// Resample returns src resampled to p.Dst.
	Resample(src Raster, p FilterParams) (Raster, error)

	// Name identifies the engine in logs.
	Name() string

	// Close releases engine resources. The engine must not be used after.
	Close()
}
