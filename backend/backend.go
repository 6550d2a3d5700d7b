package backend

import (
	"errors"

	"github.com/gogpu/ggplay"
)

// Engine names accepted by Open and the --engine flag.
const (
	// BackendGPU is the compute-shader engine on gogpu/wgpu.
	BackendGPU = "gpu"

	// BackendCPU is the tiled software engine.
	BackendCPU = "cpu"
)

// ErrBackendNotAvailable is returned when a requested engine is not
// registered in this build.
var ErrBackendNotAvailable = errors.New("backend: not available")

// Factory creates a ready-to-use resampling engine.
// It returns an error when the engine cannot be brought up, for example
// ggplay.ErrNoDevice when no GPU adapter exists.
type Factory func() (ggplay.Resampler, error)
