// Package backend is the registry of resampling engines.
//
// Engines register themselves from init functions and are selected by name
// at startup:
//
//	import (
//		_ "github.com/gogpu/ggplay/internal/gpu"
//		_ "github.com/gogpu/ggplay/internal/software"
//	)
//
//	r, err := backend.Open(backend.BackendGPU)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer r.Close()
//
// Open never substitutes another engine. A build with the nogpu tag simply
// does not register the GPU engine.
package backend
