// Package _default includes the default accelerators, namely MUSA, and the
// bundled op builders.
//
// To use it simply include:
//
//	import _ "github.com/gomusa/gomusa/accelerators/default"
//
// Build with the tag `cuda` to also include the NVML-backed CUDA discovery
// accelerator.
package _default

import (
	_ "github.com/gomusa/gomusa/accelerators/musa"
	_ "github.com/gomusa/gomusa/opbuilder/bundled"
)
