// Package cuda implements a discovery-only CUDA accelerator backed by NVML.
//
// It reports devices, memory and compute capability of NVIDIA GPUs; execution
// primitives (streams, RNG, buffers) are not provided and report
// accelerators.ErrNotSupported.
//
// The backend is only built with the "cuda" build tag, since NVML needs cgo
// and the NVIDIA management library at runtime:
//
//	go build -tags cuda ...
//
// Import it blank to register it:
//
//	import _ "github.com/gomusa/gomusa/accelerators/cuda"
package cuda

// BackendName to be used in GOMUSA_ACCELERATOR to select this accelerator.
const BackendName = "cuda"

// CommunicationBackend is the collective-communication library paired with CUDA.
const CommunicationBackend = "nccl"
