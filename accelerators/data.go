package accelerators

import "github.com/gomusa/gomusa/dtypes"

// Buffer is an opaque handle to a typed buffer managed by an accelerator (or
// pinned host memory). The underlying storage is owned by the backend.
type Buffer interface {
	// DType of the values the buffer holds.
	DType() dtypes.DType

	// Len is the number of values (not bytes) the buffer holds.
	Len() int

	// Device where the buffer lives.
	Device() Device
}
