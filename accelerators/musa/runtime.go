package musa

import (
	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/dtypes"
)

// Runtime is the surface of the MUSA driver/runtime bindings the accelerator
// forwards to. It is the external collaborator: the accelerator adds no device
// logic of its own beyond capability bookkeeping.
//
// Operations that take a device accept accelerators.AnyDevice, meaning the
// runtime's current device.
//
// The runtime surface is versioned and partially optional: the operations
// below are required of every runtime; the optional ones live in the
// MemoryStatsRuntime, MemoryReservedRuntime, PeakStatsRuntime and
// TracingRuntime sub-interfaces, which the accelerator probes once at
// construction.
type Runtime interface {
	// IsAvailable reports whether a usable MUSA device was found.
	IsAvailable() bool

	// DeviceCount returns the number of visible devices.
	DeviceCount() (int, error)

	// CurrentDevice returns the device current for the calling process.
	CurrentDevice() (accelerators.DeviceNum, error)

	// SetDevice makes the given device current.
	SetDevice(device accelerators.DeviceNum) error

	// Synchronize blocks until all work queued on the device completes.
	Synchronize(device accelerators.DeviceNum) error

	// DeviceProperties describes the given device.
	DeviceProperties(device accelerators.DeviceNum) (accelerators.DeviceProperties, error)

	// IsBF16Supported reports whether the devices support bfloat16 arithmetic.
	IsBF16Supported() bool

	// RNGState returns the opaque device RNG state.
	RNGState(device accelerators.DeviceNum) ([]byte, error)

	// SetRNGState restores a state previously returned by RNGState.
	SetRNGState(state []byte, device accelerators.DeviceNum) error

	// ManualSeed seeds the current device RNG.
	ManualSeed(seed uint64) error

	// ManualSeedAll seeds every device RNG.
	ManualSeedAll(seed uint64) error

	// InitialSeed returns the seed the current device RNG was initialized with.
	InitialSeed() (uint64, error)

	// DefaultGenerator returns the default RNG of the given device.
	DefaultGenerator(device accelerators.DeviceNum) (accelerators.Generator, error)

	// NewStream creates an execution stream on the device.
	NewStream(device accelerators.DeviceNum) (accelerators.Stream, error)

	// CurrentStream returns the stream currently selected for the device.
	CurrentStream(device accelerators.DeviceNum) (accelerators.Stream, error)

	// SetCurrentStream makes the given stream current for its device.
	SetCurrentStream(s accelerators.Stream) error

	// DefaultStream returns the device's default stream.
	DefaultStream(device accelerators.DeviceNum) (accelerators.Stream, error)

	// NewEvent creates a new, unrecorded event.
	NewEvent() (accelerators.Event, error)

	// EmptyCache releases cached, unused device memory back to the driver.
	EmptyCache() error

	// MemoryAllocated returns the bytes currently allocated on the device.
	MemoryAllocated(device accelerators.DeviceNum) (uint64, error)

	// MaxMemoryAllocated returns the high-water mark of MemoryAllocated.
	MaxMemoryAllocated(device accelerators.DeviceNum) (uint64, error)

	// ResetMaxMemoryAllocated resets the high-water mark to the current value.
	ResetMaxMemoryAllocated(device accelerators.DeviceNum) error

	// MemoryCached returns the bytes held by the caching allocator.
	MemoryCached(device accelerators.DeviceNum) (uint64, error)

	// MaxMemoryCached returns the high-water mark of MemoryCached.
	MaxMemoryCached(device accelerators.DeviceNum) (uint64, error)

	// ResetMaxMemoryCached resets the high-water mark to the current value.
	ResetMaxMemoryCached(device accelerators.DeviceNum) error

	// NewBuffer allocates a device buffer of length values of dtype.
	NewBuffer(dtype dtypes.DType, length int, device accelerators.DeviceNum) (accelerators.Buffer, error)

	// PinMemory returns a page-locked host version of the buffer.
	PinMemory(b accelerators.Buffer) (accelerators.Buffer, error)

	// LazyCall runs fn now if the runtime is initialized, otherwise queues it
	// to run on first initialization.
	LazyCall(fn func())

	// Close tears the runtime down.
	Close() error
}

// MemoryStatsRuntime is the optional surface with the full allocator statistics.
type MemoryStatsRuntime interface {
	MemoryStats(device accelerators.DeviceNum) (accelerators.MemoryStats, error)
}

// MemoryReservedRuntime is the optional surface with the driver-reservation counters.
type MemoryReservedRuntime interface {
	MemoryReserved(device accelerators.DeviceNum) (uint64, error)
	MaxMemoryReserved(device accelerators.DeviceNum) (uint64, error)
}

// PeakStatsRuntime is the optional surface resetting every peak counter at once.
type PeakStatsRuntime interface {
	ResetPeakMemoryStats(device accelerators.DeviceNum) error
}

// TracingRuntime is the optional surface with the profiler range annotations.
type TracingRuntime interface {
	RangePush(msg string)
	RangePop()
}
