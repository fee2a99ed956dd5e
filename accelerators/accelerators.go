// Package accelerators defines the interface a compute-device backend (an
// "accelerator") needs to implement to be used by GoMUSA, and the registry
// from which a concrete accelerator is selected.
//
// Higher-level code stays backend agnostic: it asks the registry for an
// Accelerator and only ever talks to the interface. A backend that does not
// support an optional capability returns an error wrapping ErrNotSupported for
// it, and it still works for callers that don't need that capability.
package accelerators

import (
	"os"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/gomusa/gomusa/dtypes"
	"github.com/gomusa/gomusa/opbuilder"
)

// DeviceNum identifies one device of an accelerator. It's up to the backend to
// interpret it, but it should be between 0 and Accelerator.DeviceCount.
type DeviceNum int

// AnyDevice selects the backend's notion of the current device, for the
// operations that take an optional device.
const AnyDevice DeviceNum = -1

// Accelerator is the API that needs to be implemented by a GoMUSA device backend.
type Accelerator interface {
	// Name returns the short name of the backend. E.g.: "musa" for the MThreads MUSA runtime.
	Name() string

	// Description is a longer description of the Accelerator that can be used to pretty-print.
	Description() string

	// CommunicationBackend returns the name of the collective-communication
	// library paired with this accelerator (e.g. "mccl").
	CommunicationBackend() string

	// IsAvailable reports whether the backend's runtime found a usable device.
	IsAvailable() bool

	// IsSynchronizedDevice reports whether the device executes synchronously
	// with the host, i.e. whether Synchronize is a no-op.
	IsSynchronizedDevice() bool

	// Capabilities returns what this accelerator supports. It is decided once,
	// when the accelerator is constructed, and never changes.
	Capabilities() Capabilities

	DeviceInterface
	RandomInterface
	StreamInterface
	MemoryInterface
	DataInterface
	TraceInterface
	OpBuilderInterface

	// LazyCall runs fn immediately if the runtime is initialized, otherwise it
	// queues fn to run on first initialization.
	LazyCall(fn func())

	// Finalize releases all the associated resources immediately, and makes the
	// accelerator invalid.
	Finalize()
}

// DeviceInterface is the sub-interface with the device identity and selection operations.
type DeviceInterface interface {
	// DeviceName returns the printable device string: the backend name for
	// AnyDevice, otherwise "<name>:<device>".
	DeviceName(device DeviceNum) string

	// Device returns a handle for the given device.
	Device(device DeviceNum) (Device, error)

	// SetDevice makes the given device current for the calling process.
	SetDevice(device DeviceNum) error

	// CurrentDevice returns the current device.
	CurrentDevice() (DeviceNum, error)

	// CurrentDeviceName returns DeviceName(CurrentDevice()).
	CurrentDeviceName() (string, error)

	// DeviceCount returns the number of devices available for this Accelerator.
	DeviceCount() (int, error)

	// Synchronize blocks until all work queued on the device completes.
	// AnyDevice synchronizes the current device.
	Synchronize(device DeviceNum) error

	// DeviceProperties describes one device: name, UUID, total memory and
	// compute capability.
	DeviceProperties(device DeviceNum) (DeviceProperties, error)
}

// RandomInterface is the sub-interface with the random-number-generation operations.
type RandomInterface interface {
	// RNGState returns the opaque state of the device RNG.
	RNGState(device DeviceNum) ([]byte, error)

	// SetRNGState restores an RNG state previously returned by RNGState.
	SetRNGState(state []byte, device DeviceNum) error

	// ManualSeed seeds the RNG of the current device.
	ManualSeed(seed uint64) error

	// ManualSeedAll seeds the RNG of every device.
	ManualSeedAll(seed uint64) error

	// InitialSeed returns the seed the current device RNG was initialized with.
	InitialSeed() (uint64, error)

	// DefaultGenerator returns the default RNG of the given device.
	DefaultGenerator(device DeviceNum) (Generator, error)
}

// StreamInterface is the sub-interface with the stream and event primitives.
type StreamInterface interface {
	// NewStream creates a new execution stream on the given device.
	NewStream(device DeviceNum) (Stream, error)

	// CurrentStream returns the stream currently selected for the device.
	CurrentStream(device DeviceNum) (Stream, error)

	// SetCurrentStream makes the given stream current for its device:
	// subsequent work is queued on it until another stream is selected.
	SetCurrentStream(s Stream) error

	// DefaultStream returns the device's default stream.
	DefaultStream(device DeviceNum) (Stream, error)

	// NewEvent creates a new event, not yet recorded on any stream.
	NewEvent() (Event, error)
}

// MemoryInterface is the sub-interface with the memory bookkeeping operations.
//
// The reserved/stats/peak-reset operations are optional: runtimes that don't
// track them return an error wrapping ErrNotSupported.
type MemoryInterface interface {
	// EmptyCache releases all cached, unused device memory back to the driver.
	EmptyCache() error

	// MemoryAllocated returns the bytes currently allocated on the device.
	MemoryAllocated(device DeviceNum) (uint64, error)

	// MaxMemoryAllocated returns the high-water mark of MemoryAllocated.
	MaxMemoryAllocated(device DeviceNum) (uint64, error)

	// ResetMaxMemoryAllocated resets the high-water mark to the current value.
	ResetMaxMemoryAllocated(device DeviceNum) error

	// MemoryCached returns the bytes held by the caching allocator.
	MemoryCached(device DeviceNum) (uint64, error)

	// MaxMemoryCached returns the high-water mark of MemoryCached.
	MaxMemoryCached(device DeviceNum) (uint64, error)

	// ResetMaxMemoryCached resets the high-water mark to the current value.
	ResetMaxMemoryCached(device DeviceNum) error

	// MemoryReserved returns the bytes reserved from the driver. Optional.
	MemoryReserved(device DeviceNum) (uint64, error)

	// MaxMemoryReserved returns the high-water mark of MemoryReserved. Optional.
	MaxMemoryReserved(device DeviceNum) (uint64, error)

	// MemoryStats returns the full allocator statistics. Optional.
	MemoryStats(device DeviceNum) (MemoryStats, error)

	// ResetPeakMemoryStats resets every peak counter. Optional.
	ResetPeakMemoryStats(device DeviceNum) error

	// TotalMemory returns the total memory of the device.
	TotalMemory(device DeviceNum) (uint64, error)
}

// DataInterface is the sub-interface with the typed buffer constructors and
// data-type capability queries.
type DataInterface interface {
	// NewBuffer allocates a device buffer holding length values of the given dtype.
	NewBuffer(dtype dtypes.DType, length int, device DeviceNum) (Buffer, error)

	// PinMemory returns a page-locked (host) version of the buffer.
	PinMemory(b Buffer) (Buffer, error)

	// OnAccelerator reports whether the buffer lives on one of this
	// accelerator's devices. It is a device-string prefix test, not an identity
	// test: true iff the buffer's device string starts with "<name>:".
	OnAccelerator(b Buffer) bool

	// IsBF16Supported reports whether the devices support bfloat16 arithmetic.
	IsBF16Supported() bool

	// IsFP16Supported reports whether the devices support float16 arithmetic.
	IsFP16Supported() bool
}

// TraceInterface is the sub-interface with the profiler range annotations.
// Both operations are no-ops when the runtime has no tracing support.
type TraceInterface interface {
	// RangePush opens a named profiler range on the current device.
	RangePush(msg string)

	// RangePop closes the innermost profiler range.
	RangePop()
}

// OpBuilderInterface is the sub-interface giving access to the op-builder
// plugin registry of the accelerator.
type OpBuilderInterface interface {
	// OpBuilderSource reports which registration source the accelerator's
	// builder registry snapshotted from.
	OpBuilderSource() opbuilder.Source

	// GetOpBuilder returns the factory for the named builder, or nil if no such
	// builder is registered.
	GetOpBuilder(name string) opbuilder.Factory

	// CreateOpBuilder returns a freshly constructed instance of the named
	// builder, or nil if no such builder is registered.
	CreateOpBuilder(name string) opbuilder.Builder

	// OpBuilderNames returns the sorted names of the registered builders.
	OpBuilderNames() []string
}

// Constructor takes a config string (optionally empty) and returns an Accelerator.
type Constructor func(config string) Accelerator

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register an accelerator with the given name, and a default constructor that
// takes as input a configuration string that is passed along to the backend
// constructor.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// DefaultConfig is the accelerator configuration to use if specified.
//
// See NewWithConfig for the format of the configuration string.
var DefaultConfig string

// GOMUSA_ACCELERATOR is the environment variable with the default accelerator
// configuration to use.
//
// The format of the config is "<accelerator_name>:<accelerator_configuration>".
// The "<accelerator_name>" is the name of a registered accelerator (e.g.:
// "musa") and "<accelerator_configuration>" is backend specific.
const GOMUSA_ACCELERATOR = "GOMUSA_ACCELERATOR"

// New returns a new default Accelerator.
//
// The default is:
//
// 1. The environment GOMUSA_ACCELERATOR is used as a configuration if defined.
// 2. Next the variable DefaultConfig is used as a configuration if defined.
// 3. The first registered accelerator is used with an empty configuration.
//
// It panics if no accelerator was registered.
func New() Accelerator {
	config, found := os.LookupEnv(GOMUSA_ACCELERATOR)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig creates the Accelerator described by the configuration string.
//
// The format of the config is "<accelerator_name>:<accelerator_configuration>".
// The "<accelerator_name>" is the name of a registered accelerator (e.g.:
// "musa") and "<accelerator_configuration>" is backend specific.
func NewWithConfig(config string) Accelerator {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered accelerators for GoMUSA -- maybe import the default one with import _ "github.com/gomusa/gomusa/accelerators/default"?`)
	}
	name := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		name = config[:idx]
		backendConfig = config[idx+1:]
	} else if config != "" {
		name = config
		backendConfig = ""
	}
	constructor, found := registeredConstructors[name]
	if !found {
		exceptions.Panicf("can't find accelerator %q for configuration %q given", name, config)
	}
	return constructor(backendConfig)
}
