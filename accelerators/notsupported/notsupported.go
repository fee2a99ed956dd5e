// Package notsupported implements an accelerators.Accelerator whose every
// operation reports accelerators.ErrNotSupported.
//
// It can help bootstrap any backend implementation: discovery-only backends
// and test mocks embed Accelerator and override only what they support.
package notsupported

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/dtypes"
	"github.com/gomusa/gomusa/opbuilder"
)

// NotSupportedError is wrapped by every method.
var NotSupportedError = accelerators.ErrNotSupported

// Accelerator is a stub accelerator: every operation reports NotSupportedError.
type Accelerator struct {
	// Backend is the name reported by Name and used in device strings.
	Backend string

	builders opbuilder.Registry
}

var _ accelerators.Accelerator = (*Accelerator)(nil)

func (a *Accelerator) notSupported(op string) error {
	return errors.Wrapf(NotSupportedError, "in %s() on the %q accelerator", op, a.Name())
}

// Name returns the configured backend name, or "notsupported".
func (a *Accelerator) Name() string {
	if a.Backend == "" {
		return "notsupported"
	}
	return a.Backend
}

// String returns the same as Name.
func (a *Accelerator) String() string { return a.Name() }

// Description is a longer description of the accelerator.
func (a *Accelerator) Description() string {
	return "Not Supported Accelerator (stub backend)"
}

// CommunicationBackend returns the empty string: there is none.
func (a *Accelerator) CommunicationBackend() string { return "" }

// IsAvailable returns false.
func (a *Accelerator) IsAvailable() bool { return false }

// IsSynchronizedDevice returns false.
func (a *Accelerator) IsSynchronizedDevice() bool { return false }

// Capabilities returns empty capabilities.
func (a *Accelerator) Capabilities() accelerators.Capabilities {
	return accelerators.Capabilities{
		Features: make(map[accelerators.Feature]bool),
		DTypes:   make(map[dtypes.DType]bool),
	}
}

// DeviceName returns the canonical device string for the backend name.
func (a *Accelerator) DeviceName(device accelerators.DeviceNum) string {
	return accelerators.Device{Accel: a.Name(), Num: device}.String()
}

// Device returns NotSupportedError.
func (a *Accelerator) Device(device accelerators.DeviceNum) (accelerators.Device, error) {
	return accelerators.Device{}, a.notSupported("Device")
}

// SetDevice returns NotSupportedError.
func (a *Accelerator) SetDevice(device accelerators.DeviceNum) error {
	return a.notSupported("SetDevice")
}

// CurrentDevice returns NotSupportedError.
func (a *Accelerator) CurrentDevice() (accelerators.DeviceNum, error) {
	return 0, a.notSupported("CurrentDevice")
}

// CurrentDeviceName returns NotSupportedError.
func (a *Accelerator) CurrentDeviceName() (string, error) {
	return "", a.notSupported("CurrentDeviceName")
}

// DeviceCount returns NotSupportedError.
func (a *Accelerator) DeviceCount() (int, error) {
	return 0, a.notSupported("DeviceCount")
}

// Synchronize returns NotSupportedError.
func (a *Accelerator) Synchronize(device accelerators.DeviceNum) error {
	return a.notSupported("Synchronize")
}

// DeviceProperties returns NotSupportedError.
func (a *Accelerator) DeviceProperties(device accelerators.DeviceNum) (accelerators.DeviceProperties, error) {
	return accelerators.DeviceProperties{}, a.notSupported("DeviceProperties")
}

// RNGState returns NotSupportedError.
func (a *Accelerator) RNGState(device accelerators.DeviceNum) ([]byte, error) {
	return nil, a.notSupported("RNGState")
}

// SetRNGState returns NotSupportedError.
func (a *Accelerator) SetRNGState(state []byte, device accelerators.DeviceNum) error {
	return a.notSupported("SetRNGState")
}

// ManualSeed returns NotSupportedError.
func (a *Accelerator) ManualSeed(seed uint64) error {
	return a.notSupported("ManualSeed")
}

// ManualSeedAll returns NotSupportedError.
func (a *Accelerator) ManualSeedAll(seed uint64) error {
	return a.notSupported("ManualSeedAll")
}

// InitialSeed returns NotSupportedError.
func (a *Accelerator) InitialSeed() (uint64, error) {
	return 0, a.notSupported("InitialSeed")
}

// DefaultGenerator returns NotSupportedError.
func (a *Accelerator) DefaultGenerator(device accelerators.DeviceNum) (accelerators.Generator, error) {
	return nil, a.notSupported("DefaultGenerator")
}

// NewStream returns NotSupportedError.
func (a *Accelerator) NewStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	return nil, a.notSupported("NewStream")
}

// CurrentStream returns NotSupportedError.
func (a *Accelerator) CurrentStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	return nil, a.notSupported("CurrentStream")
}

// SetCurrentStream returns NotSupportedError.
func (a *Accelerator) SetCurrentStream(s accelerators.Stream) error {
	return a.notSupported("SetCurrentStream")
}

// DefaultStream returns NotSupportedError.
func (a *Accelerator) DefaultStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	return nil, a.notSupported("DefaultStream")
}

// NewEvent returns NotSupportedError.
func (a *Accelerator) NewEvent() (accelerators.Event, error) {
	return nil, a.notSupported("NewEvent")
}

// EmptyCache returns NotSupportedError.
func (a *Accelerator) EmptyCache() error {
	return a.notSupported("EmptyCache")
}

// MemoryAllocated returns NotSupportedError.
func (a *Accelerator) MemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MemoryAllocated")
}

// MaxMemoryAllocated returns NotSupportedError.
func (a *Accelerator) MaxMemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MaxMemoryAllocated")
}

// ResetMaxMemoryAllocated returns NotSupportedError.
func (a *Accelerator) ResetMaxMemoryAllocated(device accelerators.DeviceNum) error {
	return a.notSupported("ResetMaxMemoryAllocated")
}

// MemoryCached returns NotSupportedError.
func (a *Accelerator) MemoryCached(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MemoryCached")
}

// MaxMemoryCached returns NotSupportedError.
func (a *Accelerator) MaxMemoryCached(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MaxMemoryCached")
}

// ResetMaxMemoryCached returns NotSupportedError.
func (a *Accelerator) ResetMaxMemoryCached(device accelerators.DeviceNum) error {
	return a.notSupported("ResetMaxMemoryCached")
}

// MemoryReserved returns NotSupportedError.
func (a *Accelerator) MemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MemoryReserved")
}

// MaxMemoryReserved returns NotSupportedError.
func (a *Accelerator) MaxMemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("MaxMemoryReserved")
}

// MemoryStats returns NotSupportedError.
func (a *Accelerator) MemoryStats(device accelerators.DeviceNum) (accelerators.MemoryStats, error) {
	return accelerators.MemoryStats{}, a.notSupported("MemoryStats")
}

// ResetPeakMemoryStats returns NotSupportedError.
func (a *Accelerator) ResetPeakMemoryStats(device accelerators.DeviceNum) error {
	return a.notSupported("ResetPeakMemoryStats")
}

// TotalMemory returns NotSupportedError.
func (a *Accelerator) TotalMemory(device accelerators.DeviceNum) (uint64, error) {
	return 0, a.notSupported("TotalMemory")
}

// NewBuffer returns NotSupportedError.
func (a *Accelerator) NewBuffer(dtype dtypes.DType, length int, device accelerators.DeviceNum) (accelerators.Buffer, error) {
	return nil, a.notSupported("NewBuffer")
}

// PinMemory returns NotSupportedError.
func (a *Accelerator) PinMemory(b accelerators.Buffer) (accelerators.Buffer, error) {
	return nil, a.notSupported("PinMemory")
}

// OnAccelerator is the usual device-string prefix test.
func (a *Accelerator) OnAccelerator(b accelerators.Buffer) bool {
	if b == nil {
		return false
	}
	return strings.HasPrefix(b.Device().String(), a.Name()+":")
}

// IsBF16Supported returns false.
func (a *Accelerator) IsBF16Supported() bool { return false }

// IsFP16Supported returns false.
func (a *Accelerator) IsFP16Supported() bool { return false }

// RangePush is a no-op.
func (a *Accelerator) RangePush(msg string) {}

// RangePop is a no-op.
func (a *Accelerator) RangePop() {}

// OpBuilderSource reports the source of the registry snapshot.
func (a *Accelerator) OpBuilderSource() opbuilder.Source {
	return a.builders.Source()
}

// GetOpBuilder returns the factory for the named builder, or nil.
func (a *Accelerator) GetOpBuilder(name string) opbuilder.Factory {
	return a.builders.Get(name)
}

// CreateOpBuilder returns a fresh instance of the named builder, or nil.
func (a *Accelerator) CreateOpBuilder(name string) opbuilder.Builder {
	return a.builders.Create(name)
}

// OpBuilderNames returns the sorted names of the registered builders.
func (a *Accelerator) OpBuilderNames() []string {
	return a.builders.Names()
}

// LazyCall runs fn immediately: there is no runtime to wait for.
func (a *Accelerator) LazyCall(fn func()) { fn() }

// Finalize is a no-op.
func (a *Accelerator) Finalize() {}
