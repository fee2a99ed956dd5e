package musa

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/dtypes"
	"github.com/gomusa/gomusa/opbuilder"
)

// Accelerator implements accelerators.Accelerator over a MUSA Runtime.
//
// Every method is a thin forward; the only local logic is the capability
// bookkeeping (optional runtime surfaces are probed once, at construction)
// and the fp16 hardware-generation policy.
type Accelerator struct {
	rt   Runtime
	caps accelerators.Capabilities

	// Optional runtime surfaces; nil when the runtime doesn't provide them.
	memStats MemoryStatsRuntime
	reserved MemoryReservedRuntime
	peak     PeakStatsRuntime
	tracing  TracingRuntime

	builders *opbuilder.Registry
}

// Compile-time check that musa.Accelerator implements accelerators.Accelerator.
var _ accelerators.Accelerator = (*Accelerator)(nil)

// NewWithRuntime returns an Accelerator over the given runtime. It allows more
// control, not available with the default New constructor.
func NewWithRuntime(rt Runtime) *Accelerator {
	a := &Accelerator{
		rt:       rt,
		builders: opbuilder.NewRegistry(),
	}
	// Optional surfaces are decided here, once, never re-probed per call.
	a.memStats, _ = rt.(MemoryStatsRuntime)
	a.reserved, _ = rt.(MemoryReservedRuntime)
	a.peak, _ = rt.(PeakStatsRuntime)
	a.tracing, _ = rt.(TracingRuntime)
	a.caps = accelerators.Capabilities{
		Features: map[accelerators.Feature]bool{
			accelerators.FeatureMemoryStats:    a.memStats != nil,
			accelerators.FeatureMemoryReserved: a.reserved != nil,
			accelerators.FeaturePeakStatsReset: a.peak != nil,
			accelerators.FeatureTracing:        a.tracing != nil,
		},
		DTypes: map[dtypes.DType]bool{
			dtypes.Uint8:    true,
			dtypes.Int32:    true,
			dtypes.Int64:    true,
			dtypes.Float16:  true,
			dtypes.Float32:  true,
			dtypes.Float64:  true,
			dtypes.BFloat16: true,
		},
	}
	return a
}

// AssertValid panics if the accelerator is nil or has already been finalized.
func (a *Accelerator) AssertValid() {
	if a == nil {
		exceptions.Panicf("%q accelerator is nil", BackendName)
	}
	if a.rt == nil {
		exceptions.Panicf("%q accelerator's runtime is nil, has it already been finalized?", BackendName)
	}
}

func (a *Accelerator) notSupported(op string) error {
	return errors.Wrapf(accelerators.ErrNotSupported, "%s on the %q runtime", op, BackendName)
}

// Name returns the short name of the accelerator.
func (a *Accelerator) Name() string { return BackendName }

// String returns the same as Name.
func (a *Accelerator) String() string { return a.Name() }

// Description is a longer description of the accelerator.
func (a *Accelerator) Description() string {
	a.AssertValid()
	count, err := a.rt.DeviceCount()
	if err != nil {
		return fmt.Sprintf("%s - MThreads MUSA runtime", BackendName)
	}
	return fmt.Sprintf("%s - MThreads MUSA runtime, %d device(s)", BackendName, count)
}

// CommunicationBackend returns "mccl".
func (a *Accelerator) CommunicationBackend() string { return CommunicationBackend }

// IsAvailable reports whether the runtime found a usable device.
func (a *Accelerator) IsAvailable() bool {
	a.AssertValid()
	return a.rt.IsAvailable()
}

// IsSynchronizedDevice returns false: MUSA devices execute asynchronously.
func (a *Accelerator) IsSynchronizedDevice() bool { return false }

// Capabilities returns the capability table decided at construction.
func (a *Accelerator) Capabilities() accelerators.Capabilities {
	return a.caps.Clone()
}

// Device APIs.

// DeviceName returns "musa" for AnyDevice, otherwise "musa:<device>".
func (a *Accelerator) DeviceName(device accelerators.DeviceNum) string {
	return accelerators.Device{Accel: BackendName, Num: device}.String()
}

// Device returns a handle for the given device.
func (a *Accelerator) Device(device accelerators.DeviceNum) (accelerators.Device, error) {
	a.AssertValid()
	if device == accelerators.AnyDevice {
		var err error
		device, err = a.rt.CurrentDevice()
		if err != nil {
			return accelerators.Device{}, err
		}
	}
	return accelerators.Device{Accel: BackendName, Num: device}, nil
}

// SetDevice makes the given device current.
func (a *Accelerator) SetDevice(device accelerators.DeviceNum) error {
	a.AssertValid()
	return a.rt.SetDevice(device)
}

// CurrentDevice returns the current device.
func (a *Accelerator) CurrentDevice() (accelerators.DeviceNum, error) {
	a.AssertValid()
	return a.rt.CurrentDevice()
}

// CurrentDeviceName returns "musa:<current device>".
func (a *Accelerator) CurrentDeviceName() (string, error) {
	device, err := a.CurrentDevice()
	if err != nil {
		return "", err
	}
	return a.DeviceName(device), nil
}

// DeviceCount returns the number of visible devices.
func (a *Accelerator) DeviceCount() (int, error) {
	a.AssertValid()
	return a.rt.DeviceCount()
}

// Synchronize blocks until all work queued on the device completes.
func (a *Accelerator) Synchronize(device accelerators.DeviceNum) error {
	a.AssertValid()
	return a.rt.Synchronize(device)
}

// DeviceProperties describes the given device.
func (a *Accelerator) DeviceProperties(device accelerators.DeviceNum) (accelerators.DeviceProperties, error) {
	a.AssertValid()
	return a.rt.DeviceProperties(device)
}

// RNG APIs.

// RNGState returns the opaque device RNG state.
func (a *Accelerator) RNGState(device accelerators.DeviceNum) ([]byte, error) {
	a.AssertValid()
	return a.rt.RNGState(device)
}

// SetRNGState restores a state previously returned by RNGState.
func (a *Accelerator) SetRNGState(state []byte, device accelerators.DeviceNum) error {
	a.AssertValid()
	return a.rt.SetRNGState(state, device)
}

// ManualSeed seeds the current device RNG.
func (a *Accelerator) ManualSeed(seed uint64) error {
	a.AssertValid()
	return a.rt.ManualSeed(seed)
}

// ManualSeedAll seeds every device RNG.
func (a *Accelerator) ManualSeedAll(seed uint64) error {
	a.AssertValid()
	return a.rt.ManualSeedAll(seed)
}

// InitialSeed returns the seed the current device RNG was initialized with.
func (a *Accelerator) InitialSeed() (uint64, error) {
	a.AssertValid()
	return a.rt.InitialSeed()
}

// DefaultGenerator returns the default RNG of the given device.
func (a *Accelerator) DefaultGenerator(device accelerators.DeviceNum) (accelerators.Generator, error) {
	a.AssertValid()
	return a.rt.DefaultGenerator(device)
}

// Streams and events.

// NewStream creates an execution stream on the device.
func (a *Accelerator) NewStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	a.AssertValid()
	return a.rt.NewStream(device)
}

// CurrentStream returns the stream currently selected for the device.
func (a *Accelerator) CurrentStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	a.AssertValid()
	return a.rt.CurrentStream(device)
}

// SetCurrentStream makes the given stream current for its device.
func (a *Accelerator) SetCurrentStream(s accelerators.Stream) error {
	a.AssertValid()
	return a.rt.SetCurrentStream(s)
}

// DefaultStream returns the device's default stream.
func (a *Accelerator) DefaultStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	a.AssertValid()
	return a.rt.DefaultStream(device)
}

// NewEvent creates a new, unrecorded event.
func (a *Accelerator) NewEvent() (accelerators.Event, error) {
	a.AssertValid()
	return a.rt.NewEvent()
}

// Memory management.

// EmptyCache releases cached, unused device memory back to the driver.
func (a *Accelerator) EmptyCache() error {
	a.AssertValid()
	return a.rt.EmptyCache()
}

// MemoryAllocated returns the bytes currently allocated on the device.
func (a *Accelerator) MemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	return a.rt.MemoryAllocated(device)
}

// MaxMemoryAllocated returns the high-water mark of MemoryAllocated.
func (a *Accelerator) MaxMemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	return a.rt.MaxMemoryAllocated(device)
}

// ResetMaxMemoryAllocated resets the high-water mark to the current value.
func (a *Accelerator) ResetMaxMemoryAllocated(device accelerators.DeviceNum) error {
	a.AssertValid()
	return a.rt.ResetMaxMemoryAllocated(device)
}

// MemoryCached returns the bytes held by the caching allocator.
func (a *Accelerator) MemoryCached(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	return a.rt.MemoryCached(device)
}

// MaxMemoryCached returns the high-water mark of MemoryCached.
func (a *Accelerator) MaxMemoryCached(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	return a.rt.MaxMemoryCached(device)
}

// ResetMaxMemoryCached resets the high-water mark to the current value.
func (a *Accelerator) ResetMaxMemoryCached(device accelerators.DeviceNum) error {
	a.AssertValid()
	return a.rt.ResetMaxMemoryCached(device)
}

// MemoryReserved returns the bytes reserved from the driver, or
// ErrNotSupported when the runtime doesn't track reservations.
func (a *Accelerator) MemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	if a.reserved == nil {
		return 0, a.notSupported("MemoryReserved")
	}
	return a.reserved.MemoryReserved(device)
}

// MaxMemoryReserved returns the high-water mark of MemoryReserved, or
// ErrNotSupported when the runtime doesn't track reservations.
func (a *Accelerator) MaxMemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	if a.reserved == nil {
		return 0, a.notSupported("MaxMemoryReserved")
	}
	return a.reserved.MaxMemoryReserved(device)
}

// MemoryStats returns the full allocator statistics, or ErrNotSupported when
// the runtime doesn't provide them.
func (a *Accelerator) MemoryStats(device accelerators.DeviceNum) (accelerators.MemoryStats, error) {
	a.AssertValid()
	if a.memStats == nil {
		return accelerators.MemoryStats{}, a.notSupported("MemoryStats")
	}
	return a.memStats.MemoryStats(device)
}

// ResetPeakMemoryStats resets every peak counter, or returns ErrNotSupported
// when the runtime doesn't provide the operation.
func (a *Accelerator) ResetPeakMemoryStats(device accelerators.DeviceNum) error {
	a.AssertValid()
	if a.peak == nil {
		return a.notSupported("ResetPeakMemoryStats")
	}
	return a.peak.ResetPeakMemoryStats(device)
}

// TotalMemory returns the total memory of the device.
func (a *Accelerator) TotalMemory(device accelerators.DeviceNum) (uint64, error) {
	a.AssertValid()
	props, err := a.rt.DeviceProperties(device)
	if err != nil {
		return 0, err
	}
	return props.TotalMemory, nil
}

// Data types and buffers.

// IsBF16Supported reports whether the devices support bfloat16 arithmetic.
func (a *Accelerator) IsBF16Supported() bool {
	a.AssertValid()
	return a.rt.IsBF16Supported()
}

// IsFP16Supported reports whether the devices support float16 arithmetic:
// hardware generations with compute-capability major version 7 or later do.
func (a *Accelerator) IsFP16Supported() bool {
	a.AssertValid()
	props, err := a.rt.DeviceProperties(accelerators.AnyDevice)
	if err != nil {
		klog.Warningf("accelerator %q: cannot query device capability for fp16 support: %v", BackendName, err)
		return false
	}
	return props.ComputeMajor >= 7
}

// NewBuffer allocates a device buffer holding length values of dtype.
func (a *Accelerator) NewBuffer(dtype dtypes.DType, length int, device accelerators.DeviceNum) (accelerators.Buffer, error) {
	a.AssertValid()
	if !a.caps.Supports(dtype) {
		return nil, errors.Errorf("accelerator %q does not support buffers of dtype %s", BackendName, dtype)
	}
	return a.rt.NewBuffer(dtype, length, device)
}

// PinMemory returns a page-locked host version of the buffer.
func (a *Accelerator) PinMemory(b accelerators.Buffer) (accelerators.Buffer, error) {
	a.AssertValid()
	return a.rt.PinMemory(b)
}

// OnAccelerator reports whether the buffer lives on a MUSA device: true iff
// its device string starts with "musa:". A bare "musa" with no device index
// does not match.
func (a *Accelerator) OnAccelerator(b accelerators.Buffer) bool {
	if b == nil {
		return false
	}
	return strings.HasPrefix(b.Device().String(), BackendName+":")
}

// Misc.

// RangePush opens a named profiler range. No-op when the runtime has no
// tracing support.
func (a *Accelerator) RangePush(msg string) {
	a.AssertValid()
	if a.tracing == nil {
		return
	}
	a.tracing.RangePush(msg)
}

// RangePop closes the innermost profiler range. No-op when the runtime has no
// tracing support.
func (a *Accelerator) RangePop() {
	a.AssertValid()
	if a.tracing == nil {
		return
	}
	a.tracing.RangePop()
}

// LazyCall runs fn now if the runtime is initialized, otherwise queues it.
func (a *Accelerator) LazyCall(fn func()) {
	a.AssertValid()
	a.rt.LazyCall(fn)
}

// Op builder access.

// OpBuilderSource reports which registration source the builder registry
// snapshotted from.
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

// Finalize releases the runtime and makes the accelerator invalid.
func (a *Accelerator) Finalize() {
	if a.rt == nil {
		return
	}
	if err := a.rt.Close(); err != nil {
		klog.Warningf("Failure while closing the %q runtime: %+v", BackendName, err)
	}
	a.rt = nil
}
