package accelerators

import (
	"fmt"
	"strconv"
)

// Device is a handle to one device of an accelerator.
type Device struct {
	// Accel is the short name of the owning backend, e.g. "musa".
	Accel string

	// Num is the device index, or AnyDevice for the backend's current device.
	Num DeviceNum
}

// String returns the canonical device string: the bare backend name for
// AnyDevice, otherwise "<name>:<num>".
func (d Device) String() string {
	if d.Num == AnyDevice {
		return d.Accel
	}
	return d.Accel + ":" + strconv.Itoa(int(d.Num))
}

// DeviceProperties describes one physical (or simulated) device.
type DeviceProperties struct {
	// Name is the marketing name of the device, e.g. "MTT S4000".
	Name string

	// UUID uniquely identifies the device across processes.
	UUID string

	// PCIBusID is the bus/device/domain ID, when the runtime reports one.
	PCIBusID string

	// TotalMemory is the total device memory in bytes.
	TotalMemory uint64

	// ComputeMajor and ComputeMinor are the compute-capability version of the
	// device; -1 when the runtime doesn't report one.
	ComputeMajor int
	ComputeMinor int
}

// Compute returns the compute capability formatted as "<major>.<minor>".
func (p DeviceProperties) Compute() string {
	return strconv.Itoa(p.ComputeMajor) + "." + strconv.Itoa(p.ComputeMinor)
}

// String implements fmt.Stringer.
func (p DeviceProperties) String() string {
	return fmt.Sprintf("%s (compute %s, %d bytes)", p.Name, p.Compute(), p.TotalMemory)
}
