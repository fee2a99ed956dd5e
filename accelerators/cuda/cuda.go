//go:build cuda

package cuda

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/accelerators/notsupported"
)

// Registers New() as the constructor for the "cuda" accelerator.
func init() {
	accelerators.Register(BackendName, New)
}

// New returns the NVML-backed discovery accelerator. The config string is not
// used by this backend and is ignored.
//
// NVML initialization failures are not fatal: the accelerator is returned
// unavailable, so callers can probe with IsAvailable.
func New(_ string) accelerators.Accelerator {
	a := &Accelerator{}
	a.Backend = BackendName
	ret := nvml.Init()
	if ret != nvml.SUCCESS {
		klog.Warningf("accelerator %q: NVML initialization failed: %s", BackendName, nvml.ErrorString(ret))
		return a
	}
	a.available = true
	return a
}

// Accelerator is the NVML-backed, discovery-only CUDA accelerator. Everything
// not overridden below reports ErrNotSupported via the embedded stub.
type Accelerator struct {
	notsupported.Accelerator
	available bool
}

var _ accelerators.Accelerator = (*Accelerator)(nil)

func nvmlError(op string, ret nvml.Return) error {
	return errors.Errorf("%s failed on the %q accelerator: %s", op, BackendName, nvml.ErrorString(ret))
}

func (a *Accelerator) device(device accelerators.DeviceNum) (nvml.Device, error) {
	if !a.available {
		return nil, errors.Errorf("accelerator %q is not available", BackendName)
	}
	if device == accelerators.AnyDevice {
		device = 0
	}
	dev, ret := nvml.DeviceGetHandleByIndex(int(device))
	if ret != nvml.SUCCESS {
		return nil, nvmlError(fmt.Sprintf("DeviceGetHandleByIndex(%d)", device), ret)
	}
	return dev, nil
}

// Description is a longer description of the accelerator.
func (a *Accelerator) Description() string {
	count, err := a.DeviceCount()
	if err != nil {
		return fmt.Sprintf("%s - NVML discovery", BackendName)
	}
	return fmt.Sprintf("%s - NVML discovery, %d device(s)", BackendName, count)
}

// CommunicationBackend returns "nccl".
func (a *Accelerator) CommunicationBackend() string { return CommunicationBackend }

// IsAvailable reports whether NVML initialized successfully.
func (a *Accelerator) IsAvailable() bool { return a.available }

// DeviceCount returns the number of NVIDIA devices NVML sees.
func (a *Accelerator) DeviceCount() (int, error) {
	if !a.available {
		return 0, errors.Errorf("accelerator %q is not available", BackendName)
	}
	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, nvmlError("DeviceGetCount", ret)
	}
	return count, nil
}

// Device returns a handle for the given device.
func (a *Accelerator) Device(device accelerators.DeviceNum) (accelerators.Device, error) {
	if _, err := a.device(device); err != nil {
		return accelerators.Device{}, err
	}
	if device == accelerators.AnyDevice {
		device = 0
	}
	return accelerators.Device{Accel: BackendName, Num: device}, nil
}

// Synchronize is a no-op: the discovery backend queues no device work.
func (a *Accelerator) Synchronize(device accelerators.DeviceNum) error { return nil }

// DeviceProperties describes the given device from NVML.
func (a *Accelerator) DeviceProperties(device accelerators.DeviceNum) (accelerators.DeviceProperties, error) {
	dev, err := a.device(device)
	if err != nil {
		return accelerators.DeviceProperties{}, err
	}
	var props accelerators.DeviceProperties
	name, ret := dev.GetName()
	if ret != nvml.SUCCESS {
		return props, nvmlError("GetName", ret)
	}
	props.Name = name
	uuid, ret := dev.GetUUID()
	if ret != nvml.SUCCESS {
		return props, nvmlError("GetUUID", ret)
	}
	props.UUID = uuid
	memory, ret := dev.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return props, nvmlError("GetMemoryInfo", ret)
	}
	props.TotalMemory = memory.Total
	major, minor, ret := dev.GetCudaComputeCapability()
	if ret != nvml.SUCCESS {
		props.ComputeMajor, props.ComputeMinor = -1, -1
		return props, nil
	}
	props.ComputeMajor, props.ComputeMinor = major, minor
	return props, nil
}

// TotalMemory returns the total memory of the device.
func (a *Accelerator) TotalMemory(device accelerators.DeviceNum) (uint64, error) {
	props, err := a.DeviceProperties(device)
	if err != nil {
		return 0, err
	}
	return props.TotalMemory, nil
}

// MemoryAllocated returns the device-wide used memory NVML reports. It counts
// all processes, not only the calling one.
func (a *Accelerator) MemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	dev, err := a.device(device)
	if err != nil {
		return 0, err
	}
	memory, ret := dev.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return 0, nvmlError("GetMemoryInfo", ret)
	}
	return memory.Used, nil
}

// IsFP16Supported reports float16 support: compute capability 7.0 and later.
func (a *Accelerator) IsFP16Supported() bool {
	props, err := a.DeviceProperties(accelerators.AnyDevice)
	if err != nil {
		return false
	}
	return props.ComputeMajor >= 7
}

// IsBF16Supported reports bfloat16 support: compute capability 8.0 and later.
func (a *Accelerator) IsBF16Supported() bool {
	props, err := a.DeviceProperties(accelerators.AnyDevice)
	if err != nil {
		return false
	}
	return props.ComputeMajor >= 8
}

// Finalize shuts NVML down and makes the accelerator unavailable.
func (a *Accelerator) Finalize() {
	if !a.available {
		return
	}
	if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
		klog.Warningf("Failure while shutting NVML down: %s", nvml.ErrorString(ret))
	}
	a.available = false
}
