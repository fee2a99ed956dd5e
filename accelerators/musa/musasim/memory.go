package musasim

import (
	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/accelerators/musa"
	"github.com/gomusa/gomusa/dtypes"
)

// roundUpToBlock rounds n up to the caching allocator granularity.
func roundUpToBlock(n uint64) uint64 {
	blocks := (n + cacheBlockSize - 1) / cacheBlockSize
	return blocks * cacheBlockSize
}

type simBuffer struct {
	dtype  dtypes.DType
	length int
	device accelerators.Device
	pinned bool
}

func (b *simBuffer) DType() dtypes.DType         { return b.dtype }
func (b *simBuffer) Len() int                    { return b.length }
func (b *simBuffer) Device() accelerators.Device { return b.device }

// NewBuffer implements musa.Runtime: it accounts the allocation on the device.
func (r *Runtime) NewBuffer(dtype dtypes.DType, length int, device accelerators.DeviceNum) (accelerators.Buffer, error) {
	if !dtype.IsValid() {
		return nil, errors.Errorf("cannot allocate buffer of invalid dtype %d", int32(dtype))
	}
	if length < 0 {
		return nil, errors.Errorf("cannot allocate buffer of negative length %d", length)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	size := dtype.Memory(length)
	if dev.allocated+size > dev.props.TotalMemory {
		return nil, errors.Errorf("out of memory on %s: %d bytes requested, %d allocated of %d total",
			dev.props.Name, size, dev.allocated, dev.props.TotalMemory)
	}
	dev.allocated += size
	dev.peakAllocated = max(dev.peakAllocated, dev.allocated)
	dev.cached = max(dev.cached, roundUpToBlock(dev.allocated))
	dev.peakCached = max(dev.peakCached, dev.cached)
	dev.numAllocs++

	num := device
	if num == accelerators.AnyDevice {
		num = r.current
	}
	return &simBuffer{
		dtype:  dtype,
		length: length,
		device: accelerators.Device{Accel: musa.BackendName, Num: num},
	}, nil
}

// Free releases a buffer previously returned by NewBuffer. The real driver
// frees on garbage collection; the simulation makes it explicit so tests can
// exercise the allocator counters.
func (r *Runtime) Free(b accelerators.Buffer) error {
	buf, ok := b.(*simBuffer)
	if !ok {
		return errors.Errorf("buffer %T was not allocated by the simulated runtime", b)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(buf.device.Num)
	if err != nil {
		return err
	}
	size := buf.dtype.Memory(buf.length)
	if size > dev.allocated {
		return errors.Errorf("double free of %d bytes on %s", size, dev.props.Name)
	}
	dev.allocated -= size
	dev.numFrees++
	return nil
}

// PinMemory returns a page-locked host copy handle of the buffer. The returned
// buffer lives on the host, not on an accelerator device.
func (r *Runtime) PinMemory(b accelerators.Buffer) (accelerators.Buffer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return nil, err
	}
	return &simBuffer{
		dtype:  b.DType(),
		length: b.Len(),
		device: accelerators.Device{Accel: "cpu", Num: accelerators.AnyDevice},
		pinned: true,
	}, nil
}

// EmptyCache releases the cached blocks not backing live allocations.
func (r *Runtime) EmptyCache() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return err
	}
	for _, dev := range r.devices {
		dev.cached = roundUpToBlock(dev.allocated)
	}
	return nil
}

// MemoryAllocated implements musa.Runtime.
func (r *Runtime) MemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return 0, err
	}
	return dev.allocated, nil
}

// MaxMemoryAllocated implements musa.Runtime.
func (r *Runtime) MaxMemoryAllocated(device accelerators.DeviceNum) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return 0, err
	}
	return dev.peakAllocated, nil
}

// ResetMaxMemoryAllocated implements musa.Runtime.
func (r *Runtime) ResetMaxMemoryAllocated(device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return err
	}
	dev.peakAllocated = dev.allocated
	return nil
}

// MemoryCached implements musa.Runtime.
func (r *Runtime) MemoryCached(device accelerators.DeviceNum) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return 0, err
	}
	return dev.cached, nil
}

// MaxMemoryCached implements musa.Runtime.
func (r *Runtime) MaxMemoryCached(device accelerators.DeviceNum) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return 0, err
	}
	return dev.peakCached, nil
}

// ResetMaxMemoryCached implements musa.Runtime.
func (r *Runtime) ResetMaxMemoryCached(device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return err
	}
	dev.peakCached = dev.cached
	return nil
}

// MemoryReserved implements musa.MemoryReservedRuntime: in the simulation the
// reservation is the cached pool.
func (r *Runtime) MemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	return r.MemoryCached(device)
}

// MaxMemoryReserved implements musa.MemoryReservedRuntime.
func (r *Runtime) MaxMemoryReserved(device accelerators.DeviceNum) (uint64, error) {
	return r.MaxMemoryCached(device)
}

// MemoryStats implements musa.MemoryStatsRuntime.
func (r *Runtime) MemoryStats(device accelerators.DeviceNum) (accelerators.MemoryStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return accelerators.MemoryStats{}, err
	}
	return accelerators.MemoryStats{
		Allocated:     dev.allocated,
		PeakAllocated: dev.peakAllocated,
		Reserved:      dev.cached,
		PeakReserved:  dev.peakCached,
		NumAllocs:     dev.numAllocs,
		NumFrees:      dev.numFrees,
	}, nil
}

// ResetPeakMemoryStats implements musa.PeakStatsRuntime.
func (r *Runtime) ResetPeakMemoryStats(device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return err
	}
	dev.peakAllocated = dev.allocated
	dev.peakCached = dev.cached
	return nil
}
