// Package musasim implements a pure-Go, in-memory musa.Runtime.
//
// It tracks devices, allocations and RNG state the way the real driver does,
// so the musa accelerator can be exercised in tests and on machines without
// MUSA hardware:
//
//	musa.SetRuntime(musasim.New())
//	accel := accelerators.NewWithConfig("musa")
package musasim

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/accelerators/musa"
)

// cacheBlockSize is the granularity the simulated caching allocator reserves
// device memory with.
const cacheBlockSize = 2 << 20

// Runtime is a simulated MUSA runtime. It implements musa.Runtime and all of
// its optional surfaces.
type Runtime struct {
	mu      sync.Mutex
	devices []*simDevice
	current accelerators.DeviceNum
	closed  bool
}

// Compile-time checks: the simulation provides the full runtime surface.
var (
	_ musa.Runtime               = (*Runtime)(nil)
	_ musa.MemoryStatsRuntime    = (*Runtime)(nil)
	_ musa.MemoryReservedRuntime = (*Runtime)(nil)
	_ musa.PeakStatsRuntime      = (*Runtime)(nil)
	_ musa.TracingRuntime        = (*Runtime)(nil)
)

type simDevice struct {
	props accelerators.DeviceProperties
	gen   *simGenerator

	allocated     uint64
	peakAllocated uint64
	cached        uint64
	peakCached    uint64
	numAllocs     uint64
	numFrees      uint64

	defaultStream *simStream
	currentStream *simStream

	rangeDepth int
}

// Option configures the simulated runtime.
type Option func(*config)

type config struct {
	deviceCount  int
	totalMemory  uint64
	computeMajor int
	computeMinor int
	seed         uint64
}

// WithDeviceCount sets the number of simulated devices. Default is 1.
func WithDeviceCount(n int) Option {
	return func(c *config) { c.deviceCount = n }
}

// WithTotalMemory sets the total memory of each simulated device.
// Default is 16 GiB.
func WithTotalMemory(bytes uint64) Option {
	return func(c *config) { c.totalMemory = bytes }
}

// WithComputeCapability sets the compute capability reported by the simulated
// devices. Default is 7.0.
func WithComputeCapability(major, minor int) Option {
	return func(c *config) {
		c.computeMajor = major
		c.computeMinor = minor
	}
}

// WithSeed sets the initial RNG seed of every device. Default is 42.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// New creates a simulated runtime.
func New(opts ...Option) *Runtime {
	cfg := config{
		deviceCount:  1,
		totalMemory:  16 << 30,
		computeMajor: 7,
		computeMinor: 0,
		seed:         42,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	r := &Runtime{current: 0}
	for i := 0; i < cfg.deviceCount; i++ {
		dev := &simDevice{
			props: accelerators.DeviceProperties{
				Name:         fmt.Sprintf("MTT S4000 (simulated #%d)", i),
				UUID:         uuid.NewString(),
				PCIBusID:     fmt.Sprintf("0000:%02x:00.0", i+1),
				TotalMemory:  cfg.totalMemory,
				ComputeMajor: cfg.computeMajor,
				ComputeMinor: cfg.computeMinor,
			},
			gen: &simGenerator{seed: cfg.seed},
		}
		dev.defaultStream = &simStream{device: accelerators.Device{Accel: musa.BackendName, Num: accelerators.DeviceNum(i)}}
		dev.currentStream = dev.defaultStream
		r.devices = append(r.devices, dev)
	}
	return r
}

func (r *Runtime) valid() error {
	if r.closed {
		return errors.New("simulated MUSA runtime is closed")
	}
	return nil
}

// resolve maps AnyDevice to the current device and bounds-checks the index.
// Callers must hold r.mu.
func (r *Runtime) resolve(device accelerators.DeviceNum) (*simDevice, error) {
	if err := r.valid(); err != nil {
		return nil, err
	}
	if device == accelerators.AnyDevice {
		device = r.current
	}
	if device < 0 || int(device) >= len(r.devices) {
		return nil, errors.Errorf("invalid device %d: runtime has %d device(s)", device, len(r.devices))
	}
	return r.devices[device], nil
}

// IsAvailable reports whether the simulation has any device.
func (r *Runtime) IsAvailable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && len(r.devices) > 0
}

// DeviceCount implements musa.Runtime.
func (r *Runtime) DeviceCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return 0, err
	}
	return len(r.devices), nil
}

// CurrentDevice implements musa.Runtime.
func (r *Runtime) CurrentDevice() (accelerators.DeviceNum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return 0, err
	}
	return r.current, nil
}

// SetDevice implements musa.Runtime.
func (r *Runtime) SetDevice(device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.resolve(device); err != nil {
		return err
	}
	if device != accelerators.AnyDevice {
		r.current = device
	}
	return nil
}

// Synchronize is a no-op: the simulation executes synchronously.
func (r *Runtime) Synchronize(device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.resolve(device)
	return err
}

// DeviceProperties implements musa.Runtime.
func (r *Runtime) DeviceProperties(device accelerators.DeviceNum) (accelerators.DeviceProperties, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return accelerators.DeviceProperties{}, err
	}
	return dev.props, nil
}

// IsBF16Supported reports bfloat16 support: compute capability 8.0 and later.
func (r *Runtime) IsBF16Supported() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.devices) == 0 {
		return false
	}
	return r.devices[r.current].props.ComputeMajor >= 8
}

// LazyCall runs fn immediately: the simulation is initialized at construction.
func (r *Runtime) LazyCall(fn func()) {
	fn()
}

// Close implements musa.Runtime.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
