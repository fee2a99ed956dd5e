package musasim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/dtypes"
)

func TestDeviceSelection(t *testing.T) {
	rt := New(WithDeviceCount(2))
	defer func() { _ = rt.Close() }()

	count, err := rt.DeviceCount()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	current, err := rt.CurrentDevice()
	require.NoError(t, err)
	assert.Equal(t, accelerators.DeviceNum(0), current)

	require.NoError(t, rt.SetDevice(1))
	current, err = rt.CurrentDevice()
	require.NoError(t, err)
	assert.Equal(t, accelerators.DeviceNum(1), current)

	assert.Error(t, rt.SetDevice(2), "out-of-range device must be rejected")
	assert.Error(t, rt.SetDevice(-2))
}

func TestDeviceProperties(t *testing.T) {
	rt := New(WithTotalMemory(8<<30), WithComputeCapability(8, 2))
	defer func() { _ = rt.Close() }()

	props, err := rt.DeviceProperties(accelerators.AnyDevice)
	require.NoError(t, err)
	assert.Contains(t, props.Name, "MTT S4000")
	assert.NotEmpty(t, props.UUID)
	assert.NotEmpty(t, props.PCIBusID)
	assert.Equal(t, uint64(8<<30), props.TotalMemory)
	assert.Equal(t, "8.2", props.Compute())
	assert.True(t, rt.IsBF16Supported())
}

func TestAllocationCounters(t *testing.T) {
	rt := New()
	defer func() { _ = rt.Close() }()

	buffer, err := rt.NewBuffer(dtypes.Float64, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, dtypes.Float64, buffer.DType())
	assert.Equal(t, 1000, buffer.Len())
	assert.Equal(t, "musa:0", buffer.Device().String())

	allocated, err := rt.MemoryAllocated(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(8000), allocated)

	cached, err := rt.MemoryCached(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(cacheBlockSize), cached, "the cache reserves whole blocks")

	require.NoError(t, rt.Free(buffer))
	allocated, err = rt.MemoryAllocated(0)
	require.NoError(t, err)
	assert.Zero(t, allocated)

	// The cache keeps its blocks until explicitly emptied.
	cached, err = rt.MemoryCached(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(cacheBlockSize), cached)
	require.NoError(t, rt.EmptyCache())
	cached, err = rt.MemoryCached(0)
	require.NoError(t, err)
	assert.Zero(t, cached)

	stats, err := rt.MemoryStats(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.NumAllocs)
	assert.Equal(t, uint64(1), stats.NumFrees)
	assert.Equal(t, uint64(8000), stats.PeakAllocated)

	require.NoError(t, rt.ResetPeakMemoryStats(0))
	stats, err = rt.MemoryStats(0)
	require.NoError(t, err)
	assert.Zero(t, stats.PeakAllocated)
}

func TestOutOfMemory(t *testing.T) {
	rt := New(WithTotalMemory(1 << 10))
	defer func() { _ = rt.Close() }()

	_, err := rt.NewBuffer(dtypes.Uint8, 1<<10, 0)
	require.NoError(t, err)
	_, err = rt.NewBuffer(dtypes.Uint8, 1, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of memory")
}

func TestBufferValidation(t *testing.T) {
	rt := New()
	defer func() { _ = rt.Close() }()

	_, err := rt.NewBuffer(dtypes.InvalidDType, 1, 0)
	assert.Error(t, err)
	_, err = rt.NewBuffer(dtypes.Float32, -1, 0)
	assert.Error(t, err)
}

func TestPerDeviceIsolation(t *testing.T) {
	rt := New(WithDeviceCount(2))
	defer func() { _ = rt.Close() }()

	_, err := rt.NewBuffer(dtypes.Int32, 256, 1)
	require.NoError(t, err)

	allocated, err := rt.MemoryAllocated(0)
	require.NoError(t, err)
	assert.Zero(t, allocated, "allocations on device 1 must not show up on device 0")

	allocated, err = rt.MemoryAllocated(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), allocated)
}

func TestSetCurrentStream(t *testing.T) {
	rt := New(WithDeviceCount(2))
	defer func() { _ = rt.Close() }()

	stream, err := rt.NewStream(1)
	require.NoError(t, err)
	require.NoError(t, rt.SetCurrentStream(stream))

	current, err := rt.CurrentStream(1)
	require.NoError(t, err)
	assert.Same(t, stream, current)

	// The selection is per device: device 0 keeps its default stream.
	defStream, err := rt.DefaultStream(0)
	require.NoError(t, err)
	current, err = rt.CurrentStream(0)
	require.NoError(t, err)
	assert.Same(t, defStream, current)

	assert.Error(t, rt.SetCurrentStream(&foreignStream{}), "streams from another runtime must be rejected")
}

type foreignStream struct{}

func (s *foreignStream) Device() accelerators.Device { return accelerators.Device{Accel: "other"} }
func (s *foreignStream) Synchronize() error          { return nil }
func (s *foreignStream) Query() (bool, error)        { return true, nil }

func TestManualSeedAll(t *testing.T) {
	rt := New(WithDeviceCount(2), WithSeed(1))
	defer func() { _ = rt.Close() }()

	require.NoError(t, rt.ManualSeedAll(99))
	for device := accelerators.DeviceNum(0); device < 2; device++ {
		gen, err := rt.DefaultGenerator(device)
		require.NoError(t, err)
		assert.Equal(t, uint64(99), gen.Seed())
	}
}

func TestRNGStateValidation(t *testing.T) {
	rt := New()
	defer func() { _ = rt.Close() }()

	state, err := rt.RNGState(0)
	require.NoError(t, err)
	assert.Len(t, state, generatorStateSize)
	assert.Error(t, rt.SetRNGState([]byte{1, 2, 3}, 0), "truncated state must be rejected")
}

func TestClosedRuntime(t *testing.T) {
	rt := New()
	require.NoError(t, rt.Close())

	assert.False(t, rt.IsAvailable())
	_, err := rt.DeviceCount()
	assert.Error(t, err)
	_, err = rt.NewBuffer(dtypes.Float32, 1, 0)
	assert.Error(t, err)
	assert.Error(t, rt.EmptyCache())
}
