package accelerators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomusa/gomusa/dtypes"
)

// fakeAccelerator records which config it was constructed with.
type fakeAccelerator struct {
	Accelerator
	name   string
	config string
}

func (f *fakeAccelerator) Name() string { return f.name }

// withCleanRegistry empties the accelerator registry for the test and restores
// it afterwards.
func withCleanRegistry(t *testing.T) {
	saved := registeredConstructors
	savedFirst := firstRegistered
	registeredConstructors = make(map[string]Constructor)
	firstRegistered = ""
	t.Cleanup(func() {
		registeredConstructors = saved
		firstRegistered = savedFirst
	})
}

func register(name string) {
	Register(name, func(config string) Accelerator {
		return &fakeAccelerator{name: name, config: config}
	})
}

func TestNewWithConfig(t *testing.T) {
	withCleanRegistry(t)
	register("alpha")
	register("beta")

	// Empty config selects the first registered accelerator.
	accel := NewWithConfig("")
	require.Equal(t, "alpha", accel.Name())

	// A bare name selects that accelerator with an empty configuration.
	accel = NewWithConfig("beta")
	require.Equal(t, "beta", accel.Name())
	require.Empty(t, accel.(*fakeAccelerator).config)

	// "<name>:<config>" passes the configuration through.
	accel = NewWithConfig("beta:opt1,opt2")
	require.Equal(t, "beta", accel.Name())
	require.Equal(t, "opt1,opt2", accel.(*fakeAccelerator).config)

	assert.Panics(t, func() { NewWithConfig("gamma") }, "unknown accelerator name must panic")
}

func TestNewUsesEnvironment(t *testing.T) {
	withCleanRegistry(t)
	register("alpha")
	register("beta")

	t.Setenv(GOMUSA_ACCELERATOR, "beta:from-env")
	accel := New()
	require.Equal(t, "beta", accel.Name())
	require.Equal(t, "from-env", accel.(*fakeAccelerator).config)
}

func TestNewUsesDefaultConfig(t *testing.T) {
	withCleanRegistry(t)
	register("alpha")
	register("beta")

	saved := DefaultConfig
	DefaultConfig = "beta"
	t.Cleanup(func() { DefaultConfig = saved })
	accel := New()
	require.Equal(t, "beta", accel.Name())
}

func TestNewPanicsWithoutRegistrations(t *testing.T) {
	withCleanRegistry(t)
	assert.Panics(t, func() { New() })
}

func TestDeviceString(t *testing.T) {
	assert.Equal(t, "musa", Device{Accel: "musa", Num: AnyDevice}.String())
	assert.Equal(t, "musa:0", Device{Accel: "musa", Num: 0}.String())
	assert.Equal(t, "musa:3", Device{Accel: "musa", Num: 3}.String())
}

func TestDevicePropertiesCompute(t *testing.T) {
	props := DeviceProperties{Name: "MTT S4000", ComputeMajor: 7, ComputeMinor: 1}
	assert.Equal(t, "7.1", props.Compute())
}

func TestMemoryStatsString(t *testing.T) {
	stats := MemoryStats{
		Allocated:     4 << 10,
		PeakAllocated: 8 << 20,
		Reserved:      16 << 20,
		PeakReserved:  16 << 20,
		NumAllocs:     3,
		NumFrees:      1,
	}
	s := stats.String()
	assert.Contains(t, s, "4.0 KiB")
	assert.Contains(t, s, "8.0 MiB")
	assert.Contains(t, s, "allocs=3")
	assert.Contains(t, s, "frees=1")
}

func TestCapabilitiesClone(t *testing.T) {
	caps := Capabilities{
		Features: map[Feature]bool{FeatureTracing: true},
		DTypes:   map[dtypes.DType]bool{dtypes.Float32: true},
	}
	clone := caps.Clone()
	clone.Features[FeatureTracing] = false
	clone.DTypes[dtypes.Float32] = false

	assert.True(t, caps.Has(FeatureTracing), "Clone must not share the Features map")
	assert.True(t, caps.Supports(dtypes.Float32), "Clone must not share the DTypes map")
	assert.False(t, caps.Has(FeatureMemoryStats), "unlisted features are unsupported")
}

func TestFeatureString(t *testing.T) {
	for _, feature := range AllFeatures {
		assert.NotEqual(t, "UnknownFeature", feature.String())
	}
	assert.Equal(t, "UnknownFeature", Feature(99).String())
}
