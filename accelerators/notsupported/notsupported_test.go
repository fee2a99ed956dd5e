package notsupported

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomusa/gomusa/accelerators"
	"github.com/gomusa/gomusa/dtypes"
)

func TestEveryOperationReportsNotSupported(t *testing.T) {
	accel := &Accelerator{Backend: "stub"}
	require.Equal(t, "stub", accel.Name())
	assert.False(t, accel.IsAvailable())

	_, err := accel.DeviceCount()
	assert.True(t, errors.Is(err, accelerators.ErrNotSupported))
	assert.Contains(t, err.Error(), "DeviceCount")

	_, err = accel.NewBuffer(dtypes.Float32, 1, accelerators.AnyDevice)
	assert.True(t, errors.Is(err, accelerators.ErrNotSupported))

	err = accel.Synchronize(accelerators.AnyDevice)
	assert.True(t, errors.Is(err, accelerators.ErrNotSupported))

	err = accel.SetCurrentStream(nil)
	assert.True(t, errors.Is(err, accelerators.ErrNotSupported))

	_, err = accel.MemoryStats(accelerators.AnyDevice)
	assert.True(t, errors.Is(err, accelerators.ErrNotSupported))
}

func TestDefaultName(t *testing.T) {
	accel := &Accelerator{}
	assert.Equal(t, "notsupported", accel.Name())
	assert.Equal(t, "notsupported:0", accel.DeviceName(0))
}

func TestLazyCallRunsImmediately(t *testing.T) {
	accel := &Accelerator{}
	ran := false
	accel.LazyCall(func() { ran = true })
	assert.True(t, ran)
}

func TestCapabilitiesAreEmpty(t *testing.T) {
	accel := &Accelerator{}
	caps := accel.Capabilities()
	for _, feature := range accelerators.AllFeatures {
		assert.False(t, caps.Has(feature))
	}
	assert.False(t, caps.Supports(dtypes.Float32))
}
