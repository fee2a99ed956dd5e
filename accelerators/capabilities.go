package accelerators

import (
	"maps"

	"github.com/gomusa/gomusa/dtypes"
)

// Feature enumerates the optional capabilities an accelerator runtime may or
// may not provide. Required operations (device selection, synchronize, seeds,
// the basic memory counters) are not listed: every backend must have them.
type Feature int

const (
	// FeatureMemoryStats is the full allocator statistics query (MemoryStats).
	FeatureMemoryStats Feature = iota

	// FeatureMemoryReserved are the driver-reservation counters
	// (MemoryReserved, MaxMemoryReserved).
	FeatureMemoryReserved

	// FeaturePeakStatsReset is ResetPeakMemoryStats.
	FeaturePeakStatsReset

	// FeatureTracing are the profiler range annotations (RangePush/RangePop).
	FeatureTracing
)

// String implements fmt.Stringer.
func (f Feature) String() string {
	switch f {
	case FeatureMemoryStats:
		return "MemoryStats"
	case FeatureMemoryReserved:
		return "MemoryReserved"
	case FeaturePeakStatsReset:
		return "PeakStatsReset"
	case FeatureTracing:
		return "Tracing"
	}
	return "UnknownFeature"
}

// AllFeatures enumerates the valid Feature values.
var AllFeatures = []Feature{FeatureMemoryStats, FeatureMemoryReserved, FeaturePeakStatsReset, FeatureTracing}

// Capabilities holds mappings of what is supported by an accelerator.
//
// It is filled in once, when the accelerator is constructed -- optional
// runtime surfaces are probed at initialization, never per call.
type Capabilities struct {
	// Features lists the optional capabilities the runtime provides.
	// If not listed, it's assumed to be false, hence not supported.
	Features map[Feature]bool

	// DTypes lists the data types device buffers can be allocated with.
	// If not listed, it's assumed to be false, hence not supported.
	DTypes map[dtypes.DType]bool
}

// Has reports whether the optional feature is supported.
func (c Capabilities) Has(f Feature) bool {
	return c.Features[f]
}

// Supports reports whether buffers of the given dtype can be allocated.
func (c Capabilities) Supports(dtype dtypes.DType) bool {
	return c.DTypes[dtype]
}

// Clone makes a deep copy of the Capabilities.
func (c Capabilities) Clone() Capabilities {
	var c2 Capabilities
	c2.Features = make(map[Feature]bool, len(c.Features))
	maps.Copy(c2.Features, c.Features)
	c2.DTypes = make(map[dtypes.DType]bool, len(c.DTypes))
	maps.Copy(c2.DTypes, c.DTypes)
	return c2
}
