package accelerators

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// MemoryStats is a snapshot of the device caching allocator counters.
//
// Allocated counts bytes handed out to live buffers; Reserved counts bytes the
// allocator holds from the driver (allocated plus cached). The Peak variants
// are high-water marks since the last peak reset.
type MemoryStats struct {
	Allocated     uint64
	PeakAllocated uint64
	Reserved      uint64
	PeakReserved  uint64

	// NumAllocs and NumFrees count allocator operations since initialization.
	NumAllocs uint64
	NumFrees  uint64
}

// String implements fmt.Stringer with human-readable byte sizes.
func (m MemoryStats) String() string {
	return fmt.Sprintf("allocated=%s (peak %s), reserved=%s (peak %s), allocs=%d, frees=%d",
		humanize.IBytes(m.Allocated), humanize.IBytes(m.PeakAllocated),
		humanize.IBytes(m.Reserved), humanize.IBytes(m.PeakReserved),
		m.NumAllocs, m.NumFrees)
}
