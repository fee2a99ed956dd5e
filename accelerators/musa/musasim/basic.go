package musasim

import "github.com/gomusa/gomusa/accelerators/musa"

// basicOnly narrows a full runtime to the required musa.Runtime surface: the
// optional sub-interfaces are hidden, so capability probing sees an older,
// feature-poor driver.
type basicOnly struct {
	musa.Runtime
}

// BasicOnly wraps rt so that only the required runtime operations are visible.
// Used to exercise the capability-absence paths of the accelerator.
func BasicOnly(rt musa.Runtime) musa.Runtime {
	return basicOnly{Runtime: rt}
}
