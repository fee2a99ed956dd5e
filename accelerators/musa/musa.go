// Package musa implements the MThreads MUSA accelerators.Accelerator for GoMUSA.
//
// Simply import it with import _ "github.com/gomusa/gomusa/accelerators/musa" to
// make it available in your program. It registers itself as an available
// accelerator during initialization.
//
// The package forwards every operation to a Runtime, the Go surface of the
// MUSA driver bindings. Driver binding packages install the process runtime
// with SetRuntime; tests and machines without the driver can install the
// simulated runtime from the musasim sub-package.
package musa

import (
	"sync"

	"github.com/gomlx/exceptions"

	"github.com/gomusa/gomusa/accelerators"
)

// BackendName to be used in GOMUSA_ACCELERATOR to select this accelerator.
const BackendName = "musa"

// CommunicationBackend is the collective-communication library paired with MUSA.
const CommunicationBackend = "mccl"

var (
	muRuntime      sync.Mutex
	defaultRuntime Runtime
)

// SetRuntime installs the process-wide Runtime used by New. Driver binding
// packages call it from their init; it can also be used to install a
// simulated runtime.
func SetRuntime(rt Runtime) {
	muRuntime.Lock()
	defer muRuntime.Unlock()
	defaultRuntime = rt
}

// InstalledRuntime returns the Runtime installed with SetRuntime, or nil.
func InstalledRuntime() Runtime {
	muRuntime.Lock()
	defer muRuntime.Unlock()
	return defaultRuntime
}

// New returns an Accelerator over the installed runtime. The config string is
// not used by this backend and is ignored.
//
// It panics if no runtime was installed -- either import a MUSA driver binding
// or install the simulated runtime from the musasim package.
func New(_ string) accelerators.Accelerator {
	rt := InstalledRuntime()
	if rt == nil {
		exceptions.Panicf("no MUSA runtime installed for accelerator %q -- import a driver "+
			"binding, or install the simulated runtime with musa.SetRuntime(musasim.New())", BackendName)
	}
	return NewWithRuntime(rt)
}

// Registers New() as the default constructor for the "musa" accelerator.
func init() {
	accelerators.Register(BackendName, New)
}
