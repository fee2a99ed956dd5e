// Package opbuilder implements the registry of op builders: the factories
// responsible for compiling/loading the native compute-kernel extensions an
// accelerator backend uses.
//
// Builders register themselves explicitly by name, typically during package
// initialization:
//
//	func init() {
//		opbuilder.Register("fused_adam", func() opbuilder.Builder { return &FusedAdamBuilder{} })
//	}
//
// There are two registration sources: the bundled one (Register), used by the
// builders shipped with GoMUSA, and the local one (RegisterLocal), used by a
// first-party checkout to override the bundled set wholesale. Each accelerator
// instance snapshots one source into a Registry the first time a builder is
// looked up; the local source wins whenever it has any registrations.
package opbuilder

import (
	"context"
	"sync"

	"github.com/gomlx/exceptions"
)

// Builder compiles and/or loads one native compute-kernel extension.
type Builder interface {
	// Name returns the registered name of the builder, e.g. "fused_adam".
	Name() string

	// IsCompatible reports whether the extension can be built/loaded in the
	// current environment. A nil return means compatible.
	IsCompatible() error

	// Load makes the extension available, building it first if needed. The
	// actual native build is handed off to the host toolchain.
	Load(ctx context.Context) error
}

// Factory constructs a new Builder instance. Every call returns a fresh
// instance, never a cached singleton.
type Factory func() Builder

// Source identifies which registration table a Registry snapshotted from.
type Source int

const (
	// SourceBundled is the builder set shipped with GoMUSA.
	SourceBundled Source = iota

	// SourceLocal is a first-party checkout's builder set, which overrides the
	// bundled one when present.
	SourceLocal
)

// String implements fmt.Stringer.
func (s Source) String() string {
	if s == SourceLocal {
		return "local"
	}
	return "bundled"
}

var (
	muRegister sync.Mutex
	bundled    = make(map[string]Factory)
	local      = make(map[string]Factory)
)

// Register adds a builder factory to the bundled source under the given name.
//
// The first registration of a name wins: a later duplicate is silently
// ignored. Call Register during initialization of the builder's package.
func Register(name string, factory Factory) {
	registerInto(bundled, name, factory)
}

// RegisterLocal adds a builder factory to the local (first-party override)
// source. If any local registration exists, registries snapshot the local
// source instead of the bundled one.
func RegisterLocal(name string, factory Factory) {
	registerInto(local, name, factory)
}

func registerInto(table map[string]Factory, name string, factory Factory) {
	if name == "" || factory == nil {
		exceptions.Panicf("opbuilder.Register requires a non-empty name (got %q) and a non-nil factory", name)
	}
	muRegister.Lock()
	defer muRegister.Unlock()
	if _, found := table[name]; found {
		// First registration wins.
		return
	}
	table[name] = factory
}
