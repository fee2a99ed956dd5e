package opbuilder

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Registry is a snapshot of one registration source, taken lazily on first
// lookup and cached for the lifetime of the Registry.
//
// Population happens at most once, is safe for concurrent first lookups, and
// no caller ever observes a partially populated registry. After population the
// snapshot is read-only and safe for concurrent use.
type Registry struct {
	once      sync.Once
	source    Source
	factories map[string]Factory

	// populations counts snapshot runs; read by tests.
	populations atomic.Int32
}

// NewRegistry returns an unpopulated Registry. The first call to Get, Create,
// Names or Source takes the snapshot.
func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) populate() {
	r.once.Do(func() {
		r.populations.Add(1)
		muRegister.Lock()
		defer muRegister.Unlock()
		table := bundled
		r.source = SourceBundled
		if len(local) > 0 {
			table = local
			r.source = SourceLocal
		}
		r.factories = make(map[string]Factory, len(table))
		maps.Copy(r.factories, table)
	})
}

// Source reports which registration source the snapshot was taken from.
func (r *Registry) Source() Source {
	r.populate()
	return r.source
}

// Get returns the factory registered under name, or nil if there is none.
func (r *Registry) Get(name string) Factory {
	r.populate()
	return r.factories[name]
}

// Create returns a freshly constructed instance of the named builder, or nil
// if no builder is registered under name. Each call constructs a new instance.
func (r *Registry) Create(name string) Builder {
	factory := r.Get(name)
	if factory == nil {
		return nil
	}
	return factory()
}

// Names returns the sorted names of the registered builders.
func (r *Registry) Names() []string {
	r.populate()
	return slices.Sorted(maps.Keys(r.factories))
}
