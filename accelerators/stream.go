package accelerators

// Stream is an opaque handle to a device execution stream. Work submitted to
// the same stream executes in order; separate streams may overlap.
type Stream interface {
	// Device returns the device the stream belongs to.
	Device() Device

	// Synchronize blocks until all work queued on the stream completes.
	Synchronize() error

	// Query reports whether all work queued on the stream has completed.
	Query() (bool, error)
}

// Event is an opaque handle to a device event, used to order and time work
// across streams.
type Event interface {
	// Record marks the event at the current tail of the stream.
	Record(s Stream) error

	// Synchronize blocks until the event has been reached.
	Synchronize() error

	// Query reports whether the event has been reached.
	Query() (bool, error)
}

// Generator is a handle to one device random-number generator.
type Generator interface {
	// Seed returns the seed the generator was last seeded with.
	Seed() uint64

	// ManualSeed reseeds the generator.
	ManualSeed(seed uint64)

	// State returns the opaque generator state.
	State() []byte

	// SetState restores a state previously returned by State.
	SetState(state []byte) error
}
