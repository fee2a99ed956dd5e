package musasim

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/accelerators"
)

// simGenerator is one device RNG. Its opaque state is the 8-byte big-endian
// seed followed by the 8-byte draw counter.
type simGenerator struct {
	seed  uint64
	draws uint64
}

const generatorStateSize = 16

func (g *simGenerator) Seed() uint64 { return g.seed }

func (g *simGenerator) ManualSeed(seed uint64) {
	g.seed = seed
	g.draws = 0
}

func (g *simGenerator) State() []byte {
	state := make([]byte, generatorStateSize)
	binary.BigEndian.PutUint64(state[:8], g.seed)
	binary.BigEndian.PutUint64(state[8:], g.draws)
	return state
}

func (g *simGenerator) SetState(state []byte) error {
	if len(state) != generatorStateSize {
		return errors.Errorf("invalid RNG state of %d bytes, expected %d", len(state), generatorStateSize)
	}
	g.seed = binary.BigEndian.Uint64(state[:8])
	g.draws = binary.BigEndian.Uint64(state[8:])
	return nil
}

var _ accelerators.Generator = (*simGenerator)(nil)

// RNGState implements musa.Runtime.
func (r *Runtime) RNGState(device accelerators.DeviceNum) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	return dev.gen.State(), nil
}

// SetRNGState implements musa.Runtime.
func (r *Runtime) SetRNGState(state []byte, device accelerators.DeviceNum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return err
	}
	return dev.gen.SetState(state)
}

// ManualSeed implements musa.Runtime: it seeds the current device RNG.
func (r *Runtime) ManualSeed(seed uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(accelerators.AnyDevice)
	if err != nil {
		return err
	}
	dev.gen.ManualSeed(seed)
	return nil
}

// ManualSeedAll implements musa.Runtime: it seeds every device RNG.
func (r *Runtime) ManualSeedAll(seed uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return err
	}
	for _, dev := range r.devices {
		dev.gen.ManualSeed(seed)
	}
	return nil
}

// InitialSeed implements musa.Runtime.
func (r *Runtime) InitialSeed() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(accelerators.AnyDevice)
	if err != nil {
		return 0, err
	}
	return dev.gen.Seed(), nil
}

// DefaultGenerator implements musa.Runtime.
func (r *Runtime) DefaultGenerator(device accelerators.DeviceNum) (accelerators.Generator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	return dev.gen, nil
}
