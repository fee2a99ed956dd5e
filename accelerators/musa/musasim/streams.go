package musasim

import (
	"github.com/pkg/errors"

	"github.com/gomusa/gomusa/accelerators"
)

// simStream executes synchronously: queued work is always complete.
type simStream struct {
	device accelerators.Device
}

func (s *simStream) Device() accelerators.Device { return s.device }
func (s *simStream) Synchronize() error          { return nil }
func (s *simStream) Query() (bool, error)        { return true, nil }

var _ accelerators.Stream = (*simStream)(nil)

type simEvent struct {
	recorded bool
}

func (e *simEvent) Record(s accelerators.Stream) error {
	if s == nil {
		return errors.New("cannot record an event on a nil stream")
	}
	e.recorded = true
	return nil
}

func (e *simEvent) Synchronize() error {
	if !e.recorded {
		return errors.New("event was never recorded")
	}
	return nil
}

func (e *simEvent) Query() (bool, error) {
	return e.recorded, nil
}

var _ accelerators.Event = (*simEvent)(nil)

// NewStream implements musa.Runtime.
func (r *Runtime) NewStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	return &simStream{device: dev.defaultStream.device}, nil
}

// CurrentStream implements musa.Runtime.
func (r *Runtime) CurrentStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	return dev.currentStream, nil
}

// SetCurrentStream implements musa.Runtime: it makes the stream current for
// the device it was created on.
func (r *Runtime) SetCurrentStream(s accelerators.Stream) error {
	stream, ok := s.(*simStream)
	if !ok {
		return errors.Errorf("stream %T was not created by the simulated runtime", s)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(stream.device.Num)
	if err != nil {
		return err
	}
	dev.currentStream = stream
	return nil
}

// DefaultStream implements musa.Runtime.
func (r *Runtime) DefaultStream(device accelerators.DeviceNum) (accelerators.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return nil, err
	}
	return dev.defaultStream, nil
}

// NewEvent implements musa.Runtime.
func (r *Runtime) NewEvent() (accelerators.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.valid(); err != nil {
		return nil, err
	}
	return &simEvent{}, nil
}

// RangePush implements musa.TracingRuntime.
func (r *Runtime) RangePush(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.devices) == 0 {
		return
	}
	r.devices[r.current].rangeDepth++
}

// RangePop implements musa.TracingRuntime.
func (r *Runtime) RangePop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.devices) == 0 {
		return
	}
	dev := r.devices[r.current]
	if dev.rangeDepth > 0 {
		dev.rangeDepth--
	}
}

// RangeDepth returns the current profiler range nesting of the device; a
// simulation-only observability hook for tests.
func (r *Runtime) RangeDepth(device accelerators.DeviceNum) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dev, err := r.resolve(device)
	if err != nil {
		return 0
	}
	return dev.rangeDepth
}
