package hal

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// SimBoard is an in-memory board: a scripted tick source, a settable
// voltage sampler, a recording load switch, selector jumpers and a
// calibration image. Tests queue wake events with Tick and drive the
// orchestrator until the script drains; everything is synchronous, so no
// wall-clock time is involved.
type SimBoard struct {
	mu sync.Mutex

	pendingTicks int

	sample    uint16
	sampleErr error
	// queued samples consumed before falling back to the fixed sample
	queued []uint16

	loadOn      bool
	transitions []bool

	voltage12    bool
	fullFeatures bool

	calibImage []byte
}

// NewSimBoard returns a simulated board with the given selector jumpers,
// the load open and a fully healthy battery (sample 1023).
func NewSimBoard(voltage12, fullFeatures bool) *SimBoard {
	return &SimBoard{
		sample:       1023,
		voltage12:    voltage12,
		fullFeatures: fullFeatures,
	}
}

// Tick queues n wake events.
func (b *SimBoard) Tick(n int) {
	b.mu.Lock()
	b.pendingTicks += n
	b.mu.Unlock()
}

// Wait consumes one queued wake event. It returns ErrTickSourceDrained
// when the script is exhausted, so a driver loop terminates after exactly
// the queued number of iterations.
func (b *SimBoard) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pendingTicks <= 0 {
		return ErrTickSourceDrained
	}
	b.pendingTicks--
	return nil
}

// SetSample sets the value returned by Sample once any queued samples are
// consumed.
func (b *SimBoard) SetSample(v uint16) {
	b.mu.Lock()
	b.sample = v
	b.mu.Unlock()
}

// QueueSamples queues values returned by successive Sample calls before
// the fixed sample applies again.
func (b *SimBoard) QueueSamples(v ...uint16) {
	b.mu.Lock()
	b.queued = append(b.queued, v...)
	b.mu.Unlock()
}

// SetSampleError makes Sample fail until cleared with SetSampleError(nil).
func (b *SimBoard) SetSampleError(err error) {
	b.mu.Lock()
	b.sampleErr = err
	b.mu.Unlock()
}

func (b *SimBoard) Sample() (uint16, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sampleErr != nil {
		return 0, b.sampleErr
	}
	if len(b.queued) > 0 {
		v := b.queued[0]
		b.queued = b.queued[1:]
		return v, nil
	}
	return b.sample, nil
}

func (b *SimBoard) Set(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.loadOn == on {
		return
	}
	b.loadOn = on
	b.transitions = append(b.transitions, on)
}

func (b *SimBoard) Enabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadOn
}

// Transitions returns the recorded switch transitions, oldest first.
func (b *SimBoard) Transitions() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]bool, len(b.transitions))
	copy(out, b.transitions)
	return out
}

func (b *SimBoard) Voltage12() bool    { return b.voltage12 }
func (b *SimBoard) FullFeatures() bool { return b.fullFeatures }

// SetCalibrationImage sets the raw bytes returned by ReadCalibration.
func (b *SimBoard) SetCalibrationImage(img []byte) {
	b.mu.Lock()
	b.calibImage = append([]byte(nil), img...)
	b.mu.Unlock()
}

func (b *SimBoard) ReadCalibration() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.calibImage...), nil
}

// LoggingSwitch is the load actuator for host runs, where there is no
// physical pin to drive: transitions are logged and the state kept.
type LoggingSwitch struct {
	mu sync.Mutex
	on bool
}

func NewLoggingSwitch() *LoggingSwitch {
	return &LoggingSwitch{}
}

func (s *LoggingSwitch) Set(on bool) {
	s.mu.Lock()
	changed := s.on != on
	s.on = on
	s.mu.Unlock()
	if changed {
		logrus.WithFields(logrus.Fields{"on": on}).Info("load switch driven")
	}
}

func (s *LoggingSwitch) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

// FixedSampler always returns the same raw sample.
type FixedSampler uint16

func (s FixedSampler) Sample() (uint16, error) {
	return uint16(s), nil
}
