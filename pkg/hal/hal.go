// Package hal defines the hardware capabilities the controller core needs
// and provides host-side implementations of them. The core never touches
// pins, timers or storage directly; it is handed these interfaces once at
// startup, which is also what makes the scheduler testable with synthetic
// tick sequences.
package hal

import (
	"context"
	"errors"
)

// ErrTickSourceDrained is returned by scripted tick sources once the
// scripted wake events have all been consumed.
var ErrTickSourceDrained = errors.New("tick source drained")

// TickSource produces one wake event per period, nominally 8.192s. Wait
// blocks until the next wake event. It returns an error only when the
// source cannot produce further ticks (context cancelled, script drained);
// the orchestrator treats that as shutdown, the host analogue of pulling
// power.
type TickSource interface {
	Wait(ctx context.Context) error
}

// VoltageSampler returns an averaged raw battery reading, 0-1023,
// proportional to the battery voltage. The sampling routine owns its own
// settle-time behaviour; the core only sees the final value.
type VoltageSampler interface {
	Sample() (uint16, error)
}

// LoadSwitch is the single point of truth for the load actuator. Set(true)
// closes the switch, Set(false) opens it. Enabled reads the driven state
// back, like reading the output pin register.
type LoadSwitch interface {
	Set(on bool)
	Enabled() bool
}

// CalibrationStore reads the raw oscillator-calibration image from
// non-volatile storage. Implementations return the raw bytes; validity is
// decided by the calibration package. Missing storage should yield a read
// error, which callers treat as "no calibration".
type CalibrationStore interface {
	ReadCalibration() ([]byte, error)
}

// Selectors exposes the two boot-time selector inputs. They are read
// exactly once at startup; polarity and pull conventions are resolved by
// the implementation.
type Selectors interface {
	Voltage12() bool
	FullFeatures() bool
}
