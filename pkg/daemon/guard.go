package daemon

import (
	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
)

// GuardCadenceTicks is the battery sampling cadence: 110 wake cycles,
// about 15 minutes at the nominal 8.192s period (15*60/8.192). The
// cadence is deliberately not calibration-corrected.
const GuardCadenceTicks uint16 = 110

// GuardAction is what the undervoltage guard asks the orchestrator to do
// after a tick.
type GuardAction int

const (
	GuardNoOp GuardAction = iota
	GuardDisable
)

// UndervoltageGuard periodically samples the battery while the load is
// active and requests a permanent disable when the reading falls below the
// configured raw threshold.
//
// The guard does not check the undervoltage latch; the orchestrator stops
// invoking it once the latch is set. It also does not touch the load
// switch itself: acting on GuardDisable is the caller's job, so that all
// actuator writes happen in one place.
type UndervoltageGuard struct {
	sampler   hal.VoltageSampler
	threshold uint16

	lastSample uint16
	sampled    bool
}

func NewUndervoltageGuard(sampler hal.VoltageSampler, threshold uint16) *UndervoltageGuard {
	return &UndervoltageGuard{
		sampler:   sampler,
		threshold: threshold,
	}
}

// OnTick runs the guard for one wake event. The guard counter in st has
// already been incremented by the orchestrator. Sampling happens only
// while the load is on and the counter has reached the cadence; the
// counter then resets immediately, regardless of the sample's outcome. A
// sampler failure is logged and skipped, never retried within the tick.
func (g *UndervoltageGuard) OnTick(st *SchedulerState, loadOn bool) GuardAction {
	if !loadOn || st.GuardTicks < GuardCadenceTicks {
		return GuardNoOp
	}
	st.GuardTicks = 0

	sample, err := g.sampler.Sample()
	if err != nil {
		logrus.Errorf("battery sample failed: %v", err)
		return GuardNoOp
	}
	g.lastSample = sample
	g.sampled = true

	logrus.WithFields(logrus.Fields{
		"sample":    sample,
		"threshold": g.threshold,
	}).Debug("battery sampled")

	if sample < g.threshold {
		return GuardDisable
	}
	return GuardNoOp
}

// LastSample returns the most recent reading, if any sample has been taken
// this run.
func (g *UndervoltageGuard) LastSample() (uint16, bool) {
	return g.lastSample, g.sampled
}
