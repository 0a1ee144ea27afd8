package daemon

import (
	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
)

// DutyCycleController alternates the load between the ON and OFF phases of
// the duty schedule. It runs only in full feature mode and only while the
// undervoltage latch is clear; the orchestrator enforces both.
type DutyCycleController struct {
	ticksOn  uint16
	ticksOff uint16
}

func NewDutyCycleController(ticksOn, ticksOff uint16) *DutyCycleController {
	return &DutyCycleController{
		ticksOn:  ticksOn,
		ticksOff: ticksOff,
	}
}

// Step advances the duty state machine by one wake event. The duty counter
// in st has already been incremented by the orchestrator; Step consumes a
// threshold crossing by resetting it and toggling the switch.
//
// The default branch recovers from a duty tag that holds neither defined
// state, which is unreachable short of memory corruption. It forces the
// tag to DutyOff and, unlike the tag reset alone, also drives the switch
// open so the actuator cannot disagree with the tag afterwards.
func (c *DutyCycleController) Step(st *SchedulerState, sw hal.LoadSwitch) {
	switch st.Duty {
	case DutyOn:
		if st.DutyTicks >= c.ticksOn {
			st.DutyTicks = 0
			sw.Set(false)
			st.Duty = DutyOff
		}
	case DutyOff:
		if st.DutyTicks >= c.ticksOff {
			st.DutyTicks = 0
			sw.Set(true)
			st.Duty = DutyOn
		}
	default:
		logrus.WithFields(logrus.Fields{
			"dutyState": int(st.Duty),
		}).Warn("duty state tag corrupted, forcing load off")
		sw.Set(false)
		st.Duty = DutyOff
	}
}
