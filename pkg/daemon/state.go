package daemon

// DutyState is the duty-cycle state tag. It intentionally leaves room for
// values outside the two defined states: the controller carries a recovery
// branch for a corrupted tag.
type DutyState int

const (
	// DutyOn is the phase where the load is driven closed.
	DutyOn DutyState = iota
	// DutyOff is the phase where the load is driven open.
	DutyOff
)

func (s DutyState) String() string {
	switch s {
	case DutyOn:
		return "load-on"
	case DutyOff:
		return "load-off"
	default:
		return "invalid"
	}
}

// SchedulerState is the mutable state of the control loop: the two wake
// counters, the duty tag and the undervoltage latch. It is owned by the
// Orchestrator and threaded explicitly through the component calls; there
// are no package-level counters. A restart discards it entirely.
type SchedulerState struct {
	// DutyTicks counts wake events since the last duty transition.
	DutyTicks uint16
	// GuardTicks counts wake events since the last battery sample.
	GuardTicks uint16

	Duty DutyState

	// Latched is the one-way undervoltage latch. Once set, the load stays
	// off and the duty controller never runs again until restart.
	Latched bool
}
