package types

// ControllerState is a point-in-time snapshot of the control loop, shared
// between the daemon and client packages.
type ControllerState struct {
	UptimeTicks uint64 `json:"uptime_ticks"`
	DutyState   string `json:"duty_state"`
	DutyTicks   uint16 `json:"duty_ticks"`
	GuardTicks  uint16 `json:"guard_ticks"`
	LoadOn      bool   `json:"load_on"`
	Latched     bool   `json:"latched"`

	// LastSample is the most recent raw battery reading, if the guard has
	// sampled at least once this run.
	LastSample   *uint16 `json:"last_sample,omitempty"`
	LastSampleAt uint64  `json:"last_sample_at,omitempty"`
}

// OperatingInfo is the resolved operating configuration as reported over
// the API.
type OperatingInfo struct {
	VoltageClass string `json:"voltage_class"`
	FeatureMode  string `json:"feature_mode"`
	TicksOn      uint16 `json:"ticks_on"`
	TicksOff     uint16 `json:"ticks_off"`
	Threshold    uint16 `json:"threshold"`
}

// CalibrationInfo describes the calibration constant found (or not) at
// startup and whether it was applied.
type CalibrationInfo struct {
	Present bool   `json:"present"`
	Hz      uint32 `json:"hz,omitempty"`
	Applied bool   `json:"applied"`
}
