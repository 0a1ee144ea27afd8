package daemon

import (
	"encoding/json"
	"os"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

// TelemetrySnapshot is the periodically persisted view of a run: the
// controller state plus the configuration it was resolved with. It is the
// only state the daemon writes to disk; it is never read back, a restart
// always starts from scratch.
type TelemetrySnapshot struct {
	WrittenAt   time.Time             `json:"written_at"`
	State       types.ControllerState `json:"state"`
	Config      types.OperatingInfo   `json:"config"`
	Calibration types.CalibrationInfo `json:"calibration"`
}

func operatingInfo(o config.Operating) types.OperatingInfo {
	return types.OperatingInfo{
		VoltageClass: o.VoltageClass.String(),
		FeatureMode:  o.FeatureMode.String(),
		TicksOn:      o.TicksOn,
		TicksOff:     o.TicksOff,
		Threshold:    o.Threshold,
	}
}

func writeSnapshot(path string, st types.ControllerState, cfg config.Operating, cal types.CalibrationInfo) error {
	snap := TelemetrySnapshot{
		WrittenAt:   time.Now(),
		State:       st,
		Config:      operatingInfo(cfg),
		Calibration: cal,
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(err, "failed to marshal telemetry snapshot")
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return pkgerrors.Wrapf(err, "failed to write telemetry snapshot %s", path)
	}
	return nil
}
