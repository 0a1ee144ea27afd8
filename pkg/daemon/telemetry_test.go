package daemon

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "telemetry.json")

	sample := uint16(900)
	st := types.ControllerState{
		UptimeTicks:  115,
		DutyState:    "load-on",
		DutyTicks:    115,
		GuardTicks:   5,
		LoadOn:       true,
		LastSample:   &sample,
		LastSampleAt: 110,
	}
	cfg := config.Resolve(true, true, 0, false)
	cal := types.CalibrationInfo{Present: false, Applied: false}

	if err := writeSnapshot(path, st, cfg, cal); err != nil {
		t.Fatalf("writeSnapshot returned error: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var snap TelemetrySnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}

	if snap.State.UptimeTicks != 115 {
		t.Errorf("UptimeTicks = %d, want 115", snap.State.UptimeTicks)
	}
	if snap.Config.VoltageClass != "12V" || snap.Config.TicksOn != 7031 {
		t.Errorf("unexpected config in snapshot: %+v", snap.Config)
	}
	if snap.State.LastSample == nil || *snap.State.LastSample != 900 {
		t.Errorf("LastSample not persisted: %+v", snap.State)
	}
	if snap.WrittenAt.IsZero() {
		t.Error("WrittenAt not set")
	}
}
