package daemon

import (
	"context"
	"errors"
	"testing"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/events"
	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
)

// drive queues n ticks and runs the loop until the script drains.
func drive(t *testing.T, o *Orchestrator, b *hal.SimBoard, n int) {
	t.Helper()
	b.Tick(n)
	if err := o.Run(context.Background()); !errors.Is(err, hal.ErrTickSourceDrained) {
		t.Fatalf("Run returned %v, want ErrTickSourceDrained", err)
	}
}

func newTestOrchestrator(b *hal.SimBoard, cal calibration.Value, calOK bool) *Orchestrator {
	cfg := config.Resolve(b.Voltage12(), b.FullFeatures(), cal, calOK)
	o := NewOrchestrator(cfg, b, b, b, nil)
	o.Start()
	return o
}

func TestV12DutyCycleEndToEnd(t *testing.T) {
	b := hal.NewSimBoard(true, true)
	o := newTestOrchestrator(b, 0, false)

	if !b.Enabled() {
		t.Fatal("load must start on")
	}

	// After exactly 7031 ticks the load switches off.
	drive(t, o, b, 7030)
	if !b.Enabled() {
		t.Fatal("load switched off before 7031 ticks")
	}
	drive(t, o, b, 1)
	if b.Enabled() {
		t.Fatal("load still on after 7031 ticks")
	}
	snap := o.Snapshot()
	if snap.DutyState != DutyOff.String() {
		t.Fatalf("duty state = %s, want %s", snap.DutyState, DutyOff)
	}

	// After 3516 further ticks it switches back on.
	drive(t, o, b, 3515)
	if b.Enabled() {
		t.Fatal("load switched on before 3516 off ticks")
	}
	drive(t, o, b, 1)
	if !b.Enabled() {
		t.Fatal("load still off after 3516 off ticks")
	}
	if got := o.Snapshot().DutyState; got != DutyOn.String() {
		t.Fatalf("duty state = %s, want %s", got, DutyOn)
	}
}

func TestCalibratedTimingIsUsed(t *testing.T) {
	b := hal.NewSimBoard(true, true)
	// 140000*7031/128000 = 7690: the controller must use the corrected
	// count, not the nominal 7031.
	o := newTestOrchestrator(b, 140000, true)

	drive(t, o, b, 7689)
	if !b.Enabled() {
		t.Fatal("load switched off before the calibrated 7690 ticks")
	}
	drive(t, o, b, 1)
	if b.Enabled() {
		t.Fatal("load still on after the calibrated 7690 ticks")
	}
}

func TestUndervoltageLatchIsOneWay(t *testing.T) {
	b := hal.NewSimBoard(true, true)
	b.SetSample(100) // deep undervoltage
	o := newTestOrchestrator(b, 0, false)

	// The guard samples at tick 110 and trips.
	drive(t, o, b, 110)
	snap := o.Snapshot()
	if !snap.Latched {
		t.Fatal("latch not set after undervoltage sample")
	}
	if b.Enabled() {
		t.Fatal("load still on after undervoltage trip")
	}

	// Voltage recovering does not matter: the latch is one-way.
	b.SetSample(1023)
	drive(t, o, b, 20000)
	snap = o.Snapshot()
	if !snap.Latched || b.Enabled() {
		t.Fatal("latch released or load re-enabled after recovery")
	}
	// The duty controller must not have run either: no transitions beyond
	// the initial on and the trip-off.
	if got := b.Transitions(); len(got) != 2 {
		t.Fatalf("transitions = %v, want [on off]", got)
	}
}

func TestUndervoltageOnlyModeNeverCycles(t *testing.T) {
	b := hal.NewSimBoard(true, false) // feature jumper: undervoltage only
	o := newTestOrchestrator(b, 0, false)

	// Far beyond every duty threshold; the load must stay on.
	drive(t, o, b, 30000)
	if !b.Enabled() {
		t.Fatal("load switched off in undervoltage-only mode")
	}
	if got := b.Transitions(); len(got) != 1 || !got[0] {
		t.Fatalf("transitions = %v, want only the initial on", got)
	}

	// The guard still protects: a breach disables the load.
	b.SetSample(0)
	drive(t, o, b, 110)
	if b.Enabled() {
		t.Fatal("guard did not trip in undervoltage-only mode")
	}
}

func TestGuardSamplesOnCadenceAcrossRun(t *testing.T) {
	b := hal.NewSimBoard(false, false) // 24V, undervoltage only: load stays on
	b.QueueSamples(1000, 1000, 700)    // third sample breaches 726
	o := newTestOrchestrator(b, 0, false)

	drive(t, o, b, 329)
	if !b.Enabled() {
		t.Fatal("load off before the third sample")
	}
	drive(t, o, b, 1) // tick 330 = third sample
	if b.Enabled() {
		t.Fatal("load still on after breach at tick 330")
	}
}

func TestTripPublishesEvent(t *testing.T) {
	b := hal.NewSimBoard(true, true)
	b.SetSample(100)
	hub := events.NewEventHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	cfg := config.Resolve(true, true, 0, false)
	o := NewOrchestrator(cfg, b, b, b, hub)
	o.Start()
	drive(t, o, b, 110)

	select {
	case ev := <-ch:
		if ev.Name != events.UndervoltageTrip {
			t.Fatalf("event = %q, want %q", ev.Name, events.UndervoltageTrip)
		}
		payload, err := events.DecodeAs[events.UndervoltageTripEvent](ev)
		if err != nil {
			t.Fatalf("DecodeAs: %v", err)
		}
		if payload.Sample != 100 || payload.Threshold != 721 || payload.Tick != 110 {
			t.Fatalf("unexpected payload: %+v", payload)
		}
	default:
		t.Fatal("no trip event published")
	}
}

func TestSnapshotReportsState(t *testing.T) {
	b := hal.NewSimBoard(true, true)
	b.SetSample(900)
	o := newTestOrchestrator(b, 0, false)

	drive(t, o, b, 115)

	snap := o.Snapshot()
	if snap.UptimeTicks != 115 {
		t.Errorf("UptimeTicks = %d, want 115", snap.UptimeTicks)
	}
	if snap.DutyTicks != 115 {
		t.Errorf("DutyTicks = %d, want 115", snap.DutyTicks)
	}
	if snap.GuardTicks != 5 {
		t.Errorf("GuardTicks = %d, want 5 (reset at tick 110)", snap.GuardTicks)
	}
	if !snap.LoadOn || snap.Latched {
		t.Errorf("LoadOn = %v, Latched = %v", snap.LoadOn, snap.Latched)
	}
	if snap.LastSample == nil || *snap.LastSample != 900 {
		t.Errorf("LastSample = %v, want 900", snap.LastSample)
	}
	if snap.LastSampleAt != 110 {
		t.Errorf("LastSampleAt = %d, want 110", snap.LastSampleAt)
	}
}
