package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/events"
	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

// Orchestrator owns the control loop: wait for a wake event, advance the
// wake counters, run the undervoltage guard, then the duty-cycle step.
// Everything between two wake events runs to completion synchronously;
// the tick wait is the only suspension point, and only this goroutine
// ever mutates the scheduler state. The mutex exists solely so the HTTP
// surface can copy a consistent snapshot.
type Orchestrator struct {
	cfg   config.Operating
	ticks hal.TickSource
	load  hal.LoadSwitch
	guard *UndervoltageGuard
	duty  *DutyCycleController
	hub   *events.EventHub // may be nil

	mu           sync.Mutex
	state        SchedulerState
	uptimeTicks  uint64
	lastSampleAt uint64
}

// NewOrchestrator wires the controller. The hub may be nil when nobody
// listens for events.
func NewOrchestrator(cfg config.Operating, ticks hal.TickSource, load hal.LoadSwitch, sampler hal.VoltageSampler, hub *events.EventHub) *Orchestrator {
	return &Orchestrator{
		cfg:   cfg,
		ticks: ticks,
		load:  load,
		guard: NewUndervoltageGuard(sampler, cfg.Threshold),
		duty:  NewDutyCycleController(cfg.TicksOn, cfg.TicksOff),
		hub:   hub,
		state: SchedulerState{Duty: DutyOn},
	}
}

// Start switches the load on. This happens unconditionally at startup,
// independent of the feature mode.
func (o *Orchestrator) Start() {
	o.load.Set(true)
}

// Run drives the control loop until the tick source stops producing wake
// events. On the device this never returns; on the host it returns on
// shutdown, and the returned error is the tick source's.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		if err := o.ticks.Wait(ctx); err != nil {
			return err
		}
		o.runTick()
	}
}

// runTick executes one complete loop iteration after a wake event.
func (o *Orchestrator) runTick() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.uptimeTicks++
	o.state.DutyTicks++
	o.state.GuardTicks++

	// Once latched, neither the guard nor the duty controller run again.
	if o.state.Latched {
		return
	}

	guardTicksBefore := o.state.GuardTicks
	action := o.guard.OnTick(&o.state, o.load.Enabled())
	if o.state.GuardTicks < guardTicksBefore {
		o.lastSampleAt = o.uptimeTicks
	}
	if action == GuardDisable {
		o.load.Set(false)
		o.state.Latched = true

		sample, _ := o.guard.LastSample()
		logrus.WithFields(logrus.Fields{
			"sample":    sample,
			"threshold": o.cfg.Threshold,
			"tick":      o.uptimeTicks,
		}).Warn("battery undervoltage, load disabled until restart")

		o.hub.Publish(events.UndervoltageTrip, events.UndervoltageTripEvent{
			Sample:    sample,
			Threshold: o.cfg.Threshold,
			Tick:      o.uptimeTicks,
			Ts:        time.Now().Unix(),
		})
		return
	}

	if o.cfg.FeatureMode != config.FeatureFull {
		return
	}

	before := o.state.Duty
	o.duty.Step(&o.state, o.load)
	if after := o.state.Duty; after != before {
		logrus.WithFields(logrus.Fields{
			"from": before.String(),
			"to":   after.String(),
			"tick": o.uptimeTicks,
		}).Info("duty transition")

		o.hub.Publish(events.DutyTransition, events.DutyTransitionEvent{
			From: before.String(),
			To:   after.String(),
			Tick: o.uptimeTicks,
			Ts:   time.Now().Unix(),
		})
	}
}

// Snapshot copies the current controller state for the API surface.
func (o *Orchestrator) Snapshot() types.ControllerState {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := types.ControllerState{
		UptimeTicks: o.uptimeTicks,
		DutyState:   o.state.Duty.String(),
		DutyTicks:   o.state.DutyTicks,
		GuardTicks:  o.state.GuardTicks,
		LoadOn:      o.load.Enabled(),
		Latched:     o.state.Latched,
	}
	if sample, ok := o.guard.LastSample(); ok {
		st.LastSample = &sample
		st.LastSampleAt = o.lastSampleAt
	}
	return st
}
