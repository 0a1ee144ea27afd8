// Package config derives and holds the controller configuration.
//
// The operating configuration is resolved exactly once at startup from the
// two boot-time selector inputs and the stored oscillator calibration, and
// is immutable afterwards. The platform configuration (file.go) describes
// host-side wiring only and never feeds back into the operating parameters
// after boot.
package config

import (
	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
)

// VoltageClass selects the 12V or 24V device variant. It decides both the
// duty timing and the raw ADC undervoltage threshold, since the two
// variants use different voltage dividers.
type VoltageClass int

const (
	V12 VoltageClass = iota
	V24
)

func (v VoltageClass) String() string {
	if v == V12 {
		return "12V"
	}
	return "24V"
}

// FeatureMode selects between the full feature set (duty cycling plus
// undervoltage protection) and undervoltage protection only.
type FeatureMode int

const (
	FeatureFull FeatureMode = iota
	FeatureUndervoltageOnly
)

func (m FeatureMode) String() string {
	if m == FeatureFull {
		return "full"
	}
	return "undervoltage-only"
}

// Nominal duty timing in wake cycles (8.192s per cycle) and raw ADC
// undervoltage thresholds per voltage class.
//
// 12V: 16h on (16*3600/8.192), 8h off; cutoff at the 10V-equivalent raw
// value for a 100k/22k divider against the 2.56V reference.
// 24V: 20h on, 4h off; cutoff at the 20V-equivalent raw value for a
// 100k/10k divider.
const (
	TicksOn12V   uint16 = 7031
	TicksOff12V  uint16 = 3516
	Threshold12V uint16 = 721

	TicksOn24V   uint16 = 8789
	TicksOff24V  uint16 = 1758
	Threshold24V uint16 = 726
)

// Operating is the resolved runtime configuration. It never changes after
// Resolve returns.
type Operating struct {
	VoltageClass VoltageClass
	FeatureMode  FeatureMode

	// TicksOn and TicksOff are calibration-corrected wake-cycle counts.
	TicksOn  uint16
	TicksOff uint16

	// Threshold is the raw 10-bit ADC value under which the load is
	// disabled. It is a voltage-domain value and is never calibrated.
	Threshold uint16
}

// Resolve derives the operating configuration from the boot-time selector
// inputs and the stored calibration. voltage12 true selects the 12V class;
// fullFeatures true enables duty cycling. The calibration correction is
// applied here, once, to the duty timing only.
func Resolve(voltage12, fullFeatures bool, cal calibration.Value, calOK bool) Operating {
	o := Operating{
		VoltageClass: V24,
		FeatureMode:  FeatureUndervoltageOnly,
		TicksOn:      TicksOn24V,
		TicksOff:     TicksOff24V,
		Threshold:    Threshold24V,
	}
	if voltage12 {
		o.VoltageClass = V12
		o.TicksOn = TicksOn12V
		o.TicksOff = TicksOff12V
		o.Threshold = Threshold12V
	}
	if fullFeatures {
		o.FeatureMode = FeatureFull
	}

	o.TicksOn = calibration.Apply(cal, calOK, o.TicksOn)
	o.TicksOff = calibration.Apply(cal, calOK, o.TicksOff)

	return o
}

// LogrusFields returns the configuration as structured log fields.
func (o Operating) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"voltageClass": o.VoltageClass.String(),
		"featureMode":  o.FeatureMode.String(),
		"ticksOn":      o.TicksOn,
		"ticksOff":     o.TicksOff,
		"threshold":    o.Threshold,
	}
}
