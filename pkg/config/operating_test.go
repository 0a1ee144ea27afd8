package config

import (
	"testing"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
)

func TestResolveTable(t *testing.T) {
	tests := []struct {
		name         string
		voltage12    bool
		fullFeatures bool
		want         Operating
	}{
		{
			name:         "12V full features",
			voltage12:    true,
			fullFeatures: true,
			want: Operating{
				VoltageClass: V12,
				FeatureMode:  FeatureFull,
				TicksOn:      7031,
				TicksOff:     3516,
				Threshold:    721,
			},
		},
		{
			name:         "24V full features",
			voltage12:    false,
			fullFeatures: true,
			want: Operating{
				VoltageClass: V24,
				FeatureMode:  FeatureFull,
				TicksOn:      8789,
				TicksOff:     1758,
				Threshold:    726,
			},
		},
		{
			name:         "12V undervoltage only",
			voltage12:    true,
			fullFeatures: false,
			want: Operating{
				VoltageClass: V12,
				FeatureMode:  FeatureUndervoltageOnly,
				TicksOn:      7031,
				TicksOff:     3516,
				Threshold:    721,
			},
		},
		{
			name:         "24V undervoltage only",
			voltage12:    false,
			fullFeatures: false,
			want: Operating{
				VoltageClass: V24,
				FeatureMode:  FeatureUndervoltageOnly,
				TicksOn:      8789,
				TicksOff:     1758,
				Threshold:    726,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.voltage12, tt.fullFeatures, 0, false)
			if got != tt.want {
				t.Errorf("Resolve(%v, %v) = %+v, want %+v", tt.voltage12, tt.fullFeatures, got, tt.want)
			}
		})
	}
}

func TestResolveAppliesCalibration(t *testing.T) {
	got := Resolve(true, true, calibration.Value(140000), true)

	if got.TicksOn != 7690 {
		t.Errorf("TicksOn = %d, want 7690 (140000*7031/128000)", got.TicksOn)
	}
	if got.TicksOff != 3845 {
		t.Errorf("TicksOff = %d, want 3845 (140000*3516/128000)", got.TicksOff)
	}
	// The threshold is a voltage-domain value and must never be scaled.
	if got.Threshold != 721 {
		t.Errorf("Threshold = %d, want 721 (uncalibrated)", got.Threshold)
	}
}

func TestResolveOutOfBandCalibrationIsIdentity(t *testing.T) {
	got := Resolve(false, true, calibration.Value(200000), true)
	if got.TicksOn != 8789 || got.TicksOff != 1758 {
		t.Errorf("out-of-band calibration changed timing: %+v", got)
	}
}
