package config

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/utils/ptr"
)

// Sampler backends selectable in the platform configuration.
const (
	SamplerFixed = "fixed"
	SamplerHost  = "host"
)

var defaultPlatformConfig = &RawPlatformConfig{
	Voltage12:    ptr.To(true),
	FullFeatures: ptr.To(true),
	TickInterval: ptr.To("8.192s"),
	Sampler:      ptr.To(SamplerFixed),
	// A fully healthy battery; the fixed backend never trips the guard
	// unless configured lower.
	FixedSample: ptr.To(uint16(1023)),
	// 22k/(100k+22k), the 12V-class divider.
	DividerRatio:       ptr.To(22.0 / 122.0),
	CalibrationPath:    ptr.To(""),
	SnapshotPath:       ptr.To(""),
	SnapshotSchedule:   ptr.To("@every 5m"),
	AllowNonRootAccess: ptr.To(false),
}

// RawPlatformConfig is the on-disk platform configuration. All fields are
// pointers so that absent keys fall back to defaults. It describes host
// integration detail only: how selectors, tick source, sampler and
// calibration storage are wired on this machine. It carries no operating
// parameter and is read exactly once at daemon startup.
type RawPlatformConfig struct {
	Voltage12          *bool    `json:"voltage12,omitempty"`
	FullFeatures       *bool    `json:"fullFeatures,omitempty"`
	TickInterval       *string  `json:"tickInterval,omitempty"`
	Sampler            *string  `json:"sampler,omitempty"`
	FixedSample        *uint16  `json:"fixedSample,omitempty"`
	DividerRatio       *float64 `json:"dividerRatio,omitempty"`
	CalibrationPath    *string  `json:"calibrationPath,omitempty"`
	SnapshotPath       *string  `json:"snapshotPath,omitempty"`
	SnapshotSchedule   *string  `json:"snapshotSchedule,omitempty"`
	AllowNonRootAccess *bool    `json:"allowNonRootAccess,omitempty"`
}

// Platform is the loaded platform configuration. Unlike the operating
// configuration it is not derived but read; like it, it is immutable after
// load, so no locking is needed.
type Platform struct {
	c        *RawPlatformConfig
	filepath string
}

// LoadPlatform reads the platform configuration file. A missing or empty
// file yields all defaults.
func LoadPlatform(configPath string) (*Platform, error) {
	p := &Platform{filepath: configPath}

	fp, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			p.c = &RawPlatformConfig{}
			return p, nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to open file %s", configPath)
	}
	defer func(fp *os.File) {
		if err := fp.Close(); err != nil {
			logrus.Warnf("failed to close file %s", configPath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to read file %s", configPath)
	}

	if strings.TrimSpace(string(b)) == "" {
		p.c = &RawPlatformConfig{}
		return p, nil
	}

	c := RawPlatformConfig{}
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to unmarshal config from file %s", configPath)
	}
	p.c = &c

	return p, nil
}

// NewPlatformFromConfig wraps an in-memory raw config, mainly for tests.
func NewPlatformFromConfig(c *RawPlatformConfig) *Platform {
	if c == nil {
		c = defaultPlatformConfig
	}
	return &Platform{c: c}
}

func (p *Platform) Voltage12() bool {
	if p.c.Voltage12 != nil {
		return *p.c.Voltage12
	}
	return *defaultPlatformConfig.Voltage12
}

func (p *Platform) FullFeatures() bool {
	if p.c.FullFeatures != nil {
		return *p.c.FullFeatures
	}
	return *defaultPlatformConfig.FullFeatures
}

// TickInterval returns the wake period of the host tick source. A value
// that does not parse falls back to the nominal 8.192s with a warning.
func (p *Platform) TickInterval() time.Duration {
	s := *defaultPlatformConfig.TickInterval
	if p.c.TickInterval != nil {
		s = *p.c.TickInterval
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		logrus.Warnf("invalid tickInterval %q, using default %s", s, *defaultPlatformConfig.TickInterval)
		d, _ = time.ParseDuration(*defaultPlatformConfig.TickInterval)
	}
	return d
}

// Sampler returns the voltage sampler backend name. Unknown names fall
// back to the fixed backend with a warning.
func (p *Platform) Sampler() string {
	s := *defaultPlatformConfig.Sampler
	if p.c.Sampler != nil {
		s = *p.c.Sampler
	}
	if s != SamplerFixed && s != SamplerHost {
		logrus.Warnf("unknown sampler backend %q, using %q", s, SamplerFixed)
		return SamplerFixed
	}
	return s
}

func (p *Platform) FixedSample() uint16 {
	if p.c.FixedSample != nil {
		return *p.c.FixedSample
	}
	return *defaultPlatformConfig.FixedSample
}

func (p *Platform) DividerRatio() float64 {
	if p.c.DividerRatio != nil && *p.c.DividerRatio > 0 {
		return *p.c.DividerRatio
	}
	return *defaultPlatformConfig.DividerRatio
}

func (p *Platform) CalibrationPath() string {
	if p.c.CalibrationPath != nil {
		return *p.c.CalibrationPath
	}
	return *defaultPlatformConfig.CalibrationPath
}

func (p *Platform) SnapshotPath() string {
	if p.c.SnapshotPath != nil {
		return *p.c.SnapshotPath
	}
	return *defaultPlatformConfig.SnapshotPath
}

func (p *Platform) SnapshotSchedule() string {
	if p.c.SnapshotSchedule != nil {
		return *p.c.SnapshotSchedule
	}
	return *defaultPlatformConfig.SnapshotSchedule
}

func (p *Platform) AllowNonRootAccess() bool {
	if p.c.AllowNonRootAccess != nil {
		return *p.c.AllowNonRootAccess
	}
	return *defaultPlatformConfig.AllowNonRootAccess
}

// LogrusFields returns the platform configuration as structured log fields.
func (p *Platform) LogrusFields() logrus.Fields {
	return logrus.Fields{
		"voltage12":        p.Voltage12(),
		"fullFeatures":     p.FullFeatures(),
		"tickInterval":     p.TickInterval().String(),
		"sampler":          p.Sampler(),
		"fixedSample":      p.FixedSample(),
		"calibrationPath":  p.CalibrationPath(),
		"snapshotPath":     p.SnapshotPath(),
		"snapshotSchedule": p.SnapshotSchedule(),
	}
}
