package hal

import (
	"github.com/distatus/battery"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// adcReference is the measurement reference voltage: a 10-bit reading of
// 1023 corresponds to this voltage at the ADC input.
const adcReference = 2.56

// HostBatterySampler is a demo voltage sampler backed by the host
// machine's own battery. The pack voltage is run through the configured
// divider ratio and quantized to the 10-bit raw scale, the same transform
// the real divider and ADC perform on the DC battery.
type HostBatterySampler struct {
	dividerRatio float64
}

func NewHostBatterySampler(dividerRatio float64) *HostBatterySampler {
	return &HostBatterySampler{dividerRatio: dividerRatio}
}

func (s *HostBatterySampler) Sample() (uint16, error) {
	batteries, err := battery.GetAll()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "failed to read host battery")
	}
	if len(batteries) == 0 {
		return 0, pkgerrors.New("no battery present on host")
	}
	bat := batteries[0]

	raw := bat.Voltage * s.dividerRatio / adcReference * 1023
	if raw < 0 {
		raw = 0
	}
	if raw > 1023 {
		raw = 1023
	}

	logrus.WithFields(logrus.Fields{
		"voltage": bat.Voltage,
		"raw":     uint16(raw),
	}).Trace("sampled host battery")

	return uint16(raw), nil
}
