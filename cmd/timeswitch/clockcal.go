package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
)

// NewClockCalCommand is the calibration-measurement mode: a separate
// entrypoint that free-runs the tick source against the wall clock and
// reports the implied oscillator frequency. It never enters the control
// loop and never touches the load.
func NewClockCalCommand() *cobra.Command {
	var (
		cycles int
	)

	cmd := &cobra.Command{
		Use:     "clockcal",
		GroupID: gAdvanced,
		Short:   "Measure the tick period and report the implied oscillator frequency",
		Long: `Free-run the tick source and compare the observed wake period against
the nominal 8.192s. The reported frequency is what 'calibration write'
expects. Interrupt to stop early.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plat, err := config.LoadPlatform(configPath)
			if err != nil {
				return err
			}

			nominal := 8192 * time.Millisecond
			interval := plat.TickInterval()
			ticker := hal.NewIntervalTicker(interval)
			defer ticker.Stop()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logrus.WithFields(logrus.Fields{
				"cycles":   cycles,
				"interval": interval.String(),
			}).Info("measuring tick period")

			start := time.Now()
			for i := 0; i < cycles; i++ {
				if err := ticker.Wait(ctx); err != nil {
					cmd.Println("interrupted")
					return nil
				}
			}
			elapsed := time.Since(start)

			period := elapsed / time.Duration(cycles)
			// A slow oscillator stretches the period, so the implied
			// frequency scales inversely with it.
			implied := uint32(float64(calibration.NominalHz) * float64(nominal) / float64(period))

			cmd.Printf("observed period: %s over %d cycles\n", period, cycles)
			cmd.Printf("implied oscillator frequency: %d Hz (nominal %d)\n", implied, calibration.NominalHz)
			if !calibration.Value(implied).InBand() {
				cmd.Println("outside the accepted calibration band; the controller would ignore this value")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&cycles, "cycles", 8, "number of wake cycles to average over")

	return cmd
}
