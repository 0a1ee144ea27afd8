package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
)

// NewCalibrationCommand inspects and produces calibration images, the
// 5-byte files programmed into the controller's non-volatile storage.
func NewCalibrationCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calibration",
		GroupID: gAdvanced,
		Short:   "Inspect or produce oscillator-calibration images",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show <file>",
			Short: "Decode a calibration image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", args[0], err)
				}

				v, ok := calibration.Decode(b)
				if !ok {
					cmd.Println("no valid calibration stored (marker missing or field erased)")
					return nil
				}

				cmd.Printf("stored oscillator frequency: %d Hz\n", v)
				if v.InBand() {
					cmd.Printf("within accepted band, would be applied\n")
					cmd.Printf("example: nominal 7031 cycles -> %d\n", calibration.Apply(v, true, 7031))
				} else {
					cmd.Printf("outside accepted band [%d, %d], would be ignored\n",
						calibration.NominalHz-calibration.MaxDeviationHz,
						calibration.NominalHz+calibration.MaxDeviationHz)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "write <file> <hz>",
			Short: "Write a calibration image for a measured oscillator frequency",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				hz, err := strconv.ParseUint(args[1], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid frequency %q: %w", args[1], err)
				}

				img, err := calibration.Encode(uint32(hz))
				if err != nil {
					return err
				}

				if err := os.WriteFile(args[0], img[:], 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				cmd.Printf("wrote %s (%d Hz)\n", args[0], hz)
				return nil
			},
		},
	)

	return cmd
}
