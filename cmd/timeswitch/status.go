package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/UCSIG/attiny85-time-switch/pkg/client"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

type statusData struct {
	state       *types.ControllerState
	config      *types.OperatingInfo
	calibration *types.CalibrationInfo
}

// fetchStatusData gathers all data required for the status command from the daemon.
func fetchStatusData(apiClient *client.Client) (*statusData, error) {
	state, err := apiClient.GetState()
	if err != nil {
		return nil, fmt.Errorf("failed to get controller state: %w", err)
	}

	conf, err := apiClient.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to get operating configuration: %w", err)
	}

	cal, err := apiClient.GetCalibration()
	if err != nil {
		return nil, fmt.Errorf("failed to get calibration info: %w", err)
	}

	return &statusData{
		state:       state,
		config:      conf,
		calibration: cal,
	}, nil
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		GroupID: gBasic,
		Short:   "Get the current status of the timeswitch daemon",
		Long:    `Get the load state, duty-cycle progress, undervoltage protection status, and the resolved configuration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := fetchStatusData(client.NewClient(unixSocketPath))
			if err != nil {
				return err
			}

			st := data.state
			conf := data.config

			cmd.Println(bold("Load:"))
			cmd.Println("  State: " + onOff(st.LoadOn))
			if st.Latched {
				cmd.Println("    The battery dropped below the undervoltage threshold.")
				cmd.Println("    The load stays off until the daemon is restarted.")
			} else {
				switch st.DutyState {
				case "load-on":
					cmd.Printf("    ON phase, %d of %d cycles elapsed.\n", st.DutyTicks, conf.TicksOn)
				case "load-off":
					cmd.Printf("    OFF phase, %d of %d cycles elapsed.\n", st.DutyTicks, conf.TicksOff)
				}
			}
			cmd.Printf("  Uptime: %d wake cycles\n", st.UptimeTicks)

			cmd.Println()
			cmd.Println(bold("Battery guard:"))
			cmd.Println("  Undervoltage latch: " + bool2Text(!st.Latched) + " (✔ = clear)")
			if st.LastSample != nil {
				cmd.Printf("  Last sample: %d (threshold %d), taken at cycle %d\n",
					*st.LastSample, conf.Threshold, st.LastSampleAt)
			} else {
				cmd.Println("  Last sample: none yet")
			}

			cmd.Println()
			cmd.Println(bold("Configuration:"))
			cmd.Printf("  Voltage class: %s\n", conf.VoltageClass)
			cmd.Printf("  Feature mode: %s\n", conf.FeatureMode)
			cmd.Printf("  Duty timing: %d cycles on / %d cycles off\n", conf.TicksOn, conf.TicksOff)
			cmd.Printf("  Undervoltage threshold (raw): %d\n", conf.Threshold)

			cal := data.calibration
			cmd.Printf("  Clock calibration: ")
			if cal.Applied {
				cmd.Printf("%d Hz applied\n", cal.Hz)
			} else if cal.Present {
				cmd.Printf("%d Hz stored but out of band, ignored\n", cal.Hz)
			} else {
				cmd.Println("none stored")
			}

			return nil
		},
	}
}
