package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/UCSIG/attiny85-time-switch/pkg/client"
	"github.com/UCSIG/attiny85-time-switch/pkg/events"
)

func NewEventsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "events",
		GroupID: gAdvanced,
		Short:   "Stream controller events from the daemon",
		Long:    `Stream duty transitions and undervoltage trips as they happen. Interrupt to stop.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := client.NewClient(unixSocketPath)
			return apiClient.Events(func(ev events.Event) bool {
				switch ev.Name {
				case events.DutyTransition:
					payload, err := events.DecodeAs[events.DutyTransitionEvent](ev)
					if err != nil {
						logrus.Warnf("undecodable %s event: %v", ev.Name, err)
						return true
					}
					cmd.Printf("duty transition: %s -> %s (cycle %d)\n", payload.From, payload.To, payload.Tick)
				case events.UndervoltageTrip:
					payload, err := events.DecodeAs[events.UndervoltageTripEvent](ev)
					if err != nil {
						logrus.Warnf("undecodable %s event: %v", ev.Name, err)
						return true
					}
					cmd.Printf("undervoltage trip: sample %d below threshold %d (cycle %d), load disabled\n",
						payload.Sample, payload.Threshold, payload.Tick)
				default:
					cmd.Printf("%s: %s\n", ev.Name, string(ev.Data))
				}
				return true
			})
		},
	}
}
