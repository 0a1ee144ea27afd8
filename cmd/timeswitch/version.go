package main

import (
	"github.com/spf13/cobra"

	"github.com/UCSIG/attiny85-time-switch/pkg/client"
	"github.com/UCSIG/attiny85-time-switch/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: gBasic,
		Short:   "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("client: %s (%s)\n", version.Version, version.GitCommit)

			if v, err := client.NewClient(unixSocketPath).GetVersion(); err == nil {
				cmd.Printf("daemon: %s\n", v)
			} else {
				cmd.Println("daemon: not running")
			}
		},
	}
}
