package main

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/UCSIG/attiny85-time-switch/pkg/client"
)

var (
	logLevel       = "info"
	unixSocketPath = "/var/run/timeswitch.sock"
	configPath     = "/etc/timeswitch.json"
)

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, client.ErrDaemonNotRunning):
		fmt.Fprintln(os.Stderr, "\nError: timeswitch daemon is not running")
		fmt.Fprintln(os.Stderr, "Is the daemon running? Have you started it?")
	case errors.Is(err, client.ErrPermissionDenied):
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or run the daemon with '--always-allow-non-root-access'")
	}
}

func main() {
	// The controller does next to nothing between ticks; two CPUs are
	// plenty.
	if os.Getenv("GOMAXPROCS") == "" {
		runtime.GOMAXPROCS(2)
	}

	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeswitch",
		Short: "timeswitch cycles a battery-fed DC load on a duty schedule with undervoltage protection",
		Long: `timeswitch cycles a battery-fed DC load (12V or 24V class) on a fixed
duty schedule and disables it permanently when the battery voltage drops
below the deep-discharge threshold, until the next restart.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "platform config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "timeswitch daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewStatusCommand(),
		NewEventsCommand(),
		NewCalibrationCommand(),
		NewClockCalCommand(),
		NewVersionCommand(),
	)

	return cmd
}
