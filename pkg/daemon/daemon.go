// Package daemon implements the duty-cycle controller: the tick-driven
// orchestrator, the undervoltage guard, the duty-cycle state machine, and
// the host daemon surface around them (HTTP API over a unix socket,
// telemetry snapshots, signal handling).
package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/UCSIG/attiny85-time-switch/pkg/calibration"
	"github.com/UCSIG/attiny85-time-switch/pkg/config"
	"github.com/UCSIG/attiny85-time-switch/pkg/events"
	"github.com/UCSIG/attiny85-time-switch/pkg/hal"
	"github.com/UCSIG/attiny85-time-switch/pkg/types"
)

var (
	orch    *Orchestrator
	conf    config.Operating
	hub     *events.EventHub
	calInfo types.CalibrationInfo
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	// The API is read-only: the operating configuration is immutable after
	// boot, so there is nothing to PUT.
	router.GET("/config", getConfig)
	router.GET("/state", getState)
	router.GET("/calibration", getCalibration)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)

	return router
}

// buildSampler picks the voltage sampler backend from platform config.
func buildSampler(plat *config.Platform) hal.VoltageSampler {
	switch plat.Sampler() {
	case config.SamplerHost:
		return hal.NewHostBatterySampler(plat.DividerRatio())
	default:
		return hal.FixedSampler(plat.FixedSample())
	}
}

// readCalibration reads and decodes the stored calibration image. Any read
// failure is logged and treated as "no calibration stored".
func readCalibration(store hal.CalibrationStore) (calibration.Value, bool) {
	img, err := store.ReadCalibration()
	if err != nil {
		logrus.Errorf("failed to read calibration storage: %v", err)
		return 0, false
	}
	return calibration.Decode(img)
}

// Run starts the controller daemon and blocks until SIGINT/SIGTERM.
func Run(configPath string, unixSocketPath string, alwaysAllowNonRoot bool) error {
	plat, err := config.LoadPlatform(configPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	logrus.WithFields(plat.LogrusFields()).Infof("platform config loaded")

	// Calibration and selectors are read exactly once; the operating
	// configuration never changes afterwards.
	cal, calOK := readCalibration(hal.NewFileCalibrationStore(plat.CalibrationPath()))
	calInfo = types.CalibrationInfo{
		Present: calOK,
		Applied: calOK && cal.InBand(),
	}
	if calOK {
		calInfo.Hz = uint32(cal)
		if !calInfo.Applied {
			logrus.Warnf("stored calibration %d Hz outside accepted band, ignoring", cal)
		}
	}

	conf = config.Resolve(plat.Voltage12(), plat.FullFeatures(), cal, calOK)
	logrus.WithFields(conf.LogrusFields()).Infof("operating configuration resolved")

	hub = events.NewEventHub()

	ticker := hal.NewIntervalTicker(plat.TickInterval())
	defer ticker.Stop()
	load := hal.NewLoggingSwitch()
	orch = NewOrchestrator(conf, ticker, load, buildSampler(plat), hub)

	// The load starts on, regardless of feature mode.
	orch.Start()

	router := setupRoutes()
	srv := &http.Server{
		Handler: router,
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if plat.AllowNonRootAccess() || alwaysAllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		if err := os.Chmod(unixSocketPath, 0777); err != nil {
			logrus.Fatal(err)
		}
	}

	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	snapshots := startSnapshotJob(plat)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		logrus.Debugln("control loop starts")

		err := orch.Run(ctx)

		if !errors.Is(err, context.Canceled) {
			logrus.Errorf("control loop exited unexpectedly: %v", err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	shutdownCancel()

	if snapshots != nil {
		logrus.Info("stopping telemetry snapshots")
		<-snapshots.Stop().Done()
	}

	cancel()

	// A stopped daemon cannot protect the battery, so leave the load open.
	logrus.Info("switching load off before exit")
	load.Set(false)

	logrus.Info("exiting")
	return nil
}

// startSnapshotJob schedules periodic telemetry snapshots when a snapshot
// path is configured. Returns nil when disabled.
func startSnapshotJob(plat *config.Platform) *cron.Cron {
	path := plat.SnapshotPath()
	if path == "" {
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(plat.SnapshotSchedule(), func() {
		if err := writeSnapshot(path, orch.Snapshot(), conf, calInfo); err != nil {
			logrus.Errorf("failed to write telemetry snapshot: %v", err)
		}
	})
	if err != nil {
		logrus.Errorf("invalid snapshot schedule %q: %v", plat.SnapshotSchedule(), err)
		return nil
	}
	c.Start()
	logrus.WithFields(logrus.Fields{
		"path":     path,
		"schedule": plat.SnapshotSchedule(),
	}).Info("telemetry snapshots enabled")
	return c
}
