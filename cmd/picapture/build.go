// cmd/picapture/build.go
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tamzrod/picapture/internal/artifact"
	"github.com/tamzrod/picapture/internal/camera"
	"github.com/tamzrod/picapture/internal/capture"
	"github.com/tamzrod/picapture/internal/config"
	"github.com/tamzrod/picapture/internal/health"
	"github.com/tamzrod/picapture/internal/logging"
	"github.com/tamzrod/picapture/internal/writer"
)

// app holds the wired components for one command invocation.
type app struct {
	cfgPath string
	cfg     *config.Config

	logMgr *logging.Manager
	logger *slog.Logger
	events *logging.Events

	cam     *camera.Fswebcam
	store   *artifact.Store
	monitor *health.Monitor
	orch    *capture.Orchestrator

	closers []func() error
}

// configPath resolves --config, then PICAM_CONFIG, then the default.
func configPath(flag string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("PICAM_CONFIG"); env != "" {
		return env
	}
	return config.DefaultPath
}

// loadConfig runs Load, Validate and Normalize in that order.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func loggingConfig(cfg *config.Config) logging.Config {
	path := cfg.Logging.LogFile
	if path != "" && !filepath.IsAbs(path) && cfg.Files.LogDir != "" {
		path = filepath.Join(cfg.Files.LogDir, path)
	}
	return logging.Config{
		Level:         cfg.Logging.Level,
		Format:        cfg.Logging.Format,
		FilePath:      path,
		Console:       cfg.Logging.ConsoleEnabled(),
		FileMaxSizeMB: cfg.Logging.MaxLogSizeMB,
		FileMaxFiles:  cfg.Logging.BackupCount,
	}
}

// buildApp loads config and wires every component except the status
// writer and the watcher, which only the capture commands need.
func buildApp(flagPath string) (*app, error) {
	a := &app{cfgPath: configPath(flagPath)}

	cfg, err := loadConfig(a.cfgPath)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg

	a.logMgr, a.logger = logging.NewManager(loggingConfig(cfg))
	a.closers = append(a.closers, a.logMgr.Close)
	a.events = logging.NewEvents(a.logger)

	// ---- capture device ----
	a.cam, err = camera.New(camera.Config{
		Device:       cfg.Camera.Device,
		Resolution:   cfg.Camera.Resolution,
		Quality:      cfg.Capture.Quality,
		Binary:       cfg.Fswebcam.Binary,
		Flags:        cfg.Fswebcam.Flags,
		CustomParams: cfg.Fswebcam.CustomParams,
	}, a.logger)
	if err != nil {
		return nil, a.fail(err)
	}

	// ---- artifact store ----
	a.store, err = artifact.New(artifact.Config{
		Dir:       cfg.Files.CaptureDir,
		Pattern:   cfg.Files.FilenamePattern,
		Extension: cfg.Files.Extension,
	}, a.logger)
	if err != nil {
		return nil, a.fail(err)
	}

	// ---- health monitor ----
	a.monitor = health.NewMonitor(health.Config{
		CheckInterval:          config.Seconds(cfg.Health.CheckInterval),
		MaxConsecutiveFailures: cfg.Health.MaxConsecutiveFailures,
		AlertOnDisconnect:      cfg.Health.AlertOnDisconnect,
	}, a.cam, a.events)

	// ---- orchestrator ----
	a.orch, err = capture.New(capture.Config{
		Interval:       config.Seconds(cfg.Capture.Interval),
		RetryDelay:     config.Seconds(cfg.Capture.RetryDelay),
		CaptureTimeout: config.Seconds(cfg.Camera.CaptureTimeout),
		WarmupDelay:    config.Seconds(cfg.Camera.WarmupDelay),
		MaxRetries:     cfg.Capture.RetryAttempts,
		MaxAgeDays:     cfg.Files.MaxCaptureAgeDays,
		Extension:      cfg.Files.Extension,
	}, a.cam, a.store, a.monitor, a.events)
	if err != nil {
		return nil, a.fail(err)
	}

	return a, nil
}

// attachStatus wires the optional status block writer. A failed initial
// connect is logged; the client dials again on the next write.
func (a *app) attachStatus() error {
	sw, closeFn, err := writer.Build(a.cfg.StatusExport)
	if sw == nil {
		return err
	}
	if err != nil {
		a.logger.Warn("status endpoint not reachable yet",
			slog.String("endpoint", a.cfg.StatusExport.Endpoint),
			slog.Any("error", err))
	}
	a.closers = append(a.closers, closeFn)
	a.orch.SetStatusWriter(sw)
	return nil
}

// reloadLogging re-reads the config file and applies its logging section.
func (a *app) reloadLogging() {
	cfg, err := loadConfig(a.cfgPath)
	if err != nil {
		a.logger.Error("config reload failed", slog.Any("error", err))
		return
	}
	lc := loggingConfig(cfg)
	a.logMgr.Reconfigure(lc)
	a.logger.Info("logging reconfigured", slog.String("config", lc.String()))
}

func (a *app) fail(err error) error {
	a.close()
	return err
}

// close runs closers in reverse order.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]() //nolint:errcheck
	}
	a.closers = nil
}
