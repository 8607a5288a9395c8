// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	// ------------------------------------------------------------
	// CAMERA
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Camera.Device) == "" {
		return errors.New("camera device path is required")
	}
	if cfg.Camera.CaptureTimeout <= 0 {
		return fmt.Errorf("camera.capture_timeout must be > 0, got %v", cfg.Camera.CaptureTimeout)
	}
	if cfg.Camera.WarmupDelay < 0 {
		return fmt.Errorf("camera.warmup_delay must be >= 0, got %v", cfg.Camera.WarmupDelay)
	}

	// ------------------------------------------------------------
	// CAPTURE SCHEDULE
	// ------------------------------------------------------------

	if cfg.Capture.RetryAttempts < 1 {
		return errors.New("retry attempts must be at least 1")
	}
	if cfg.Capture.Interval <= 0 {
		return fmt.Errorf("capture.interval must be > 0, got %v", cfg.Capture.Interval)
	}
	if cfg.Capture.RetryDelay < 0 {
		return fmt.Errorf("capture.retry_delay must be >= 0, got %v", cfg.Capture.RetryDelay)
	}
	if cfg.Capture.Quality < 1 || cfg.Capture.Quality > 100 {
		return fmt.Errorf("capture.quality must be within 1..100, got %d", cfg.Capture.Quality)
	}

	// ------------------------------------------------------------
	// FILES
	// ------------------------------------------------------------

	if strings.TrimSpace(cfg.Files.CaptureDir) == "" {
		return errors.New("files.capture_dir is required")
	}
	if cfg.Files.FilenamePattern == "" {
		return errors.New("files.filename_pattern is required")
	}
	if strings.ContainsAny(cfg.Files.FilenamePattern, `/\`) {
		return fmt.Errorf("files.filename_pattern %q must not contain path separators", cfg.Files.FilenamePattern)
	}
	if strings.ContainsAny(cfg.Files.Extension, `/\`) {
		return fmt.Errorf("files.extension %q must not contain path separators", cfg.Files.Extension)
	}

	// ------------------------------------------------------------
	// HEALTH
	// ------------------------------------------------------------

	if cfg.Health.MaxConsecutiveFailures < 1 {
		return errors.New("health.max_consecutive_failures must be at least 1")
	}
	if cfg.Health.CheckInterval < 0 {
		return fmt.Errorf("health.check_interval must be >= 0, got %v", cfg.Health.CheckInterval)
	}

	// ------------------------------------------------------------
	// LOGGING
	// ------------------------------------------------------------

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error", "critical":
	default:
		return fmt.Errorf("logging.level %q is not recognized", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "text", "json", "auto":
	default:
		return fmt.Errorf("logging.format %q is not recognized", cfg.Logging.Format)
	}
	if cfg.Logging.MaxLogSizeMB < 0 || cfg.Logging.BackupCount < 0 {
		return errors.New("logging rotation settings must be >= 0")
	}

	// ------------------------------------------------------------
	// STATUS EXPORT (OPT-IN)
	// ------------------------------------------------------------

	se := cfg.StatusExport
	if se.DeviceName != "" {
		for i := 0; i < len(se.DeviceName); i++ {
			if se.DeviceName[i] > 0x7F {
				return errors.New("status_export.device_name must contain ASCII characters only")
			}
		}
	}
	if se.Enabled {
		if se.Endpoint == "" {
			return errors.New("status_export.endpoint is required when status export is enabled")
		}
		if se.TimeoutMs < 0 {
			return fmt.Errorf("status_export.timeout_ms must be >= 0, got %d", se.TimeoutMs)
		}
		// 20 slots per block must fit in the 16-bit address space
		if int(se.BaseSlot)*20+20 > 65536 {
			return fmt.Errorf("status_export.base_slot %d is out of range", se.BaseSlot)
		}
	}

	return nil
}
