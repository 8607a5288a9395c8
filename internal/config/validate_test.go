// internal/config/validate_test.go
package config

import (
	"strings"
	"testing"
)

// helper to build a valid config quickly
func validConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			Device:         "/dev/video0",
			Resolution:     "1280x720",
			WarmupDelay:    2,
			CaptureTimeout: 10,
		},
		Capture: CaptureConfig{
			Interval:      60,
			RetryAttempts: 3,
			RetryDelay:    5,
			Quality:       85,
		},
		Files: FilesConfig{
			CaptureDir:        "/var/lib/picapture",
			FilenamePattern:   "%Y%m%d_%H%M%S",
			MaxCaptureAgeDays: 7,
		},
		Health: HealthConfig{
			CheckInterval:          300,
			MaxConsecutiveFailures: 3,
		},
		Logging: LoggingConfig{
			Level: "INFO",
		},
	}
}

// ---- tests ----

func TestValidate_Valid(t *testing.T) {
	if err := Validate(validConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ZeroRetriesRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Capture.RetryAttempts = 0

	err := Validate(cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "at least 1") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DeviceRequired(t *testing.T) {
	cfg := validConfig()
	cfg.Camera.Device = "  "

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_PatternWithSeparatorRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Files.FilenamePattern = "%Y/%m/%d"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_UnknownLogLevelRejected(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_StatusExportNeedsEndpoint(t *testing.T) {
	cfg := validConfig()
	cfg.StatusExport.Enabled = true

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cfg.StatusExport.Endpoint = "127.0.0.1:502"
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_DeviceNameMustBeASCII(t *testing.T) {
	cfg := validConfig()
	cfg.StatusExport.DeviceName = "cámara"

	if err := Validate(cfg); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestValidate_DoesNotMutate(t *testing.T) {
	cfg := validConfig()
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "INFO" {
		t.Fatalf("Validate mutated logging level: %q", cfg.Logging.Level)
	}
}

func TestNormalize(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "WARNING"
	cfg.Files.Extension = ".png"
	cfg.StatusExport = StatusExportConfig{
		Enabled:    true,
		Endpoint:   "127.0.0.1:502",
		DeviceName: "front-gate-camera-01",
	}

	Normalize(cfg)

	if cfg.Logging.Level != "warn" {
		t.Fatalf("level: got %q want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Files.Extension != "png" {
		t.Fatalf("extension: got %q want %q", cfg.Files.Extension, "png")
	}
	if len(cfg.StatusExport.DeviceName) != 16 {
		t.Fatalf("device name not truncated: %q", cfg.StatusExport.DeviceName)
	}
	if cfg.StatusExport.TimeoutMs != 1000 {
		t.Fatalf("timeout default: got %d", cfg.StatusExport.TimeoutMs)
	}
	if cfg.Fswebcam.Binary != "fswebcam" {
		t.Fatalf("binary default: got %q", cfg.Fswebcam.Binary)
	}
}
