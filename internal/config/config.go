// internal/config/config.go
package config

import "time"

type Config struct {
	Camera       CameraConfig       `yaml:"camera"`
	Fswebcam     FswebcamConfig     `yaml:"fswebcam"`
	Capture      CaptureConfig      `yaml:"capture"`
	Files        FilesConfig        `yaml:"files"`
	Health       HealthConfig       `yaml:"health"`
	Logging      LoggingConfig      `yaml:"logging"`
	StatusExport StatusExportConfig `yaml:"status_export"`
}

// ---- CAMERA ----

type CameraConfig struct {
	Device         string  `yaml:"device"`
	Resolution     string  `yaml:"resolution"`
	WarmupDelay    float64 `yaml:"warmup_delay"`    // seconds
	CaptureTimeout float64 `yaml:"capture_timeout"` // seconds, per attempt
}

// FswebcamConfig carries raw flags passed through to the capture tool.
type FswebcamConfig struct {
	Binary       string   `yaml:"binary"`
	Flags        []string `yaml:"flags"`
	CustomParams []string `yaml:"custom_params"`
}

// ---- CAPTURE SCHEDULE ----

type CaptureConfig struct {
	Interval      float64 `yaml:"interval"` // seconds
	RetryAttempts int     `yaml:"retry_attempts"`
	RetryDelay    float64 `yaml:"retry_delay"` // seconds
	Quality       int     `yaml:"quality"`
}

// ---- FILES ----

type FilesConfig struct {
	CaptureDir        string `yaml:"capture_dir"`
	FilenamePattern   string `yaml:"filename_pattern"` // strftime pattern
	Extension         string `yaml:"extension"`
	MaxCaptureAgeDays int    `yaml:"max_capture_age_days"`
	LogDir            string `yaml:"log_dir"`
}

// ---- HEALTH ----

type HealthConfig struct {
	CheckInterval          float64 `yaml:"check_interval"` // seconds
	MaxConsecutiveFailures int     `yaml:"max_consecutive_failures"`
	AlertOnDisconnect      bool    `yaml:"alert_on_disconnect"`
	WatchDevice            *bool   `yaml:"watch_device"` // nil => enabled
}

// ---- LOGGING ----

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"` // text | json | auto
	LogFile       string `yaml:"log_file"`
	ConsoleOutput *bool  `yaml:"console_output"` // nil => enabled
	MaxLogSizeMB  int    `yaml:"max_log_size_mb"`
	BackupCount   int    `yaml:"backup_count"`
}

// ---- STATUS EXPORT (optional, opt-in) ----

type StatusExportConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	UnitID     uint8  `yaml:"unit_id"`
	BaseSlot   uint16 `yaml:"base_slot"`
	DeviceName string `yaml:"device_name"`
	TimeoutMs  int    `yaml:"timeout_ms"`
}

// RequiredSections must be present in every config file.
var RequiredSections = []string{"camera", "capture", "files", "logging", "health"}

// Seconds converts a seconds value from the config file into a duration.
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// WatchDeviceEnabled reports whether the hot-plug watcher should run.
func (h HealthConfig) WatchDeviceEnabled() bool {
	return h.WatchDevice == nil || *h.WatchDevice
}

// ConsoleEnabled reports whether log records are mirrored to stdout.
func (l LoggingConfig) ConsoleEnabled() bool {
	return l.ConsoleOutput == nil || *l.ConsoleOutput
}
