// internal/config/normalize.go
package config

import "strings"

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	switch cfg.Logging.Level {
	case "":
		cfg.Logging.Level = "info"
	case "warning":
		cfg.Logging.Level = "warn"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "auto"
	}

	cfg.Files.Extension = strings.TrimPrefix(cfg.Files.Extension, ".")
	if cfg.Files.Extension == "" {
		cfg.Files.Extension = "jpg"
	}

	if cfg.Fswebcam.Binary == "" {
		cfg.Fswebcam.Binary = "fswebcam"
	}

	// ------------------------------------------------------------
	// STATUS EXPORT NORMALIZATION (OPT-IN)
	// ------------------------------------------------------------

	if !cfg.StatusExport.Enabled {
		return
	}

	// ASCII already validated; the block holds 16 characters.
	if len(cfg.StatusExport.DeviceName) > 16 {
		cfg.StatusExport.DeviceName = cfg.StatusExport.DeviceName[:16]
	}
	if cfg.StatusExport.TimeoutMs == 0 {
		cfg.StatusExport.TimeoutMs = 1000
	}
}
