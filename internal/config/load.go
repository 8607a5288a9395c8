// internal/config/load.go
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor PICAM_CONFIG is given.
const DefaultPath = "config/default_config.yaml"

// Load reads a YAML config file and applies environment overrides.
// Environment variables take precedence over file values.
// Load does not validate; call Validate then Normalize.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, checks required sections and applies env overrides.
func Parse(data []byte) (*Config, error) {
	var sections map[string]yaml.Node
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for _, name := range RequiredSections {
		if _, ok := sections[name]; !ok {
			return nil, fmt.Errorf("missing required config section: %s", name)
		}
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromEnv() error {
	if v := os.Getenv("PICAM_DEVICE"); v != "" {
		c.Camera.Device = v
	}
	if v := os.Getenv("PICAM_CAPTURE_DIR"); v != "" {
		c.Files.CaptureDir = v
	}
	if v := os.Getenv("PICAM_INTERVAL"); v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("PICAM_INTERVAL: %w", err)
		}
		c.Capture.Interval = secs
	}
	if v := os.Getenv("PICAM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PICAM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}
