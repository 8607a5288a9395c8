// internal/config/summary.go
package config

import (
	"fmt"
	"strings"
)

// Summary renders the operator-facing configuration summary printed at startup.
func (c *Config) Summary() string {
	var b strings.Builder
	line := strings.Repeat("=", 50)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "Configuration Summary")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Camera Device: %s\n", c.Camera.Device)
	fmt.Fprintf(&b, "Resolution: %s\n", c.Camera.Resolution)
	fmt.Fprintf(&b, "Capture Interval: %gs\n", c.Capture.Interval)
	fmt.Fprintf(&b, "Retry Attempts: %d\n", c.Capture.RetryAttempts)
	fmt.Fprintf(&b, "Output Directory: %s\n", c.Files.CaptureDir)
	fmt.Fprintf(&b, "Log Level: %s\n", c.Logging.Level)
	if c.StatusExport.Enabled {
		fmt.Fprintf(&b, "Status Export: %s (unit=%d slot=%d)\n",
			c.StatusExport.Endpoint, c.StatusExport.UnitID, c.StatusExport.BaseSlot)
	}
	fmt.Fprint(&b, line)

	return b.String()
}
