// internal/health/types.go
package health

import (
	"log/slog"
	"time"
)

// Status is the three-state health judgment.
type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusFailed   Status = "failed"
)

// Failure reasons that dominate the consecutive-failure judgment.
const (
	ReasonDeviceNotFound          = "device not found"
	ReasonInsufficientPermissions = "insufficient permissions"
)

// Snapshot is the result of one CheckHealth call.
type Snapshot struct {
	Status              Status
	ConsecutiveFailures int
	Reason              string // empty when healthy
}

// Outcome is the immutable record of one logical capture cycle.
type Outcome struct {
	At        time.Time
	Succeeded bool
	Err       string // empty on success
	Attempt   int    // attempts used, 1..maxRetries
}

// Probe is the device existence/permission contract the monitor needs.
type Probe interface {
	Present() bool
	HasReadPermission() bool
}

// Metrics is a read-only snapshot for reporting.
type Metrics struct {
	Uptime              time.Duration
	TotalCaptures       int
	SuccessfulCaptures  int
	FailedCaptures      int
	SuccessRate         float64 // percent, 2 decimals
	ConsecutiveFailures int
	CameraDisconnects   int
	LastSuccess         time.Time // zero => never
	LastFailure         time.Time // zero => never
	LastCheck           time.Time // zero => never
	LastError           string
}

// LogValue implements slog.LogValuer.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("uptime", m.Uptime.Truncate(time.Second).String()),
		slog.Int("total_captures", m.TotalCaptures),
		slog.Int("successful_captures", m.SuccessfulCaptures),
		slog.Int("failed_captures", m.FailedCaptures),
		slog.Float64("success_rate", m.SuccessRate),
		slog.Int("consecutive_failures", m.ConsecutiveFailures),
		slog.Int("camera_disconnects", m.CameraDisconnects),
		slog.String("last_success", formatTime(m.LastSuccess)),
		slog.String("last_failure", formatTime(m.LastFailure)),
		slog.String("last_health_check", formatTime(m.LastCheck)),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format(time.DateTime)
}
