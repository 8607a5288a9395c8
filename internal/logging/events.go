package logging

import (
	"log/slog"
	"path/filepath"
)

// Events emits the capture system's structured audit events.
// Delivery is fire-and-forget; ordering follows call order.
type Events struct {
	logger *slog.Logger
}

// NewEvents wraps logger. A nil logger discards events.
func NewEvents(logger *slog.Logger) *Events {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Events{logger: logger}
}

// Logger returns the underlying logger.
func (e *Events) Logger() *slog.Logger { return e.logger }

func (e *Events) CaptureSuccess(path string, attempt int) {
	e.logger.Info("capture success",
		slog.String("event", "capture_success"),
		slog.String("file", filepath.Base(path)),
		slog.Int("attempt", attempt))
}

func (e *Events) CaptureFailure(err error, attempt, maxAttempts int) {
	e.logger.Error("capture failure",
		slog.String("event", "capture_failure"),
		slog.Any("error", err),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", maxAttempts))
}

// HealthCheck logs a health result at a level matching its severity.
func (e *Events) HealthCheck(status string, consecutiveFailures int, reason string) {
	attrs := []any{
		slog.String("event", "health_check"),
		slog.String("status", status),
		slog.Int("consecutive_failures", consecutiveFailures),
	}
	if reason != "" {
		attrs = append(attrs, slog.String("reason", reason))
	}

	switch status {
	case "healthy":
		e.logger.Info("health check", attrs...)
	case "degraded":
		e.logger.Warn("health check", attrs...)
	default:
		e.logger.Error("health check", attrs...)
	}
}

func (e *Events) CameraDisconnect(device string) {
	Critical(e.logger, "camera disconnected",
		slog.String("event", "camera_disconnect"),
		slog.String("device", device))
}

func (e *Events) CameraReconnect(device string) {
	e.logger.Info("camera reconnected",
		slog.String("event", "camera_reconnect"),
		slog.String("device", device))
}

func (e *Events) SystemStart(runID string) {
	e.logger.Info("capture system started",
		slog.String("event", "system_start"),
		slog.String("run_id", runID))
}

func (e *Events) SystemStop(runID string) {
	e.logger.Info("capture system stopped",
		slog.String("event", "system_stop"),
		slog.String("run_id", runID))
}
