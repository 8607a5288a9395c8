package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_LevelSwap(t *testing.T) {
	mgr, logger := NewManager(Config{Level: "info", Format: "json", Console: true})
	defer mgr.Close() //nolint:errcheck

	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be enabled")
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be disabled")
	}

	mgr.Reconfigure(Config{Level: "debug", Format: "json", Console: true})
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug to be enabled after reconfigure")
	}

	mgr.Reconfigure(Config{Level: "critical", Format: "json", Console: true})
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be disabled when level is critical")
	}
	if !logger.Enabled(context.Background(), LevelCritical) {
		t.Error("expected critical to be enabled")
	}
}

func TestManager_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "camera.log")

	mgr, logger := NewManager(Config{
		Level:         "info",
		Format:        "json",
		FilePath:      logFile,
		FileMaxSizeMB: 1,
		FileMaxFiles:  1,
	})

	logger.Info("file test message")
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "file test message") {
		t.Errorf("log file missing message, got: %s", data)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		"INFO":     slog.LevelInfo,
		"warning":  slog.LevelWarn,
		"warn":     slog.LevelWarn,
		"error":    slog.LevelError,
		"critical": LevelCritical,
		"bogus":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestCriticalRendering(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(buildHandler(&buf, slog.LevelInfo, "json"))

	Critical(logger, "camera gone")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if rec["level"] != "CRITICAL" {
		t.Errorf("level = %v, want CRITICAL", rec["level"])
	}
}

func TestEvents_Order(t *testing.T) {
	var buf bytes.Buffer
	ev := NewEvents(slog.New(buildHandler(&buf, slog.LevelDebug, "json")))

	ev.SystemStart("run-1")
	ev.CaptureFailure(errors.New("busy"), 1, 3)
	ev.CaptureSuccess("/captures/20240101_000000.jpg", 2)
	ev.HealthCheck("degraded", 1, "")
	ev.SystemStop("run-1")

	var events []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("decoding %q: %v", line, err)
		}
		events = append(events, rec["event"].(string))
	}

	want := []string{"system_start", "capture_failure", "capture_success", "health_check", "system_stop"}
	if strings.Join(events, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", events, want)
	}
}

func TestEvents_NilLogger(t *testing.T) {
	ev := NewEvents(nil)
	ev.CameraDisconnect("/dev/video0") // must not panic
}
