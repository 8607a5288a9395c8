// cmd/picapture/build_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tamzrod/picapture/internal/config"
)

func TestConfigPath_Precedence(t *testing.T) {
	t.Setenv("PICAM_CONFIG", "")
	if got := configPath(""); got != config.DefaultPath {
		t.Fatalf("default: got=%q", got)
	}

	t.Setenv("PICAM_CONFIG", "/etc/picapture.yaml")
	if got := configPath(""); got != "/etc/picapture.yaml" {
		t.Fatalf("env: got=%q", got)
	}
	if got := configPath("local.yaml"); got != "local.yaml" {
		t.Fatalf("flag: got=%q", got)
	}
}

func TestLoggingConfig_JoinsLogDir(t *testing.T) {
	cfg := &config.Config{}
	cfg.Files.LogDir = "/var/log/picapture"
	cfg.Logging.LogFile = "camera.log"
	cfg.Logging.BackupCount = 3

	lc := loggingConfig(cfg)
	if lc.FilePath != "/var/log/picapture/camera.log" {
		t.Fatalf("file path: got=%q", lc.FilePath)
	}
	if !lc.Console || lc.FileMaxFiles != 3 {
		t.Fatalf("unexpected config: %+v", lc)
	}

	cfg.Logging.LogFile = "/tmp/abs.log"
	if got := loggingConfig(cfg).FilePath; got != "/tmp/abs.log" {
		t.Fatalf("absolute path rewritten: %q", got)
	}
}

func TestLoadConfig_ShippedDefault(t *testing.T) {
	for _, k := range []string{"PICAM_DEVICE", "PICAM_CAPTURE_DIR", "PICAM_INTERVAL", "PICAM_LOG_LEVEL", "PICAM_LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg, err := loadConfig(filepath.Join("..", "..", config.DefaultPath))
	if err != nil {
		t.Fatalf("loadConfig() err=%v", err)
	}
	if cfg.Capture.RetryAttempts < 1 || cfg.Files.Extension != "jpg" {
		t.Fatalf("unexpected config: %+v", cfg.Capture)
	}
}

func TestBuildApp_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("camera:\n  device: /dev/video0\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := buildApp(path); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
