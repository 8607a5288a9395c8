// internal/watcher/device_test.go
package watcher

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tamzrod/picapture/internal/logging"
)

func newTestWatcher(t *testing.T, device string, burst int) (*DeviceWatcher, *bytes.Buffer, *[]Change) {
	t.Helper()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var changes []Change
	w, err := New(Config{Device: device, AlertEvery: time.Hour, Burst: burst},
		logging.NewEvents(logger),
		func(c Change) { changes = append(changes, c) })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w, &buf, &changes
}

func TestNew_DeviceRequired(t *testing.T) {
	if _, err := New(Config{}, nil, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestHandle_Transitions(t *testing.T) {
	w, buf, changes := newTestWatcher(t, "/dev/video0", 10)

	w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Remove})
	w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Create})
	w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Rename})

	want := []Change{Disconnected, Connected, Disconnected}
	if len(*changes) != len(want) {
		t.Fatalf("changes: got=%v want=%v", *changes, want)
	}
	for i := range want {
		if (*changes)[i] != want[i] {
			t.Fatalf("change %d: got=%v want=%v", i, (*changes)[i], want[i])
		}
	}

	out := buf.String()
	if !strings.Contains(out, "event=camera_disconnect") || !strings.Contains(out, "event=camera_reconnect") {
		t.Fatalf("missing events in log:\n%s", out)
	}
}

func TestHandle_IgnoresOtherNodesAndOps(t *testing.T) {
	w, _, changes := newTestWatcher(t, "/dev/video0", 10)

	w.handle(fsnotify.Event{Name: "/dev/video1", Op: fsnotify.Remove})
	w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Write})
	w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Chmod})

	if len(*changes) != 0 {
		t.Fatalf("expected no changes, got %v", *changes)
	}
}

func TestHandle_AlertsThrottled(t *testing.T) {
	w, buf, changes := newTestWatcher(t, "/dev/video0", 1)

	for i := 0; i < 3; i++ {
		w.handle(fsnotify.Event{Name: "/dev/video0", Op: fsnotify.Remove})
	}

	if len(*changes) != 3 {
		t.Fatalf("callback must see every change, got %d", len(*changes))
	}
	if n := strings.Count(buf.String(), "event=camera_disconnect"); n != 1 {
		t.Fatalf("expected 1 alert, got %d", n)
	}
}

func TestRun_DetectsCreate(t *testing.T) {
	dir := t.TempDir()
	device := filepath.Join(dir, "video0")

	got := make(chan Change, 4)
	w, err := New(Config{Device: device}, nil, func(c Change) {
		select {
		case got <- c:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher a moment to register the directory.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	created := false
	for !created {
		select {
		case c := <-got:
			if c == Connected {
				created = true
			}
		case <-tick.C:
			_ = os.Remove(device)
			if err := os.WriteFile(device, nil, 0o600); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatalf("no connect event observed")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}
