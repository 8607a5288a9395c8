// internal/camera/camera.go
package camera

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

var (
	// ErrToolNotFound means the capture utility is not installed.
	ErrToolNotFound = errors.New("fswebcam not found - is it installed?")
	// ErrTimeout means a capture did not finish within its timeout.
	ErrTimeout = errors.New("capture timeout")
)

// CaptureError is a non-zero exit from the capture utility.
type CaptureError struct {
	ExitCode int
	Stderr   string
}

func (e *CaptureError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("fswebcam exited with code %d: unknown error", e.ExitCode)
	}
	return fmt.Sprintf("fswebcam exited with code %d: %s", e.ExitCode, e.Stderr)
}

// Config is the minimal runtime config the adapter needs.
type Config struct {
	Device       string
	Resolution   string
	Quality      int
	Binary       string
	Flags        []string
	CustomParams []string
}

// pipeWaitDelay bounds how long Wait blocks on output pipes after the
// process has been killed on timeout.
const pipeWaitDelay = 2 * time.Second

// Fswebcam drives a V4L2 camera through the fswebcam utility.
type Fswebcam struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an fswebcam-backed camera with immutable config.
func New(cfg Config, logger *slog.Logger) (*Fswebcam, error) {
	if cfg.Device == "" {
		return nil, errors.New("camera: device required")
	}
	if cfg.Binary == "" {
		cfg.Binary = "fswebcam"
	}
	return &Fswebcam{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "camera")),
	}, nil
}

// Device returns the device path.
func (c *Fswebcam) Device() string { return c.cfg.Device }

// Present reports whether the device node exists.
func (c *Fswebcam) Present() bool {
	_, err := os.Stat(c.cfg.Device)
	if err != nil {
		c.logger.Error("device not found", slog.String("device", c.cfg.Device))
		return false
	}
	c.logger.Debug("device found", slog.String("device", c.cfg.Device))
	return true
}

// HasReadPermission reports whether the process may read the device.
func (c *Fswebcam) HasReadPermission() bool {
	if err := unix.Access(c.cfg.Device, unix.R_OK); err != nil {
		c.logger.Error("insufficient permissions",
			slog.String("device", c.cfg.Device),
			slog.Any("error", err))
		return false
	}
	c.logger.Debug("device permissions ok", slog.String("device", c.cfg.Device))
	return true
}

// Args builds the fswebcam argument list for dest.
func (c *Fswebcam) Args(dest string) []string {
	args := make([]string, 0, len(c.cfg.Flags)+len(c.cfg.CustomParams)+7)
	args = append(args, c.cfg.Flags...)
	if c.cfg.Resolution != "" {
		args = append(args, "-r", c.cfg.Resolution)
	}
	args = append(args, "-d", c.cfg.Device)
	if c.cfg.Quality > 0 {
		args = append(args, "--jpeg", strconv.Itoa(c.cfg.Quality))
	}
	args = append(args, c.cfg.CustomParams...)
	return append(args, dest)
}

// Capture writes one image to dest. It blocks for at most timeout; a
// process still running at the deadline is killed.
func (c *Fswebcam) Capture(ctx context.Context, dest string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := c.Args(dest)
	cmd := exec.CommandContext(ctx, c.cfg.Binary, args...) //nolint:gosec // args come from trusted config
	cmd.WaitDelay = pipeWaitDelay

	var stderr strings.Builder
	cmd.Stderr = &stderr

	c.logger.Debug("executing capture",
		slog.String("cmd", c.cfg.Binary+" "+strings.Join(args, " ")))

	err := cmd.Run()
	if err == nil {
		c.logger.Debug("fswebcam completed successfully")
		return nil
	}

	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return ErrToolNotFound
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(stderr.String())
		c.logger.Debug("fswebcam stderr", slog.String("stderr", msg))
		return &CaptureError{ExitCode: exitErr.ExitCode(), Stderr: msg}
	}

	return fmt.Errorf("capture exception: %w", err)
}

// Info returns raw v4l2-ctl output for the device.
func (c *Fswebcam) Info(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "v4l2-ctl", "--device", c.cfg.Device, "--all").Output() //nolint:gosec // device from trusted config
	if err != nil {
		return "", fmt.Errorf("v4l2-ctl: %w", err)
	}
	return string(out), nil
}

// ListDevices returns the video0..video9 nodes that exist under devDir.
func ListDevices(devDir string) []string {
	var devices []string
	for i := 0; i < 10; i++ {
		p := filepath.Join(devDir, fmt.Sprintf("video%d", i))
		if _, err := os.Stat(p); err == nil {
			devices = append(devices, p)
		}
	}
	return devices
}
