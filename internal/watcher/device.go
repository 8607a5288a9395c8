// internal/watcher/device.go
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/tamzrod/picapture/internal/logging"
)

// Change is a hot-plug transition of the watched device node.
type Change int

const (
	Disconnected Change = iota
	Connected
)

func (c Change) String() string {
	if c == Connected {
		return "connected"
	}
	return "disconnected"
}

// Config is the minimal runtime config the watcher needs.
type Config struct {
	Device string
	// AlertEvery bounds how often disconnect/reconnect events are logged.
	AlertEvery time.Duration
	Burst      int
}

// DeviceWatcher observes the device node's directory and reports
// hot-plug transitions. It is observational only: health counters stay
// owned by the capture loop.
type DeviceWatcher struct {
	cfg      Config
	events   *logging.Events
	logger   *slog.Logger
	limiter  *rate.Limiter
	onChange func(Change)
}

// New creates a watcher. onChange may be nil.
func New(cfg Config, events *logging.Events, onChange func(Change)) (*DeviceWatcher, error) {
	if cfg.Device == "" {
		return nil, errors.New("watcher: device required")
	}
	if cfg.AlertEvery <= 0 {
		cfg.AlertEvery = 10 * time.Second
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	if events == nil {
		events = logging.NewEvents(nil)
	}
	return &DeviceWatcher{
		cfg:      cfg,
		events:   events,
		logger:   events.Logger().With(slog.String("component", "watcher")),
		limiter:  rate.NewLimiter(rate.Every(cfg.AlertEvery), cfg.Burst),
		onChange: onChange,
	}, nil
}

// Run blocks until ctx is done or the underlying watcher fails.
func (w *DeviceWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.cfg.Device)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watcher: watch %s: %w", dir, err)
	}

	w.logger.Debug("watching device", slog.String("device", w.cfg.Device), slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", slog.Any("error", err))
		}
	}
}

// handle maps one filesystem event onto a device transition.
func (w *DeviceWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != filepath.Clean(w.cfg.Device) {
		return
	}

	var change Change
	switch {
	case ev.Has(fsnotify.Create):
		change = Connected
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		change = Disconnected
	default:
		return
	}

	if w.limiter.Allow() {
		if change == Connected {
			w.events.CameraReconnect(w.cfg.Device)
		} else {
			w.events.CameraDisconnect(w.cfg.Device)
		}
	} else {
		w.logger.Debug("device change (throttled)", slog.String("change", change.String()))
	}

	if w.onChange != nil {
		w.onChange(change)
	}
}
