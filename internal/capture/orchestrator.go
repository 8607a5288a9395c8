// internal/capture/orchestrator.go
package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/picapture/internal/artifact"
	"github.com/tamzrod/picapture/internal/health"
	"github.com/tamzrod/picapture/internal/logging"
	"github.com/tamzrod/picapture/internal/status"
)

// ---- COLLABORATORS ----

// Camera is the capture device contract.
type Camera interface {
	health.Probe
	Capture(ctx context.Context, dest string, timeout time.Duration) error
}

// ArtifactStore is the subset of the artifact store the loop drives.
type ArtifactStore interface {
	EnsureDir() error
	GenerateFilename(ext string) string
	Verify(path string) bool
	Sweep(maxAgeDays int) int
	Stats() (artifact.Stats, error)
}

// StatusWriter receives a status snapshot after health checks and cycles.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// ---- CONFIG ----

// Config is the minimal runtime config the orchestrator needs.
type Config struct {
	Interval       time.Duration
	RetryDelay     time.Duration
	CaptureTimeout time.Duration
	WarmupDelay    time.Duration
	MaxRetries     int
	MaxAgeDays     int
	Extension      string
	// SweepEvery runs retention and the metrics report every N cycles.
	SweepEvery int
}

const defaultSweepEvery = 10

// ---- PHASE ----

// Phase is the run lifecycle position.
type Phase int32

const (
	PhaseStopped Phase = iota
	PhaseStarting
	PhaseRunning
	PhaseStopping
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// ---- ORCHESTRATOR ----

// Orchestrator runs the capture schedule.
//
// One goroutine runs the loop and owns the health monitor and every
// other piece of mutable state. Stop and RequestHealthCheck are the only
// methods safe to call from other goroutines.
type Orchestrator struct {
	cfg     Config
	cam     Camera
	store   ArtifactStore
	monitor *health.Monitor
	events  *logging.Events
	logger  *slog.Logger
	status  StatusWriter
	runID   string

	phase          atomic.Int32
	running        atomic.Bool
	started        atomic.Bool
	checkRequested atomic.Bool
	stopCh         chan struct{}
	stopOnce       sync.Once
	finishOnce     sync.Once

	// sleep blocks for d and reports false if interrupted by a stop.
	sleep func(ctx context.Context, d time.Duration) bool
	now   func() time.Time

	healthCode  uint16
	lastErrCode uint16
}

// New creates an orchestrator with immutable config.
func New(cfg Config, cam Camera, store ArtifactStore, monitor *health.Monitor, events *logging.Events) (*Orchestrator, error) {
	if cam == nil || store == nil || monitor == nil {
		return nil, errors.New("capture: camera, store and monitor required")
	}
	if cfg.MaxRetries < 1 {
		return nil, errors.New("capture: max retries must be >= 1")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("capture: interval must be > 0")
	}
	if cfg.SweepEvery <= 0 {
		cfg.SweepEvery = defaultSweepEvery
	}
	if events == nil {
		events = logging.NewEvents(nil)
	}

	o := &Orchestrator{
		cfg:        cfg,
		cam:        cam,
		store:      store,
		monitor:    monitor,
		events:     events,
		logger:     events.Logger().With(slog.String("component", "capture")),
		runID:      uuid.NewString(),
		stopCh:     make(chan struct{}),
		now:        time.Now,
		healthCode: status.HealthUnknown,
	}
	o.sleep = o.wait
	return o, nil
}

// SetStatusWriter attaches an optional status block writer. Call it
// before the loop starts.
func (o *Orchestrator) SetStatusWriter(w StatusWriter) { o.status = w }

// RunID identifies this process run in start/stop events.
func (o *Orchestrator) RunID() string { return o.runID }

// Phase returns the current lifecycle phase.
func (o *Orchestrator) Phase() Phase { return Phase(o.phase.Load()) }

// Running reports RunState.
func (o *Orchestrator) Running() bool { return o.running.Load() }

// Stop requests shutdown. It never blocks and is safe to call from a
// signal handler goroutine; repeated calls are no-ops.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		o.running.Store(false)
		close(o.stopCh)
	})
}

// RequestHealthCheck asks the loop to run a health check before its next
// cycle regardless of the check interval.
func (o *Orchestrator) RequestHealthCheck() { o.checkRequested.Store(true) }

// ------------------------------------------------------------
// Single logical capture
// ------------------------------------------------------------

// CaptureWithRetry performs one logical capture cycle of up to
// MaxRetries attempts into a single destination path. The health
// monitor records exactly one outcome per call.
func (o *Orchestrator) CaptureWithRetry(ctx context.Context) bool {
	path := o.store.GenerateFilename(o.cfg.Extension)

	var (
		lastErr   error
		succeeded bool
		attempt   int
	)

	for attempt = 1; attempt <= o.cfg.MaxRetries; attempt++ {
		err := o.attempt(ctx, path)
		if err == nil {
			succeeded = true
			o.events.CaptureSuccess(path, attempt)
			break
		}

		lastErr = err
		o.events.CaptureFailure(err, attempt, o.cfg.MaxRetries)

		if attempt == o.cfg.MaxRetries {
			break
		}
		if !o.sleep(ctx, o.cfg.RetryDelay) {
			lastErr = fmt.Errorf("%w after attempt %d: %w", ErrInterrupted, attempt, err)
			break
		}
	}

	outcome := health.Outcome{
		At:        o.now(),
		Succeeded: succeeded,
		Attempt:   attempt,
	}
	if !succeeded {
		outcome.Err = lastErr.Error()
	}
	o.monitor.RecordOutcome(outcome)

	if succeeded {
		o.lastErrCode = status.ErrorNone
		if o.healthCode != status.HealthFailed {
			o.healthCode = status.HealthOK
		}
	} else {
		o.lastErrCode = errorCode(lastErr)
		if o.healthCode != status.HealthFailed {
			o.healthCode = status.HealthDegraded
		}
	}
	o.publishStatus()

	return succeeded
}

// attempt runs the device once and verifies its output. The device call
// is detached from ctx cancellation so a stop never aborts a capture in
// flight; the per-attempt timeout still bounds it.
func (o *Orchestrator) attempt(ctx context.Context, path string) error {
	if err := o.cam.Capture(context.WithoutCancel(ctx), path, o.cfg.CaptureTimeout); err != nil {
		return err
	}
	if !o.store.Verify(path) {
		return ErrVerification
	}
	return nil
}

// ------------------------------------------------------------
// Continuous loop
// ------------------------------------------------------------

// RunContinuous runs the schedule until Stop, ctx cancellation, a
// failed health check, or a recovered panic. It returns nil on a
// requested shutdown.
func (o *Orchestrator) RunContinuous(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	o.running.Store(true)
	select {
	case <-o.stopCh:
		o.running.Store(false)
	default:
	}

	o.setPhase(PhaseStarting)
	o.events.SystemStart(o.runID)
	defer o.finish()

	snap := o.checkHealth()
	if snap.Status == health.StatusFailed {
		logging.Critical(o.logger, "initial health check failed, not starting",
			slog.String("reason", snap.Reason))
		return fmt.Errorf("%w: %s", ErrStartupUnhealthy, snap.Reason)
	}

	if o.cfg.WarmupDelay > 0 {
		o.logger.Info("camera warm-up", slog.Duration("delay", o.cfg.WarmupDelay))
		if !o.sleep(ctx, o.cfg.WarmupDelay) {
			return nil
		}
	}

	o.setPhase(PhaseRunning)
	o.logger.Info("capture loop running",
		slog.Duration("interval", o.cfg.Interval),
		slog.Int("max_retries", o.cfg.MaxRetries))

	return o.loop(ctx)
}

// loop is the Running phase. Any panic in the body is recovered here
// and turned into a graceful stop.
func (o *Orchestrator) loop(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Critical(o.logger, "unexpected error in capture loop",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("%w: %v", ErrLoopPanic, r)
		}
	}()

	for o.active(ctx) {
		if o.checkRequested.Swap(false) || o.monitor.ShouldRunCheck(o.now()) {
			snap := o.checkHealth()
			if snap.Status == health.StatusFailed {
				logging.Critical(o.logger, "health check failed, stopping capture",
					slog.String("reason", snap.Reason))
				return fmt.Errorf("%w: %s", ErrHealthFailed, snap.Reason)
			}
		}

		if !o.active(ctx) {
			break
		}

		o.CaptureWithRetry(ctx)

		if o.monitor.TotalCaptures()%o.cfg.SweepEvery == 0 {
			o.maintenance()
		}

		if !o.active(ctx) {
			break
		}
		if !o.sleep(ctx, o.cfg.Interval) {
			break
		}
	}

	return nil
}

// RunSingle performs one health-gated capture cycle.
func (o *Orchestrator) RunSingle(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	snap := o.checkHealth()
	if snap.Status == health.StatusFailed {
		return fmt.Errorf("%w: %s", ErrStartupUnhealthy, snap.Reason)
	}

	if o.cfg.WarmupDelay > 0 && !o.sleep(ctx, o.cfg.WarmupDelay) {
		return ErrInterrupted
	}

	ok := o.CaptureWithRetry(ctx)
	o.logger.Info("capture metrics", slog.Any("metrics", o.monitor.Metrics()))

	if !ok {
		return fmt.Errorf("%w: %s", ErrCaptureFailed, o.monitor.Metrics().LastError)
	}
	return nil
}

// ValidateSystem checks the device and capture directory and performs
// one test capture into a temporary file that is removed afterwards.
func (o *Orchestrator) ValidateSystem(ctx context.Context) error {
	if !o.cam.Present() {
		return errors.New("validate: " + health.ReasonDeviceNotFound)
	}
	if !o.cam.HasReadPermission() {
		return errors.New("validate: " + health.ReasonInsufficientPermissions)
	}
	if err := o.store.EnsureDir(); err != nil {
		return fmt.Errorf("validate: capture dir: %w", err)
	}

	f, err := os.CreateTemp("", "picapture-test-*."+o.cfg.Extension)
	if err != nil {
		return fmt.Errorf("validate: temp file: %w", err)
	}
	path := f.Name()
	_ = f.Close()
	_ = os.Remove(path)
	defer os.Remove(path) //nolint:errcheck

	if err := o.cam.Capture(ctx, path, o.cfg.CaptureTimeout); err != nil {
		return fmt.Errorf("validate: test capture: %w", err)
	}
	if !o.store.Verify(path) {
		return fmt.Errorf("validate: test capture: %w", ErrVerification)
	}

	o.logger.Info("system validation passed")
	return nil
}

// ---- internals ----

func (o *Orchestrator) active(ctx context.Context) bool {
	return o.running.Load() && ctx.Err() == nil
}

// wait is the interruptible suspension point: it returns early on Stop
// or ctx cancellation.
func (o *Orchestrator) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return o.active(ctx)
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-o.stopCh:
		return false
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) checkHealth() health.Snapshot {
	snap := o.monitor.CheckHealth()
	o.events.HealthCheck(string(snap.Status), snap.ConsecutiveFailures, snap.Reason)

	o.healthCode = status.HealthCode(snap.Status)
	switch snap.Reason {
	case health.ReasonDeviceNotFound:
		o.lastErrCode = status.ErrorDeviceMissing
	case health.ReasonInsufficientPermissions:
		o.lastErrCode = status.ErrorPermission
	}
	o.publishStatus()

	return snap
}

// maintenance runs the retention sweep and the periodic metrics report.
func (o *Orchestrator) maintenance() {
	if o.cfg.MaxAgeDays > 0 {
		if n := o.store.Sweep(o.cfg.MaxAgeDays); n > 0 {
			o.logger.Info("retention sweep", slog.Int("deleted", n))
		}
	}
	o.logger.Info("capture metrics", slog.Any("metrics", o.monitor.Metrics()))
}

// finish performs the Stopping transition exactly once.
func (o *Orchestrator) finish() {
	o.finishOnce.Do(func() {
		o.setPhase(PhaseStopping)
		o.running.Store(false)

		o.logger.Info("final metrics", slog.Any("metrics", o.monitor.Metrics()))
		if st, err := o.store.Stats(); err != nil {
			o.logger.Warn("artifact stats failed", slog.Any("error", err))
		} else {
			o.logger.Info("artifact statistics", slog.Any("stats", st))
		}

		o.healthCode = status.HealthStopped
		o.publishStatus()

		o.events.SystemStop(o.runID)
		o.setPhase(PhaseStopped)
	})
}

func (o *Orchestrator) publishStatus() {
	if o.status == nil {
		return
	}
	snap := status.FromMetrics(o.healthCode, o.monitor.Metrics(), o.lastErrCode, o.now())
	if err := o.status.WriteStatus(snap); err != nil {
		o.logger.Warn("status write failed", slog.Any("error", err))
	}
}

func (o *Orchestrator) setPhase(p Phase) {
	o.phase.Store(int32(p))
	o.logger.Debug("phase", slog.String("phase", p.String()))
}
