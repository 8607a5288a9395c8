// internal/health/monitor.go
package health

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tamzrod/picapture/internal/logging"
)

// Config is the minimal runtime config the monitor needs.
type Config struct {
	CheckInterval          time.Duration
	MaxConsecutiveFailures int
	AlertOnDisconnect      bool
}

// Monitor keeps rolling capture counters and derives health from them.
//
// Status is not stored: CheckHealth recomputes it from the counters and
// the device probes on every call. Monitor is owned by the capture loop
// and is not safe for concurrent use.
type Monitor struct {
	cfg    Config
	probe  Probe
	events *logging.Events
	now    func() time.Time

	startedAt time.Time

	totalCaptures       int
	successfulCaptures  int
	failedCaptures      int
	consecutiveFailures int
	cameraDisconnects   int
	lastSuccessAt       time.Time
	lastFailureAt       time.Time
	lastCheckAt         time.Time
	lastError           string
}

// NewMonitor creates a monitor. Uptime is measured from this call.
func NewMonitor(cfg Config, probe Probe, events *logging.Events) *Monitor {
	if cfg.MaxConsecutiveFailures < 1 {
		cfg.MaxConsecutiveFailures = 1
	}
	if events == nil {
		events = logging.NewEvents(nil)
	}
	m := &Monitor{
		cfg:    cfg,
		probe:  probe,
		events: events,
		now:    time.Now,
	}
	m.startedAt = m.now()
	return m
}

// RecordAttempt folds one logical capture cycle into the counters.
// Call it exactly once per cycle, never once per retry.
func (m *Monitor) RecordAttempt(succeeded bool) {
	m.totalCaptures++

	if succeeded {
		m.successfulCaptures++
		m.consecutiveFailures = 0
		m.lastSuccessAt = m.now()
		return
	}

	m.failedCaptures++
	m.consecutiveFailures++
	m.lastFailureAt = m.now()
}

// RecordOutcome records o and keeps its error for reporting.
func (m *Monitor) RecordOutcome(o Outcome) {
	if !o.Succeeded {
		m.lastError = o.Err
	}
	m.RecordAttempt(o.Succeeded)
}

// CheckHealth probes the device and judges the counters.
// Device absence and permission problems dominate the failure count.
func (m *Monitor) CheckHealth() Snapshot {
	m.lastCheckAt = m.now()

	if !m.probe.Present() {
		m.cameraDisconnects++
		if m.cfg.AlertOnDisconnect {
			m.events.CameraDisconnect(deviceName(m.probe))
		}
		return Snapshot{
			Status:              StatusFailed,
			ConsecutiveFailures: m.consecutiveFailures,
			Reason:              ReasonDeviceNotFound,
		}
	}

	if !m.probe.HasReadPermission() {
		return Snapshot{
			Status:              StatusFailed,
			ConsecutiveFailures: m.consecutiveFailures,
			Reason:              ReasonInsufficientPermissions,
		}
	}

	if m.consecutiveFailures >= m.cfg.MaxConsecutiveFailures {
		return Snapshot{
			Status:              StatusFailed,
			ConsecutiveFailures: m.consecutiveFailures,
			Reason:              fmt.Sprintf("%d consecutive failures", m.consecutiveFailures),
		}
	}

	if m.consecutiveFailures > 0 {
		return Snapshot{
			Status:              StatusDegraded,
			ConsecutiveFailures: m.consecutiveFailures,
			Reason:              fmt.Sprintf("%d of %d allowed consecutive failures", m.consecutiveFailures, m.cfg.MaxConsecutiveFailures),
		}
	}

	return Snapshot{Status: StatusHealthy}
}

// ShouldRunCheck is a cooperative polling gate: true if no check has run
// yet or the check interval has elapsed since the last one.
func (m *Monitor) ShouldRunCheck(now time.Time) bool {
	if m.lastCheckAt.IsZero() {
		return true
	}
	return now.Sub(m.lastCheckAt) >= m.cfg.CheckInterval
}

// IsOperational runs a check and reports whether capturing may continue.
func (m *Monitor) IsOperational() bool {
	return m.CheckHealth().Status != StatusFailed
}

// TotalCaptures returns the number of recorded logical cycles.
func (m *Monitor) TotalCaptures() int { return m.totalCaptures }

// ConsecutiveFailures returns the trailing run of failed cycles.
func (m *Monitor) ConsecutiveFailures() int { return m.consecutiveFailures }

// SuccessRate returns the success percentage rounded to two decimals.
func (m *Monitor) SuccessRate() float64 {
	if m.totalCaptures == 0 {
		return 0
	}
	rate := float64(m.successfulCaptures) / float64(m.totalCaptures) * 100
	return math.Round(rate*100) / 100
}

// Uptime is the time since the monitor was created or last reset.
func (m *Monitor) Uptime() time.Duration {
	return m.now().Sub(m.startedAt)
}

// Metrics returns a read-only snapshot of the counters.
func (m *Monitor) Metrics() Metrics {
	return Metrics{
		Uptime:              m.Uptime(),
		TotalCaptures:       m.totalCaptures,
		SuccessfulCaptures:  m.successfulCaptures,
		FailedCaptures:      m.failedCaptures,
		SuccessRate:         m.SuccessRate(),
		ConsecutiveFailures: m.consecutiveFailures,
		CameraDisconnects:   m.cameraDisconnects,
		LastSuccess:         m.lastSuccessAt,
		LastFailure:         m.lastFailureAt,
		LastCheck:           m.lastCheckAt,
		LastError:           m.lastError,
	}
}

// Reset clears all counters and restarts the uptime clock.
func (m *Monitor) Reset() {
	*m = Monitor{
		cfg:       m.cfg,
		probe:     m.probe,
		events:    m.events,
		now:       m.now,
		startedAt: m.now(),
	}
	m.events.Logger().Info("health metrics reset")
}

func deviceName(p Probe) string {
	if d, ok := p.(interface{ Device() string }); ok {
		return d.Device()
	}
	return ""
}

var _ slog.LogValuer = Metrics{}
