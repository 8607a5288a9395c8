// internal/status/snapshot.go
package status

import (
	"math"
	"time"

	"github.com/tamzrod/picapture/internal/health"
)

// Snapshot represents exactly what the writer is allowed to deliver.
// It contains no logic and no memory of the past beyond current state.
type Snapshot struct {
	Health              uint16
	LastErrorCode       uint16
	SecondsSinceSuccess uint16
	ConsecutiveFailures uint16
	TotalCaptures       uint32
	FailedCaptures      uint32
	CameraDisconnects   uint16
	SuccessRate         uint16 // percent x100
}

// HealthCode maps a health status onto its wire code.
func HealthCode(s health.Status) uint16 {
	switch s {
	case health.StatusHealthy:
		return HealthOK
	case health.StatusDegraded:
		return HealthDegraded
	case health.StatusFailed:
		return HealthFailed
	default:
		return HealthUnknown
	}
}

// FromMetrics builds a snapshot from a health code, the monitor's metrics
// and the last error code. Counters saturate instead of wrapping.
func FromMetrics(code uint16, m health.Metrics, lastErr uint16, now time.Time) Snapshot {
	since := uint16(math.MaxUint16)
	if !m.LastSuccess.IsZero() {
		since = sat16(int64(now.Sub(m.LastSuccess) / time.Second))
	}

	return Snapshot{
		Health:              code,
		LastErrorCode:       lastErr,
		SecondsSinceSuccess: since,
		ConsecutiveFailures: sat16(int64(m.ConsecutiveFailures)),
		TotalCaptures:       sat32(int64(m.TotalCaptures)),
		FailedCaptures:      sat32(int64(m.FailedCaptures)),
		CameraDisconnects:   sat16(int64(m.CameraDisconnects)),
		SuccessRate:         sat16(int64(math.Round(m.SuccessRate * 100))),
	}
}

func sat16(v int64) uint16 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint16:
		return math.MaxUint16
	}
	return uint16(v)
}

func sat32(v int64) uint32 {
	switch {
	case v < 0:
		return 0
	case v > math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(v)
}
