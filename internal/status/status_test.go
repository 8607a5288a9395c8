// internal/status/status_test.go
package status

import (
	"math"
	"testing"
	"time"

	"github.com/tamzrod/picapture/internal/health"
)

func TestEncode_Layout(t *testing.T) {
	regs := Encode(Snapshot{
		Health:              HealthDegraded,
		LastErrorCode:       ErrorTimeout,
		SecondsSinceSuccess: 42,
		ConsecutiveFailures: 2,
		TotalCaptures:       0x0001_0002,
		FailedCaptures:      7,
		CameraDisconnects:   1,
		SuccessRate:         9950,
	})

	if len(regs) != SlotsPerDevice {
		t.Fatalf("block size = %d, want %d", len(regs), SlotsPerDevice)
	}
	if regs[SlotHealthCode] != HealthDegraded || regs[SlotLastErrorCode] != ErrorTimeout {
		t.Fatalf("health/error slots wrong: %v", regs[:2])
	}
	if regs[SlotTotalCapturesHi] != 1 || regs[SlotTotalCapturesLo] != 2 {
		t.Fatalf("total split wrong: hi=%d lo=%d", regs[SlotTotalCapturesHi], regs[SlotTotalCapturesLo])
	}
	if regs[SlotFailedCapturesLo] != 7 || regs[SlotSuccessRate] != 9950 {
		t.Fatalf("counter slots wrong: %v", regs)
	}
	for i := SlotReserved; i < SlotsPerDevice; i++ {
		if regs[i] != 0 {
			t.Fatalf("slot %d should be zero, got %d", i, regs[i])
		}
	}
}

func TestEncodeDeviceName(t *testing.T) {
	regs := EncodeDeviceName("CAM\x01")

	if regs[0] != uint16('C')<<8|uint16('A') {
		t.Fatalf("reg0 = %#x", regs[0])
	}
	if regs[1] != uint16('M')<<8|uint16('?') {
		t.Fatalf("non-printable not sanitized: %#x", regs[1])
	}
	if regs[2] != 0 {
		t.Fatalf("padding not zero: %#x", regs[2])
	}
}

func TestFromMetrics(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	snap := FromMetrics(HealthCode(health.StatusHealthy), health.Metrics{
		TotalCaptures:      10,
		FailedCaptures:     1,
		SuccessfulCaptures: 9,
		SuccessRate:        90,
		LastSuccess:        now.Add(-30 * time.Second),
	}, ErrorNone, now)

	if snap.Health != HealthOK {
		t.Fatalf("health = %d", snap.Health)
	}
	if snap.SecondsSinceSuccess != 30 {
		t.Fatalf("seconds since success = %d", snap.SecondsSinceSuccess)
	}
	if snap.SuccessRate != 9000 {
		t.Fatalf("success rate = %d", snap.SuccessRate)
	}
}

func TestFromMetrics_Saturates(t *testing.T) {
	now := time.Now()

	snap := FromMetrics(HealthFailed, health.Metrics{
		ConsecutiveFailures: 100000,
	}, ErrorCapture, now)

	if snap.SecondsSinceSuccess != math.MaxUint16 {
		t.Fatalf("never-succeeded should saturate, got %d", snap.SecondsSinceSuccess)
	}
	if snap.ConsecutiveFailures != math.MaxUint16 {
		t.Fatalf("consecutive failures should saturate, got %d", snap.ConsecutiveFailures)
	}
}

func TestHealthCode(t *testing.T) {
	cases := map[health.Status]uint16{
		health.StatusHealthy:  HealthOK,
		health.StatusDegraded: HealthDegraded,
		health.StatusFailed:   HealthFailed,
		"":                    HealthUnknown,
	}
	for in, want := range cases {
		if got := HealthCode(in); got != want {
			t.Errorf("HealthCode(%q) = %d, want %d", in, got, want)
		}
	}
}
