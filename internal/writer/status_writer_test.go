// internal/writer/status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/picapture/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   bool
}

func (f *fakeEndpointClient) WriteRegisters(unitID uint8, addr uint16, regs []uint16) error {
	if f.fail {
		return errors.New("connection reset")
	}
	f.writes = append(f.writes, writeCall{
		unitID: unitID,
		addr:   addr,
		regs:   append([]uint16(nil), regs...),
	})
	return nil
}

func (f *fakeEndpointClient) last() writeCall { return f.writes[len(f.writes)-1] }

func testPlan() StatusPlan {
	return StatusPlan{
		Endpoint:   "status-endpoint",
		UnitID:     1,
		BaseSlot:   2,
		DeviceName: "CAM-01",
	}
}

// ---- tests ----

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	first := cli.last()
	if len(first.regs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(first.regs))
	}
	if first.addr != 2*status.SlotsPerDevice {
		t.Fatalf("unexpected base addr: got=%d want=%d", first.addr, 2*status.SlotsPerDevice)
	}

	expectedNameRegs := status.EncodeDeviceName("CAM-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if first.regs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, first.regs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthDegraded, ConsecutiveFailures: 1}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != 3 {
		t.Fatalf("expected 2 incremental writes, got %d", len(cli.writes)-1)
	}
	for _, w := range cli.writes[1:] {
		if len(w.regs) != 1 {
			t.Fatalf("incremental write touched %d registers", len(w.regs))
		}
	}
}

func TestUnchangedSnapshotWritesNothing(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)
	snap := status.Snapshot{Health: status.HealthOK, TotalCaptures: 5}

	if err := sw.WriteStatus(snap); err != nil {
		t.Fatal(err)
	}
	if err := sw.WriteStatus(snap); err != nil {
		t.Fatal(err)
	}
	if len(cli.writes) != 1 {
		t.Fatalf("expected only the full assert, got %d writes", len(cli.writes))
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatal(err)
	}

	cli.fail = true
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthFailed}); err == nil {
		t.Fatalf("expected error, got nil")
	}

	cli.fail = false
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthFailed}); err != nil {
		t.Fatal(err)
	}
	if got := len(cli.last().regs); got != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", got)
	}
}

func TestCounterSplitWrittenAsTwoSlots(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := NewStatusWriter(testPlan(), cli)

	if err := sw.WriteStatus(status.Snapshot{TotalCaptures: 0xFFFF}); err != nil {
		t.Fatal(err)
	}
	if err := sw.WriteStatus(status.Snapshot{TotalCaptures: 0x10000}); err != nil {
		t.Fatal(err)
	}

	base := uint16(2 * status.SlotsPerDevice)
	got := map[uint16]uint16{}
	for _, w := range cli.writes[1:] {
		got[w.addr] = w.regs[0]
	}
	if got[base+status.SlotTotalCapturesHi] != 1 || got[base+status.SlotTotalCapturesLo] != 0 {
		t.Fatalf("unexpected incremental writes: %v", got)
	}
}

func TestMissingClient(t *testing.T) {
	sw := NewStatusWriter(testPlan(), nil)
	if err := sw.WriteStatus(status.Snapshot{}); err == nil {
		t.Fatalf("expected error, got nil")
	}
}
