// internal/status/encode.go
package status

// Encode converts a Snapshot into a full status block.
// Layout is protocol-locked. Device name slots are left zero; the writer
// owns the name.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsSinceSuccess] = s.SecondsSinceSuccess
	regs[SlotConsecutiveFailures] = s.ConsecutiveFailures
	regs[SlotTotalCapturesHi] = uint16(s.TotalCaptures >> 16)
	regs[SlotTotalCapturesLo] = uint16(s.TotalCaptures)
	regs[SlotFailedCapturesHi] = uint16(s.FailedCaptures >> 16)
	regs[SlotFailedCapturesLo] = uint16(s.FailedCaptures)
	regs[SlotCameraDisconnects] = s.CameraDisconnects
	regs[SlotSuccessRate] = s.SuccessRate

	return regs
}

// EncodeDeviceName packs up to 16 ASCII characters into 8 registers.
// Each register stores two ASCII bytes in big-endian order.
func EncodeDeviceName(name string) []uint16 {
	out := make([]uint16, SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > DeviceNameMaxChars {
		b = b[:DeviceNameMaxChars]
	}

	// sanitize to printable ASCII
	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < DeviceNameMaxChars; i += 2 {
		var hi, lo byte
		if i < len(b) {
			hi = b[i]
		}
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
