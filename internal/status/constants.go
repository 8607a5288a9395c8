// internal/status/constants.go
package status

// Capture Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per camera.
const SlotsPerDevice = 20

// ---- LIVE SLOTS ----

// SlotHealthCode holds the capture health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the class of the last capture error.
const SlotLastErrorCode = 1

// SlotSecondsSinceSuccess holds seconds since the last good capture (saturating).
const SlotSecondsSinceSuccess = 2

// SlotConsecutiveFailures holds the trailing run of failed cycles (saturating).
const SlotConsecutiveFailures = 3

// SlotTotalCapturesHi/Lo hold the 32-bit total cycle count.
const SlotTotalCapturesHi = 4
const SlotTotalCapturesLo = 5

// SlotFailedCapturesHi/Lo hold the 32-bit failed cycle count.
const SlotFailedCapturesHi = 6
const SlotFailedCapturesLo = 7

// SlotCameraDisconnects holds the disconnect counter (saturating).
const SlotCameraDisconnects = 8

// SlotSuccessRate holds the success percentage x100 (0..10000).
const SlotSuccessRate = 9

// SlotLiveEnd is the last live slot (inclusive).
const SlotLiveEnd = SlotSuccessRate

// ---- RESERVED ----

// Slot 10 is reserved for future use.
const SlotReserved = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the boot state before the first health check.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy camera.
const HealthOK uint16 = 1

// HealthFailed represents a failed health check; capturing has stopped or will stop.
const HealthFailed uint16 = 2

// HealthDegraded represents recent failed cycles below the failure threshold.
const HealthDegraded uint16 = 3

// HealthStopped represents an orderly shutdown.
const HealthStopped uint16 = 4

// ---- ERROR CODES ----

const (
	ErrorNone          uint16 = 0
	ErrorCapture       uint16 = 1 // tool ran and failed
	ErrorVerification  uint16 = 2 // reported success, file missing or empty
	ErrorTimeout       uint16 = 3
	ErrorToolMissing   uint16 = 4
	ErrorDeviceMissing uint16 = 5
	ErrorPermission    uint16 = 6
	ErrorInterrupted   uint16 = 7 // shutdown during retries
)
