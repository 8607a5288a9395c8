// internal/capture/errors.go
package capture

import (
	"errors"

	"github.com/tamzrod/picapture/internal/camera"
	"github.com/tamzrod/picapture/internal/status"
)

var (
	// ErrVerification means the device reported success but the artifact
	// is missing or empty.
	ErrVerification = errors.New("file verification failed")
	// ErrInterrupted means a stop request cut a retry sequence short.
	ErrInterrupted = errors.New("capture interrupted by shutdown")
	// ErrCaptureFailed means every attempt of a single-shot run failed.
	ErrCaptureFailed = errors.New("capture failed")
	// ErrStartupUnhealthy means the initial health check failed and no
	// capture was attempted.
	ErrStartupUnhealthy = errors.New("initial health check failed")
	// ErrHealthFailed means a periodic health check failed and the loop stopped.
	ErrHealthFailed = errors.New("health check failed")
	// ErrLoopPanic means the loop body panicked and was stopped gracefully.
	ErrLoopPanic = errors.New("unexpected error in capture loop")
	// ErrAlreadyRunning means the orchestrator was started twice.
	ErrAlreadyRunning = errors.New("capture loop already started")
)

// errorCode maps a capture error onto its status block code.
func errorCode(err error) uint16 {
	switch {
	case err == nil:
		return status.ErrorNone
	case errors.Is(err, ErrInterrupted):
		return status.ErrorInterrupted
	case errors.Is(err, ErrVerification):
		return status.ErrorVerification
	case errors.Is(err, camera.ErrTimeout):
		return status.ErrorTimeout
	case errors.Is(err, camera.ErrToolNotFound):
		return status.ErrorToolMissing
	}
	return status.ErrorCapture
}
