package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrOperationInProgress rejects a toggle on a problem that is already pending.
	ErrOperationInProgress = errors.New("operation in progress")
	// ErrUnknownProblem rejects a toggle on a problem outside the loaded topics.
	ErrUnknownProblem = errors.New("unknown problem")
	// ErrUpdateFailed reports that the remote update failed and was rolled back.
	ErrUpdateFailed = errors.New("update failed")
)

// UpdateFailedError carries the remote failure behind a rolled-back toggle.
type UpdateFailedError struct {
	ProblemID string
	Completed bool
	Err       error
}

func (e *UpdateFailedError) Error() string {
	return fmt.Sprintf("update %s to completed=%t failed: %v", e.ProblemID, e.Completed, e.Err)
}

// Unwrap exposes the remote error so errors.Is(err, sheet.ErrNetwork) works.
func (e *UpdateFailedError) Unwrap() error { return e.Err }

// Is matches ErrUpdateFailed.
func (e *UpdateFailedError) Is(target error) bool { return target == ErrUpdateFailed }
