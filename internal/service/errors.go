package service

import "errors"

var (
	// ErrNotFound marks a task, habit or note that does not exist for the
	// requesting user. Rows owned by other users look exactly the same.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks a request rejected by construction-time
	// validation (empty title, bad kind payload, out-of-range values).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidRepeatSpec marks a recurrence specification that cannot
	// produce occurrences: unknown frequency, non-positive interval, or a
	// weekly spec without days of week.
	ErrInvalidRepeatSpec = errors.New("invalid repeat spec")

	// ErrConcurrentModification is surfaced when a habit toggle loses an
	// optimistic-concurrency race. The operation is safe to retry.
	ErrConcurrentModification = errors.New("concurrent modification")
)
