package distribucache

import (
	"fmt"
	"time"
)

// PopulateFuncError wraps a failure raised by the populate function
// itself, either a returned error or a recovered panic. Use errors.As to
// reach it and Unwrap to get the original cause.
type PopulateFuncError struct {
	Cause error
}

func (e *PopulateFuncError) Error() string {
	return "populate threw an error; cause: " + e.Cause.Error()
}

func (e *PopulateFuncError) Unwrap() error { return e.Cause }

// PopulateTimeoutError reports that the populate function did not settle
// within the configured timeout. The function is not cancelled; it may
// still finish and write the store afterwards.
type PopulateTimeoutError struct {
	Timeout time.Duration
}

func (e *PopulateTimeoutError) Error() string {
	return fmt.Sprintf("populate timed out after %v", e.Timeout)
}

// PopulateError re-tags any populate-path failure that happened during a
// lease-guarded refresh, naming the offending key. Unwrap reaches the
// underlying PopulateFuncError, PopulateTimeoutError, or store error.
type PopulateError struct {
	Key   string
	Cause error
}

func (e *PopulateError) Error() string {
	return fmt.Sprintf("failed to populate key %q; cause: %s", e.Key, e.Cause)
}

func (e *PopulateError) Unwrap() error { return e.Cause }
