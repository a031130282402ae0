package errors

import (
	"fmt"
	"time"
)

// TimeoutError indicates a send did not complete within its deadline.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %s: %s", e.Duration, e.Operation)
}

// PayloadTooLargeError indicates a frame exceeded the datagram limit.
// Resending the same bytes can never succeed.
type PayloadTooLargeError struct {
	Size int
	Max  int
}

// Error implements the error interface.
func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload of %d bytes exceeds maximum %d", e.Size, e.Max)
}
