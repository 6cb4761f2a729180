package validation

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge is matched by every *SizeError via errors.Is.
var ErrPayloadTooLarge = errors.New("payload too large")

// SizeError carries the configured limit and the measured size.
type SizeError struct {
	Limit int // bytes allowed
	Size  int // bytes measured
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("request body exceeded max size of %d bytes", e.Limit)
}

func (e *SizeError) Is(target error) bool { return target == ErrPayloadTooLarge }
