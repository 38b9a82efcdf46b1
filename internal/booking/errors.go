package booking

import "errors"

var (
	// ErrInvalidState is returned when an operation is called outside
	// the flow state that allows it.
	ErrInvalidState = errors.New("booking: invalid state for operation")

	// ErrNoDates is returned when Submit is called without any dates.
	ErrNoDates = errors.New("booking: no dates selected")

	// ErrUnavailable is returned when a selected date is a weekend or
	// already booked.
	ErrUnavailable = errors.New("booking: date not available")
)
