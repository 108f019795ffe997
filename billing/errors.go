package billing

import "errors"

var (
	ErrInsufficientData = errors.New("insufficient metering data")
	ErrInvalidOrdering  = errors.New("metering values out of order")
)
