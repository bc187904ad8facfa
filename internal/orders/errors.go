package orders

import "errors"

// Caller-correctable failures. Anything else coming out of the service is a
// storage failure and surfaces as-is.
var (
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrPrintNotFound     = errors.New("print not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("not enough quantity available")
	ErrMissingPhotosLink = errors.New("photos link is required")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotPending        = errors.New("order is not pending")
	ErrInvalidStatus     = errors.New("invalid status")
)
