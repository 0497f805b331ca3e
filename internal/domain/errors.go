package domain

import "errors"

// Errors from spec.md §7's taxonomy. Handlers recover from all of these
// locally; none of them may propagate out of the inbound loop.
var (
	ErrMalformedFrame        = errors.New("malformed frame")
	ErrUnknownMessage        = errors.New("unknown message")
	ErrRepositoryUnavailable = errors.New("repository unavailable")
	ErrPublisherBackpressure = errors.New("publisher backpressure")
	ErrLotOutOfRange         = errors.New("lot out of range")
	ErrFilterRejected        = errors.New("filter rejected")
	ErrUnknownMaster         = errors.New("unknown master")
	ErrStatusMismatch        = errors.New("status mismatch: connected with allow_new_orders=false")
)
