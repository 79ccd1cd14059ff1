package biddingerrors

import "errors"

// Validation errors
var (
	ErrInvalidAmount  = errors.New("invalid bid amount")
	ErrInvalidBid     = errors.New("invalid bid")
	ErrInvalidListing = errors.New("invalid listing")
)

// Repository-level errors
var (
	ErrListingNotFound = errors.New("listing not found")
	ErrPersistence     = errors.New("record store unavailable")
	ErrMalformedBids   = errors.New("malformed bid data")
)

// business logic errors
var (
	ErrBidTooLow    = errors.New("bid amount too low")
	ErrListingEnded = errors.New("auction has ended")
	// ErrStaleListing means the listing changed between read and conditional write.
	ErrStaleListing = errors.New("listing modified concurrently")
)
