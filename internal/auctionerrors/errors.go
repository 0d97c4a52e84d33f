package auctionerrors

import (
	"errors"
	"fmt"
)

// Store-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Business logic errors
var (
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrInvalidAmount  = errors.New("invalid bid amount")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrInvalidSession = errors.New("invalid session")
)

// BidTooLowError carries the minimum acceptable amount so callers can phrase
// the rejection without re-reading auction state. Matches ErrBidTooLow via
// errors.Is.
type BidTooLowError struct {
	Minimum float64
}

func (e *BidTooLowError) Error() string {
	return fmt.Sprintf("%v: minimum acceptable bid is %.2f", ErrBidTooLow, e.Minimum)
}

func (e *BidTooLowError) Unwrap() error {
	return ErrBidTooLow
}
