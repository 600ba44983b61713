package provider

import (
	"errors"
	"fmt"
)

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	// ErrNoOptions means the ticker has no listed option contracts
	ErrNoOptions = errors.New("no options listed")

	// ErrInvalidTicker means the provider does not know the symbol
	ErrInvalidTicker = errors.New("invalid ticker")
)

// Kind classifies a provider failure for retry policy
type Kind int

const (
	// KindTransient: network/timeout/rate-limit; retried with backoff
	KindTransient Kind = iota

	// KindPermanent: invalid symbol, no data; never retried
	KindPermanent
)

// Error wraps a provider failure with its retry classification
type Error struct {
	Kind   Kind
	Op     string
	Ticker string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s %s: %v", e.Op, e.Ticker, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable provider error
func Transient(op, ticker string, err error) *Error {
	return &Error{Kind: KindTransient, Op: op, Ticker: ticker, Err: err}
}

// Permanent wraps err as a non-retryable provider error
func Permanent(op, ticker string, err error) *Error {
	return &Error{Kind: KindPermanent, Op: op, Ticker: ticker, Err: err}
}

// IsTransient reports whether err is a retryable provider failure
func IsTransient(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindTransient
}

// IsPermanent reports whether err is a non-retryable provider failure
func IsPermanent(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindPermanent
}
