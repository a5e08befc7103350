// ABOUTME: Sentinel errors shared across the matcher, provider, and analytics layers
// ABOUTME: Callers classify failures with errors.Is against these values
package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingField is returned when a catalog item lacks a mandatory field (title or id)
	ErrMissingField = errors.New("missing required field")

	// ErrConfiguration is returned for caller errors such as bad weights or k <= 0
	ErrConfiguration = errors.New("invalid configuration")

	// ErrTransientProvider marks retryable embedding provider failures (429, 5xx, network)
	ErrTransientProvider = errors.New("transient embedding provider error")

	// ErrPermanentProvider marks embedding provider failures that must not be retried
	ErrPermanentProvider = errors.New("permanent embedding provider error")

	// ErrNotFound is returned when a report entry or stored report does not exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfidence is returned when a confidence string breaks the NN.NN% format
	ErrInvalidConfidence = errors.New("invalid confidence format")
)

// ProviderError describes a failed embedding provider call
type ProviderError struct {
	StatusCode int
	// RetryAfter is the provider's suggested delay, zero when none was given
	RetryAfter  time.Duration
	RateLimited bool
	Transient   bool
	Body        string
	Err         error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	msg := fmt.Sprintf("%s provider error (status %d)", kind, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrTransientProvider or ErrPermanentProvider
func (e *ProviderError) Is(target error) bool {
	switch target {
	case ErrTransientProvider:
		return e.Transient
	case ErrPermanentProvider:
		return !e.Transient
	}
	return false
}
