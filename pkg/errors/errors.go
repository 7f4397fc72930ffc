package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch represents network and non-2xx fetch failures
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeRateLimit represents rate limiting by the source site
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeExtractionEmpty marks an extraction pass that found zero candidates.
	// This is a valid outcome, not a failure, but it is surfaced distinctly in logs.
	ErrorTypeExtractionEmpty ErrorType = "extraction_empty"
	// ErrorTypePersist represents snapshot storage write failures
	ErrorTypePersist ErrorType = "persist"
	// ErrorTypeNotify represents notification transport failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// MonitorError represents a monitoring-specific error
type MonitorError struct {
	Type    ErrorType
	Target  string
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *MonitorError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *MonitorError) Unwrap() error {
	return e.Err
}

// IsTargetLocal returns true when the error only affects one target and the
// run should continue with the remaining targets.
func (e *MonitorError) IsTargetLocal() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeRateLimit, ErrorTypeExtractionEmpty:
		return true
	default:
		return false
	}
}

// New creates a new MonitorError
func New(errType ErrorType, target, message string, err error) *MonitorError {
	return &MonitorError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewFetch creates a new fetch error
func NewFetch(target, message string, err error) *MonitorError {
	return New(ErrorTypeFetch, target, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, duration time.Duration) *MonitorError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, target, message, nil)
}

// NewExtractionEmpty creates a new empty-extraction marker
func NewExtractionEmpty(target string) *MonitorError {
	return New(ErrorTypeExtractionEmpty, target, "no listings extracted", nil)
}

// NewPersist creates a new persistence error
func NewPersist(message string, err error) *MonitorError {
	return New(ErrorTypePersist, "", message, err)
}

// NewNotify creates a new notification error
func NewNotify(message string, err error) *MonitorError {
	return New(ErrorTypeNotify, "", message, err)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *MonitorError {
	return New(ErrorTypeConfiguration, "", message, err)
}
