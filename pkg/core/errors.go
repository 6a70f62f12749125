package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of an exchange error.
type ErrorType int

// Error type constants categorize errors for proper handling upstream.
// The adapter itself never retries; classification exists so the host
// can decide.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeTimeout indicates the request exceeded its deadline.
	ErrorTypeTimeout
	// ErrorTypeRateLimit indicates the rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeAuthentication indicates missing or invalid credential
	// material, including an absent server public key.
	ErrorTypeAuthentication
	// ErrorTypeBadRequest indicates invalid request parameters.
	ErrorTypeBadRequest
	// ErrorTypeOrderNotFound indicates the referenced order does not exist.
	ErrorTypeOrderNotFound
	// ErrorTypeExchange indicates a non-success response envelope carrying
	// the exchange's own message.
	ErrorTypeExchange
	// ErrorTypeInsufficientFunds indicates the account lacks required balance.
	ErrorTypeInsufficientFunds
	// ErrorTypeInvalidOrder indicates the order violates a local or
	// exchange precondition (e.g., a limit order without a price).
	ErrorTypeInvalidOrder
	// ErrorTypePermissionDenied indicates the API key lacks permission.
	ErrorTypePermissionDenied
	// ErrorTypeInvalidNonce indicates a stale or reused request nonce.
	ErrorTypeInvalidNonce
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"TIMEOUT",
		"RATE_LIMIT",
		"AUTHENTICATION",
		"BAD_REQUEST",
		"ORDER_NOT_FOUND",
		"EXCHANGE",
		"INSUFFICIENT_FUNDS",
		"INVALID_ORDER",
		"PERMISSION_DENIED",
		"INVALID_NONCE",
	}[t]
}

// Sentinel errors for common local conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrMarketsNotLoaded is returned when a symbol lookup happens before
	// market discovery has run.
	ErrMarketsNotLoaded = errors.New("markets not loaded")
	// ErrNoCredentials is returned when no API credentials are configured.
	ErrNoCredentials = errors.New("no credentials configured")
)

// ExchangeError represents a structured error produced by the adapter,
// either locally (pre-flight) or from an exchange response envelope.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code, or the envelope code for
	// application-level failures. Zero for local pre-flight errors.
	StatusCode int `json:"status_code"`
	// Code is a stable machine-readable identifier.
	Code string `json:"code"`
	// Message is the human-readable description; for envelope failures
	// this carries the exchange's own msg verbatim.
	Message string `json:"message"`
	// Exchange identifies which exchange produced this error.
	Exchange string `json:"exchange"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
func (e *ExchangeError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s (%d/%s): %s",
			e.Exchange, e.Type, e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (%d): %s",
		e.Exchange, e.Type, e.StatusCode, e.Message)
}

// WithCode returns the ExchangeError with the specified error code set.
func (e *ExchangeError) WithCode(code ErrorCode) *ExchangeError {
	e.Code = string(code)
	return e
}

// NewExchangeError creates a new ExchangeError with the specified details.
// The timestamp is automatically set to the current time.
func NewExchangeError(exchange string, errorType ErrorType, statusCode int, message string) *ExchangeError {
	return &ExchangeError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Exchange:   exchange,
		Timestamp:  time.Now(),
	}
}

// IsAuthenticationError returns true if the error is an authentication
// failure: missing key/secret, absent or garbage server public key, or an
// encryption failure surfaced during signing.
func IsAuthenticationError(err error) bool {
	return hasType(err, ErrorTypeAuthentication)
}

// IsInvalidOrderError returns true if the error is a local or remote
// order precondition violation.
func IsInvalidOrderError(err error) bool {
	return hasType(err, ErrorTypeInvalidOrder)
}

// IsOrderNotFoundError returns true if the referenced order does not exist.
func IsOrderNotFoundError(err error) bool {
	return hasType(err, ErrorTypeOrderNotFound)
}

// IsInsufficientFundsError returns true if the account lacks required balance.
func IsInsufficientFundsError(err error) bool {
	return hasType(err, ErrorTypeInsufficientFunds)
}

// IsPermissionDeniedError returns true if the API key lacks permission.
func IsPermissionDeniedError(err error) bool {
	return hasType(err, ErrorTypePermissionDenied)
}

// IsExchangeError returns true for any non-success response envelope
// surfaced with the exchange's message.
func IsExchangeError(err error) bool {
	return hasType(err, ErrorTypeExchange)
}

func hasType(err error, t ErrorType) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return exErr.Type == t
	}
	return false
}
