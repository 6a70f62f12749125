package core

import "errors"

// ErrorCode represents a stable, machine-readable error identifier.
type ErrorCode string

// Error code constants define standardized identifiers for the adapter.
const (
	// ErrCodeNetwork indicates a network connectivity failure.
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"
	// ErrCodeTimeout indicates the request exceeded its deadline.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimit indicates the rate limit was exceeded.
	ErrCodeRateLimit ErrorCode = "RATE_LIMIT"
	// ErrCodeExchange indicates a non-success response envelope.
	ErrCodeExchange ErrorCode = "EXCHANGE_ERROR"
	// ErrCodeBadEnvelope indicates the response body did not match the
	// {code, data, time} / {code, msg} wire shape.
	ErrCodeBadEnvelope ErrorCode = "BAD_ENVELOPE"
	// ErrCodeInvalidOrder indicates an order precondition violation.
	ErrCodeInvalidOrder ErrorCode = "INVALID_ORDER"
	// ErrCodeOrderNotFound indicates the referenced order does not exist.
	ErrCodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"
	// ErrCodeInsufficientFunds indicates the account lacks required balance.
	ErrCodeInsufficientFunds ErrorCode = "INSUFFICIENT_FUNDS"
	// ErrCodeInvalidSymbol indicates the trading pair is not recognized.
	ErrCodeInvalidSymbol ErrorCode = "INVALID_SYMBOL"
	// ErrCodeMissingSymbol indicates a required symbol argument was absent.
	ErrCodeMissingSymbol ErrorCode = "MISSING_SYMBOL"

	// Credential errors surfaced before any network call.
	ErrCodeNoCredentials    ErrorCode = "NO_CREDENTIALS"
	ErrCodeNoServerKey      ErrorCode = "NO_SERVER_KEY"
	ErrCodeInvalidServerKey ErrorCode = "INVALID_SERVER_KEY"
	ErrCodeEncryptFailed    ErrorCode = "ENCRYPT_FAILED"

	// Configuration errors.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"

	// Client state errors.
	ErrCodeClientClosed ErrorCode = "CLIENT_CLOSED"

	// Unsupported operation.
	ErrCodeUnsupported ErrorCode = "UNSUPPORTED_METHOD"
)

// IsErrorCode checks if the error matches the specified error code.
func IsErrorCode(err error, code ErrorCode) bool {
	var exErr *ExchangeError
	if errors.As(err, &exErr) {
		return ErrorCode(exErr.Code) == code
	}
	return false
}
