package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		want      string
	}{
		{"unknown", ErrorTypeUnknown, "UNKNOWN"},
		{"network", ErrorTypeNetwork, "NETWORK"},
		{"timeout", ErrorTypeTimeout, "TIMEOUT"},
		{"rate_limit", ErrorTypeRateLimit, "RATE_LIMIT"},
		{"authentication", ErrorTypeAuthentication, "AUTHENTICATION"},
		{"bad_request", ErrorTypeBadRequest, "BAD_REQUEST"},
		{"order_not_found", ErrorTypeOrderNotFound, "ORDER_NOT_FOUND"},
		{"exchange", ErrorTypeExchange, "EXCHANGE"},
		{"insufficient_funds", ErrorTypeInsufficientFunds, "INSUFFICIENT_FUNDS"},
		{"invalid_order", ErrorTypeInvalidOrder, "INVALID_ORDER"},
		{"permission_denied", ErrorTypePermissionDenied, "PERMISSION_DENIED"},
		{"invalid_nonce", ErrorTypeInvalidNonce, "INVALID_NONCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.errorType.String())
		})
	}
}

func TestExchangeError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExchangeError
		want string
	}{
		{
			name: "without_code",
			err: &ExchangeError{
				Exchange:   "bitasiaex",
				Type:       ErrorTypeExchange,
				StatusCode: 500,
				Message:    "system busy",
			},
			want: "[bitasiaex] EXCHANGE (500): system busy",
		},
		{
			name: "with_code",
			err: &ExchangeError{
				Exchange:   "bitasiaex",
				Type:       ErrorTypeInvalidOrder,
				StatusCode: 0,
				Code:       "INVALID_ORDER",
				Message:    "createOrder requires a price argument for a limit order",
			},
			want: "[bitasiaex] INVALID_ORDER (0/INVALID_ORDER): createOrder requires a price argument for a limit order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestNewExchangeError(t *testing.T) {
	err := NewExchangeError("bitasiaex", ErrorTypeNetwork, 503, "service unavailable")

	assert.NotNil(t, err)
	assert.Equal(t, "bitasiaex", err.Exchange)
	assert.Equal(t, ErrorTypeNetwork, err.Type)
	assert.Equal(t, 503, err.StatusCode)
	assert.Equal(t, "service unavailable", err.Message)
	assert.False(t, err.Timestamp.IsZero())
}

func TestExchangeError_WithCode(t *testing.T) {
	err := NewExchangeError("bitasiaex", ErrorTypeAuthentication, 0, "apiKey and secret are required").
		WithCode(ErrCodeNoCredentials)

	assert.Equal(t, "NO_CREDENTIALS", err.Code)
	assert.True(t, IsErrorCode(err, ErrCodeNoCredentials))
	assert.False(t, IsErrorCode(err, ErrCodeNoServerKey))
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		matcher func(error) bool
		want    bool
	}{
		{"authentication_match", NewExchangeError("bitasiaex", ErrorTypeAuthentication, 0, "bad key"), IsAuthenticationError, true},
		{"authentication_miss", NewExchangeError("bitasiaex", ErrorTypeNetwork, 0, "down"), IsAuthenticationError, false},
		{"invalid_order_match", NewExchangeError("bitasiaex", ErrorTypeInvalidOrder, 0, "no price"), IsInvalidOrderError, true},
		{"order_not_found_match", NewExchangeError("bitasiaex", ErrorTypeOrderNotFound, 404, "gone"), IsOrderNotFoundError, true},
		{"insufficient_funds_match", NewExchangeError("bitasiaex", ErrorTypeInsufficientFunds, 0, "broke"), IsInsufficientFundsError, true},
		{"permission_denied_match", NewExchangeError("bitasiaex", ErrorTypePermissionDenied, 0, "denied"), IsPermissionDeniedError, true},
		{"exchange_match", NewExchangeError("bitasiaex", ErrorTypeExchange, 500, "system busy"), IsExchangeError, true},
		{"plain_error", fmt.Errorf("plain"), IsExchangeError, false},
		{"nil_error", nil, IsAuthenticationError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher(tt.err))
		})
	}
}

func TestErrorClassifiers_Wrapped(t *testing.T) {
	inner := NewExchangeError("bitasiaex", ErrorTypeInsufficientFunds, 1001, "insufficient balance").
		WithCode(ErrCodeInsufficientFunds)
	wrapped := fmt.Errorf("create order: %w", inner)

	assert.True(t, IsInsufficientFundsError(wrapped))
	assert.True(t, IsErrorCode(wrapped, ErrCodeInsufficientFunds))
}
