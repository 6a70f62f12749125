package core

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
)

// Credentials holds the authentication material for the exchange.
//
// BitAsiaEx does not HMAC-sign requests. Instead the caller obtains the
// exchange's current RSA public key out of band and encrypts the secret
// plus all call parameters into the request body; only the API key
// travels in cleartext as a routing hint. A Credentials value is treated
// as immutable once handed to a signer, so concurrent private calls
// never race on credential state.
type Credentials struct {
	// APIKey is the public API key identifier.
	APIKey string `json:"api_key"`
	// SecretKey is the private API key; it only ever travels inside the
	// encrypted envelope.
	SecretKey string `json:"secret_key"`
	// ServerPublicKey is the exchange-issued RSA public key in PEM form,
	// used solely to encrypt the private-request envelope.
	ServerPublicKey string `json:"server_public_key,omitempty"`
}

// Complete reports whether all material required for a private call is
// present.
func (c *Credentials) Complete() bool {
	return c != nil && c.APIKey != "" && c.SecretKey != "" && c.ServerPublicKey != ""
}

// Config contains all configuration options for an exchange session.
type Config struct {
	Exchange    string       `json:"exchange" validate:"required"`
	Sandbox     bool         `json:"sandbox"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for HTTP requests.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	RateLimitRequests int           `json:"rate_limit_requests" validate:"min=1"`
	RateLimitPeriod   time.Duration `json:"rate_limit_period" validate:"min=1ms"`

	// MarketCacheTTL controls how long the discovered market index is
	// reused before LoadMarkets hits the exchange again.
	MarketCacheTTL time.Duration `json:"market_cache_ttl" validate:"min=0"`

	CircuitBreakerEnabled          bool          `json:"circuit_breaker_enabled"`
	CircuitBreakerFailThreshold    int           `json:"circuit_breaker_fail_threshold"`
	CircuitBreakerSuccessThreshold int           `json:"circuit_breaker_success_threshold"`
	CircuitBreakerTimeout          time.Duration `json:"circuit_breaker_timeout"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults for
// the specified exchange: 10s timeout, no transport retries (failure
// propagation is the caller's policy), 600 req/min rate limit, 5 minute
// market cache, circuit breaker 5/2/30s.
func DefaultConfig(exchange string) *Config {
	return &Config{
		Exchange:     exchange,
		Sandbox:      false,
		Timeout:      10 * time.Second,
		MaxRetries:   0,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,

		RateLimitRequests: 600,
		RateLimitPeriod:   time.Minute,

		MarketCacheTTL: 5 * time.Minute,

		CircuitBreakerEnabled:          true,
		CircuitBreakerFailThreshold:    5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,

		LogLevel: "info",
	}
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.CircuitBreakerEnabled {
		if c.CircuitBreakerFailThreshold <= 0 {
			return errors.New("CircuitBreakerFailThreshold must be positive when enabled")
		}
		if c.CircuitBreakerSuccessThreshold <= 0 {
			return errors.New("CircuitBreakerSuccessThreshold must be positive when enabled")
		}
		if c.CircuitBreakerTimeout <= 0 {
			return errors.New("CircuitBreakerTimeout must be positive when enabled")
		}
	}
	return nil
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithSandbox enables or disables sandbox mode and returns the config for chaining.
func (c *Config) WithSandbox(sandbox bool) *Config {
	c.Sandbox = sandbox
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRateLimit sets the rate limiting parameters and returns the config for chaining.
func (c *Config) WithRateLimit(requests int, period time.Duration) *Config {
	c.RateLimitRequests = requests
	c.RateLimitPeriod = period
	return c
}

// WithMarketCacheTTL sets the market index cache lifetime and returns the
// config for chaining.
func (c *Config) WithMarketCacheTTL(ttl time.Duration) *Config {
	c.MarketCacheTTL = ttl
	return c
}
