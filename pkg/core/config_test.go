package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("bitasiaex")

	assert.Equal(t, "bitasiaex", cfg.Exchange)
	assert.False(t, cfg.Sandbox)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, 600, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitPeriod)
	assert.Equal(t, 5*time.Minute, cfg.MarketCacheTTL)
	assert.True(t, cfg.CircuitBreakerEnabled)
	assert.Equal(t, 5, cfg.CircuitBreakerFailThreshold)
	assert.Equal(t, 2, cfg.CircuitBreakerSuccessThreshold)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreakerTimeout)

	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default_valid", func(c *Config) {}, false},
		{"missing_exchange", func(c *Config) { c.Exchange = "" }, true},
		{"zero_timeout", func(c *Config) { c.Timeout = 0 }, true},
		{"zero_rate_limit", func(c *Config) { c.RateLimitRequests = 0 }, true},
		{"breaker_zero_fail_threshold", func(c *Config) { c.CircuitBreakerFailThreshold = 0 }, true},
		{"breaker_zero_success_threshold", func(c *Config) { c.CircuitBreakerSuccessThreshold = 0 }, true},
		{"breaker_zero_timeout", func(c *Config) { c.CircuitBreakerTimeout = 0 }, true},
		{"breaker_disabled_ignores_thresholds", func(c *Config) {
			c.CircuitBreakerEnabled = false
			c.CircuitBreakerFailThreshold = 0
		}, false},
		{"bad_log_level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"empty_log_level_ok", func(c *Config) { c.LogLevel = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig("bitasiaex")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Chaining(t *testing.T) {
	creds := &Credentials{APIKey: "key", SecretKey: "secret"}
	cfg := DefaultConfig("bitasiaex").
		WithCredentials(creds).
		WithSandbox(true).
		WithTimeout(3 * time.Second).
		WithRateLimit(100, 10*time.Second).
		WithMarketCacheTTL(time.Minute)

	assert.Same(t, creds, cfg.Credentials)
	assert.True(t, cfg.Sandbox)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, 10*time.Second, cfg.RateLimitPeriod)
	assert.Equal(t, time.Minute, cfg.MarketCacheTTL)
}

func TestCredentials_Complete(t *testing.T) {
	tests := []struct {
		name  string
		creds *Credentials
		want  bool
	}{
		{"nil", nil, false},
		{"empty", &Credentials{}, false},
		{"key_only", &Credentials{APIKey: "k"}, false},
		{"missing_server_key", &Credentials{APIKey: "k", SecretKey: "s"}, false},
		{"complete", &Credentials{APIKey: "k", SecretKey: "s", ServerPublicKey: "pem"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.creds.Complete())
		})
	}
}
