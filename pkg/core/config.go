package core

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// BaseURL is the production WhiteBIT REST endpoint.
const BaseURL = "https://whitebit.com"

// BaseWSURL is the production WhiteBIT public WebSocket endpoint.
const BaseWSURL = "wss://api.whitebit.com/ws"

// Credentials holds API authentication credentials.
type Credentials struct {
	// APIKey is the public API key identifier, sent as X-TXC-APIKEY.
	APIKey string `json:"api_key"`
	// SecretKey is the private key used as the HMAC-SHA512 signing key.
	SecretKey string `json:"secret_key"`
}

// Config contains configuration options shared by all versioned clients.
type Config struct {
	BaseURL     string       `json:"base_url" validate:"required,url"`
	Credentials *Credentials `json:"credentials,omitempty"`

	// Timeout is the maximum duration for a single HTTP request.
	Timeout      time.Duration `json:"timeout" validate:"min=1ms"`
	MaxRetries   int           `json:"max_retries" validate:"min=0"`
	RetryWaitMin time.Duration `json:"retry_wait_min" validate:"min=0"`
	RetryWaitMax time.Duration `json:"retry_wait_max" validate:"min=0"`

	LogLevel string `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// DefaultConfig returns a Config initialized with sensible defaults:
// production base URL, 10s timeout, 3 retries, 100ms-1s retry wait.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      BaseURL,
		Timeout:      10 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 1 * time.Second,
		LogLevel:     "info",
	}
}

var validate = validator.New()

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// WithCredentials sets the API credentials and returns the config for chaining.
func (c *Config) WithCredentials(creds *Credentials) *Config {
	c.Credentials = creds
	return c
}

// WithBaseURL overrides the REST endpoint and returns the config for chaining.
func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

// WithTimeout sets the request timeout and returns the config for chaining.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}
