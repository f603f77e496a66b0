package core

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

// Sentinel errors for common failure conditions.
var (
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
	// ErrNoCredentials is returned when a private endpoint is called without configured credentials.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrNotConnected is returned when the WebSocket is not connected.
	ErrNotConnected = errors.New("websocket not connected")
	// ErrUnknownMethod is returned when a webhook payload names a method with no registered handler.
	ErrUnknownMethod = errors.New("no handler registered for method")
	// ErrCircuitOpen is returned when the transport circuit breaker is rejecting requests.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// ConfigError reports invalid construction parameters. It is fatal at
// construction time and never produced by a running client.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config: %s: %s", e.Field, e.Message)
}

// NewConfigError creates a ConfigError for the named field.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// SerializationError reports a request body that could not be canonically
// encoded. It is propagated to the immediate caller and never retried.
type SerializationError struct {
	Err error
}

// Error implements the error interface for SerializationError.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize request body: %v", e.Err)
}

// Unwrap returns the underlying encoding error.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// TransportError reports a network-level failure from the HTTP or
// WebSocket transport. Retry policy, if any, belongs to the caller.
type TransportError struct {
	// Op is the transport operation that failed, e.g. "POST /api/v4/order/new".
	Op  string
	Err error
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport failure.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// knownErrorMessages maps the documented WhiteBIT trade error codes to
// their published meanings. Codes outside this table keep the message
// the exchange returned.
var knownErrorMessages = map[int]string{
	1: "market is disabled for trading",
	2: "incorrect amount (it is less than or equals zero or its precision is too big)",
	3: "incorrect price (it is less than or equals zero or its precision is too big)",
	4: "incorrect taker fee (it is less than zero or its precision is too big)",
	5: "incorrect maker fee (it is less than zero or its precision is too big)",
	6: "incorrect clientOrderId (invalid string or not unique id)",
}

// APIError represents an error response reported by the exchange itself,
// including rejections of correctly signed requests (stale nonce, revoked
// key, invalid order parameters).
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code"`
	// Code is the exchange-specific error code, zero when absent.
	Code int `json:"code"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Data carries any additional error payload returned by the exchange.
	Data any `json:"data,omitempty"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("whitebit: api error %d (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("whitebit: api error (HTTP %d): %s", e.StatusCode, e.Message)
}

// NewAPIError creates an APIError, substituting the documented message
// for known error codes.
func NewAPIError(statusCode, code int, message string, data any) *APIError {
	if known, ok := knownErrorMessages[code]; ok {
		message = known
	}
	return &APIError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Data:       data,
	}
}

// ParseAPIError builds an APIError from a non-2xx response body. The
// exchange reports errors as {"code": ..., "message": ...}; bodies that
// do not parse keep the raw text as the message.
func ParseAPIError(statusCode int, body []byte) *APIError {
	var raw struct {
		Code    int `json:"code"`
		Message any `json:"message"`
		Errors  any `json:"errors"`
	}
	if err := sonic.Unmarshal(body, &raw); err != nil {
		return NewAPIError(statusCode, 0, string(body), nil)
	}

	message := ""
	switch m := raw.Message.(type) {
	case string:
		message = m
	case nil:
	default:
		message = fmt.Sprint(m)
	}
	if message == "" && raw.Code == 0 {
		message = string(body)
	}
	return NewAPIError(statusCode, raw.Code, message, raw.Errors)
}

// IsConfigError returns true if err is a construction-time configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsSerializationError returns true if err is a canonical-encoding failure.
func IsSerializationError(err error) bool {
	var se *SerializationError
	return errors.As(err, &se)
}

// IsTransportError returns true if err is a network-level failure.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsAPIError returns true if err is an error response from the exchange,
// along with the typed error when it is.
func IsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
