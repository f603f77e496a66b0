package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigError(t *testing.T) {
	err := NewConfigError("capacity", "must be positive")

	assert.Equal(t, "invalid config: capacity: must be positive", err.Error())
	assert.True(t, IsConfigError(err))
	assert.True(t, IsConfigError(fmt.Errorf("wrap: %w", err)))
	assert.False(t, IsConfigError(errors.New("other")))
}

func TestSerializationError_Unwrap(t *testing.T) {
	inner := errors.New("bad field")
	err := &SerializationError{Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.True(t, IsSerializationError(err))
}

func TestTransportError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &TransportError{Op: "POST /api/v4/order/new", Err: inner}

	assert.Contains(t, err.Error(), "POST /api/v4/order/new")
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsTransportError(err))
}

func TestNewAPIError_KnownCodeMessage(t *testing.T) {
	err := NewAPIError(http.StatusUnprocessableEntity, 1, "whatever the server said", nil)

	assert.Equal(t, 1, err.Code)
	assert.Equal(t, "market is disabled for trading", err.Message)
}

func TestNewAPIError_UnknownCodeKeepsMessage(t *testing.T) {
	err := NewAPIError(http.StatusUnprocessableEntity, 999, "some new failure", nil)

	assert.Equal(t, "some new failure", err.Message)
}

func TestParseAPIError(t *testing.T) {
	body := []byte(`{"code": 2, "message": "Inner validation failed", "errors": {"amount": ["Amount too small"]}}`)

	err := ParseAPIError(http.StatusUnprocessableEntity, body)

	assert.Equal(t, http.StatusUnprocessableEntity, err.StatusCode)
	assert.Equal(t, 2, err.Code)
	assert.NotNil(t, err.Data)
}

func TestParseAPIError_UnparseableBody(t *testing.T) {
	err := ParseAPIError(http.StatusBadGateway, []byte("<html>bad gateway</html>"))

	assert.Equal(t, http.StatusBadGateway, err.StatusCode)
	assert.Zero(t, err.Code)
	assert.Equal(t, "<html>bad gateway</html>", err.Message)
}

func TestIsAPIError(t *testing.T) {
	apiErr := NewAPIError(http.StatusForbidden, 0, "invalid key", nil)

	got, ok := IsAPIError(fmt.Errorf("call failed: %w", apiErr))
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, got.StatusCode)

	_, ok = IsAPIError(errors.New("other"))
	assert.False(t, ok)
}
